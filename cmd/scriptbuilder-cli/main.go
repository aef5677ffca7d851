package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"servicedesk/scriptbuilder/scriptbuilder"
)

type cliOptions struct {
	configPath string
	kbPath     string
	query      string
	agentName  string
	ticket     string
	outputPath string
	outputDir  string
	stdout     bool
	metadata   bool
	kbColumns  columnOverrides
}

type columnOverrides map[string]string

func (c columnOverrides) String() string {
	parts := make([]string, 0, len(c))
	for field, col := range c {
		parts = append(parts, field+"="+col)
	}
	return strings.Join(parts, ",")
}

func (c columnOverrides) Set(value string) error {
	field, col, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected field=column, got %q", value)
	}
	c[strings.TrimSpace(field)] = strings.TrimSpace(col)
	return nil
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("scriptbuilder-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("scriptbuilder-cli: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	opts := cliOptions{kbColumns: columnOverrides{}}
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.kbPath, "kb", "", "CSV/TSV knowledge base (v3 schema)")
	flag.StringVar(&opts.query, "query", "", "Caller's words / issue description")
	flag.StringVar(&opts.agentName, "agent", "", "Agent name for the greeting")
	flag.StringVar(&opts.ticket, "ticket", "", "Ticket number for the closing")
	flag.StringVar(&opts.outputPath, "output", "", "File to write the script (default uses --output-dir/script_*.txt)")
	flag.StringVar(&opts.outputDir, "output-dir", "scripts", "Directory where scripts are written when --output is omitted")
	flag.BoolVar(&opts.stdout, "stdout", false, "Print the script and alternatives to STDOUT")
	flag.BoolVar(&opts.metadata, "metadata", false, "Print best-match metadata as JSON to STDOUT")
	flag.Var(opts.kbColumns, "kb-column", "Explicit column pick as field=header or field=#N (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --kb FILE --query TEXT [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.kbPath = strings.TrimSpace(opts.kbPath)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)

	if opts.kbPath == "" {
		flag.Usage()
		return opts, errors.New("missing required --kb file")
	}
	if strings.TrimSpace(opts.query) == "" {
		flag.Usage()
		return opts, errors.New("missing required --query text")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg, err := scriptbuilder.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)
	service, err := scriptbuilder.NewService(cfg, logger)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	articles, err := scriptbuilder.ParseKBFileWithOptions(opts.kbPath,
		scriptbuilder.KBParseOptions{Columns: opts.kbColumns})
	if err != nil {
		return fmt.Errorf("read knowledge base: %w", err)
	}
	service.ReplaceKB(articles)

	result, err := service.BuildScript(scriptbuilder.BuildInput{
		Query:        opts.query,
		AgentName:    opts.agentName,
		TicketNumber: opts.ticket,
	})
	if err != nil {
		return err
	}

	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(result.Script+"\n"), 0o644); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	fmt.Printf("Script for %s (score %d) written to %s\n",
		result.Best.Article.KBID, result.Best.Score, outputPath)

	if opts.stdout {
		printResult(result)
	}
	if opts.metadata {
		data, err := json.MarshalIndent(result.Metadata, "", "  ")
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}

func resolveOutputPath(path, dir string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "scripts"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("script_%s.txt", time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func printResult(result *scriptbuilder.BuildResult) {
	fmt.Println()
	fmt.Println(result.Script)
	if len(result.Alternatives) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("==== Alternative matches ====")
	for i, alt := range result.Alternatives {
		fmt.Printf("%d. %s - %s (score %d)\n", i+1,
			summarizeField(alt.Match.Article.KBID),
			summarizeField(alt.Match.Article.Title),
			alt.Match.Score)
		if alt.Match.Article.Keywords != "" {
			fmt.Printf("   keywords: %s\n", alt.Match.Article.Keywords)
		}
	}
}

func summarizeField(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "?"
	}
	runes := []rune(v)
	if len(runes) > 60 {
		return string(runes[:60]) + "…"
	}
	return v
}
