package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"servicedesk/scriptbuilder/scriptbuilder"
)

var modeChoices = []struct {
	Label string
	Value scriptbuilder.Mode
}{
	{Label: "Weighted (4-level classification)", Value: scriptbuilder.ModeWeighted},
	{Label: "Simple (3-step)", Value: scriptbuilder.ModeSimple},
}

type uiState struct {
	service *scriptbuilder.Service
	cfg     scriptbuilder.Config

	w             fyne.Window
	agentEntry    *widget.Entry
	ticketEntry   *widget.Entry
	queryEntry    *widget.Entry
	scriptOut     *widget.Entry
	altAccordion  *widget.Accordion
	matchLabel    *widget.Label
	kbStatus      *widget.Label
	status        *widget.Label
	configSummary *widget.Label
	log           *widget.Entry
	statusBind    binding.String

	lastResult *scriptbuilder.BuildResult

	buildBtn    *widget.Button
	loadKBBtn   *widget.Button
	exportBtn   *widget.Button
	metadataBtn *widget.Button
}

func buildUI(a fyne.App, svc *scriptbuilder.Service, logBind binding.String) *uiState {
	u := &uiState{service: svc}
	u.cfg = svc.Config()
	u.w = a.NewWindow("Service Desk Script Builder")

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("Ready")

	u.agentEntry = widget.NewEntry()
	u.agentEntry.SetPlaceHolder("Agent name")
	u.agentEntry.SetText(u.cfg.AgentName)
	u.ticketEntry = widget.NewEntry()
	u.ticketEntry.SetPlaceHolder("Ticket # (optional)")

	u.queryEntry = widget.NewMultiLineEntry()
	u.queryEntry.Wrapping = fyne.TextWrapWord
	u.queryEntry.SetPlaceHolder("Caller's words / issue description.\nExample: Teacher moved offices; lost access to RTE/CICS; needs VLAN2...")

	u.scriptOut = widget.NewMultiLineEntry()
	u.scriptOut.Wrapping = fyne.TextWrapWord
	u.scriptOut.SetPlaceHolder("The generated call script appears here")
	u.scriptOut.Disable()

	u.altAccordion = widget.NewAccordion()
	u.matchLabel = widget.NewLabel("")
	u.matchLabel.Wrapping = fyne.TextWrapWord

	u.log = widget.NewEntryWithData(logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.SetPlaceHolder("Log")
	u.log.Disable()

	u.status = widget.NewLabelWithData(u.statusBind)
	u.kbStatus = widget.NewLabel("No knowledge base loaded")
	u.configSummary = widget.NewLabel("")

	u.buildBtn = widget.NewButtonWithIcon("Build Script", theme.ConfirmIcon(), func() { u.onBuild() })
	u.loadKBBtn = widget.NewButtonWithIcon("Load kb.csv", theme.FolderOpenIcon(), func() { u.onLoadKB() })
	u.exportBtn = widget.NewButtonWithIcon("Export Script", theme.DocumentSaveIcon(), func() { u.onExport() })
	u.metadataBtn = widget.NewButtonWithIcon("Metadata", theme.InfoIcon(), func() { u.onMetadata() })
	settingsBtn := widget.NewButtonWithIcon("Settings", theme.SettingsIcon(), func() { u.openSettings() })

	controlRow1 := container.NewGridWithColumns(3, u.buildBtn, u.loadKBBtn, settingsBtn)
	controlRow2 := container.NewGridWithColumns(2, u.exportBtn, u.metadataBtn)

	left := container.NewVBox(
		widget.NewLabelWithStyle("Call Details", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.agentEntry,
		u.ticketEntry,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Caller's Issue", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewStack(u.queryEntry),
		controlRow1,
		controlRow2,
		widget.NewSeparator(),
		u.kbStatus,
		u.status,
		u.configSummary,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Log", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewStack(u.log),
	)

	right := container.NewVSplit(
		container.NewBorder(u.matchLabel, nil, nil, nil, container.NewScroll(u.scriptOut)),
		container.NewScroll(u.altAccordion),
	)
	right.Offset = 0.7

	split := container.NewHSplit(left, right)
	split.Offset = 0.35

	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(1180, 760))
	u.updateConfigSummary()
	return u
}

func (u *uiState) setBusy(b bool) {
	fyne.Do(func() {
		if b {
			u.buildBtn.Disable()
			u.loadKBBtn.Disable()
			u.exportBtn.Disable()
			u.metadataBtn.Disable()
		} else {
			u.buildBtn.Enable()
			u.loadKBBtn.Enable()
			u.exportBtn.Enable()
			u.metadataBtn.Enable()
		}
	})
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) setKBStatus(path string, count int) {
	fyne.Do(func() {
		u.kbStatus.SetText(fmt.Sprintf("KB: %s (%d articles)", filepath.Base(path), count))
	})
}

func (u *uiState) updateConfigSummary() {
	cfg := u.cfg
	modeLabel := string(cfg.Mode)
	for _, c := range modeChoices {
		if c.Value == cfg.Mode {
			modeLabel = c.Label
			break
		}
	}
	u.configSummary.SetText(fmt.Sprintf("Mode: %s / Min score: %d / Alternatives: %d",
		modeLabel, cfg.MinScore, cfg.AltCount))
}

func (u *uiState) onLoadKB() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		path := rc.URI().Path()
		count, err := u.service.LoadKBBytesNamed(path, data)
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		cfg := u.service.Config()
		cfg.KBPath = path
		u.cfg = u.service.UpdateConfig(cfg)
		u.setKBStatus(path, count)
		u.setStatus(fmt.Sprintf("Loaded %d articles", count))
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".tsv"}))
	fd.Show()
}

func (u *uiState) onBuild() {
	if u.service.ArticleCount() == 0 {
		dialog.ShowInformation("Knowledge base", "Load a kb.csv file first (v3 schema).", u.w)
		return
	}
	query := u.queryEntry.Text
	input := scriptbuilder.BuildInput{
		Query:        query,
		AgentName:    u.agentEntry.Text,
		TicketNumber: u.ticketEntry.Text,
	}
	u.setBusy(true)
	u.setStatus("Matching...")
	start := time.Now()

	go func() {
		result, err := u.service.BuildScript(input)
		u.setBusy(false)
		if err != nil {
			u.setStatus("No script built")
			fyne.Do(func() { u.showBuildError(err) })
			return
		}
		cfg := u.service.Config()
		cfg.AgentName = input.AgentName
		u.cfg = u.service.UpdateConfig(cfg)

		fyne.Do(func() {
			u.lastResult = result
			u.matchLabel.SetText(fmt.Sprintf("Matched: %s - %s (score %d)",
				displayOr(result.Best.Article.KBID, "?"),
				displayOr(result.Best.Article.Title, "?"),
				result.Best.Score))
			u.scriptOut.Enable()
			u.scriptOut.SetText(result.Script)
			u.scriptOut.Disable()
			u.rebuildAlternatives(result.Alternatives)
		})
		u.setStatus(fmt.Sprintf("Done (%.2fs)", time.Since(start).Seconds()))
	}()
}

func (u *uiState) showBuildError(err error) {
	switch {
	case errors.Is(err, scriptbuilder.ErrEmptyQuery):
		dialog.ShowInformation("Query", "Type a short description of the issue from the caller.", u.w)
	case errors.Is(err, scriptbuilder.ErrNoKB):
		dialog.ShowInformation("Knowledge base", "Load a kb.csv file first (v3 schema).", u.w)
	case errors.Is(err, scriptbuilder.ErrNoMatch):
		dialog.ShowInformation("No strong match",
			"No strong match found. Try more specifics (app name, error text, route, KB ID).", u.w)
	default:
		dialog.ShowError(err, u.w)
	}
}

func (u *uiState) rebuildAlternatives(alts []scriptbuilder.Alternative) {
	items := make([]*widget.AccordionItem, 0, len(alts))
	for i, alt := range alts {
		title := fmt.Sprintf("%d. %s - %s (score %d)",
			i+1,
			displayOr(alt.Match.Article.KBID, "?"),
			displayOr(alt.Match.Article.Title, "?"),
			alt.Match.Score)
		detail := widget.NewLabel(alt.Match.Article.Keywords + "\n\n" + alt.Script)
		detail.Wrapping = fyne.TextWrapWord
		items = append(items, widget.NewAccordionItem(title, detail))
	}
	u.altAccordion.Items = items
	u.altAccordion.Refresh()
}

func (u *uiState) onExport() {
	if u.lastResult == nil {
		dialog.ShowInformation("Export", "Build a script first.", u.w)
		return
	}
	script := u.lastResult.Script
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		defer uc.Close()
		if _, err := io.WriteString(uc, script); err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		u.setStatus("Script exported")
	}, u.w)
	fd.SetFileName("script.txt")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".txt"}))
	fd.Show()
}

func (u *uiState) onMetadata() {
	if u.lastResult == nil {
		dialog.ShowInformation("Metadata", "Build a script first.", u.w)
		return
	}
	data, err := json.MarshalIndent(u.lastResult.Metadata, "", "  ")
	if err != nil {
		dialog.ShowError(err, u.w)
		return
	}
	view := widget.NewMultiLineEntry()
	view.SetText(string(data))
	view.Wrapping = fyne.TextWrapWord
	view.Disable()
	scroll := container.NewScroll(view)
	scroll.SetMinSize(fyne.NewSize(480, 420))
	dialog.NewCustom("Article metadata (best match)", "Close", scroll, u.w).Show()
}

func (u *uiState) openSettings() {
	cfg := u.cfg

	modeLabels := make([]string, len(modeChoices))
	modeMap := make(map[string]scriptbuilder.Mode, len(modeChoices))
	activeLabel := modeChoices[0].Label
	for i, c := range modeChoices {
		modeLabels[i] = c.Label
		modeMap[c.Label] = c.Value
		if c.Value == cfg.Mode {
			activeLabel = c.Label
		}
	}
	modeSel := widget.NewSelect(modeLabels, nil)
	modeSel.SetSelected(activeLabel)

	minScoreEntry := widget.NewEntry()
	minScoreEntry.SetText(strconv.Itoa(cfg.MinScore))

	altSel := widget.NewSelect([]string{"3", "5", "7", "10"}, nil)
	altSel.SetSelected(strconv.Itoa(cfg.AltCount))

	form := &widget.Form{Items: []*widget.FormItem{
		{Text: "Scoring mode", Widget: modeSel},
		{Text: "Minimum score (0-100)", Widget: minScoreEntry},
		{Text: "Alternatives", Widget: altSel},
	}}

	dialog.NewCustomConfirm("Settings", "OK", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		newCfg := cfg
		if v, found := modeMap[modeSel.Selected]; found {
			newCfg.Mode = v
		}
		if v, err := strconv.Atoi(minScoreEntry.Text); err == nil {
			newCfg.MinScore = v
		}
		if v, err := strconv.Atoi(altSel.Selected); err == nil {
			newCfg.AltCount = v
		}
		newCfg = u.service.UpdateConfig(newCfg)
		u.cfg = newCfg
		u.updateConfigSummary()
		u.setStatus("Settings updated")
	}, u.w).Show()
}

func displayOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
