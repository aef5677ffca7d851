package app

import (
	"io"
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/data/binding"

	"servicedesk/scriptbuilder/scriptbuilder"
)

const fyneAppID = "desk.servicedesk.scriptbuilder"

// Run loads configuration, wires the service and starts the desktop UI.
func Run() error {
	cfg, err := scriptbuilder.LoadConfig("")
	if err != nil {
		return err
	}

	logBind := binding.NewString()
	capture := newLogCapture(logBind, 200)
	logger := log.New(io.MultiWriter(os.Stdout, capture), "", log.LstdFlags)

	svc, err := scriptbuilder.NewService(cfg, logger)
	if err != nil {
		return err
	}

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, svc, logBind)

	if cfg.KBPath != "" {
		if n, err := svc.LoadKBFile(cfg.KBPath); err != nil {
			logger.Printf("could not reload last kb %s: %v", cfg.KBPath, err)
		} else {
			u.setKBStatus(cfg.KBPath, n)
		}
	}

	u.w.ShowAndRun()

	if err := scriptbuilder.SaveConfig("", svc.Config()); err != nil {
		logger.Printf("save config: %v", err)
	}
	return nil
}
