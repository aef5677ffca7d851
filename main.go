package main

import (
	"log"

	"servicedesk/scriptbuilder/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("scriptbuilder: %v", err)
	}
}
