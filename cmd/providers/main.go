package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/oyelola-a/lineage-extractor/internal/common"
	"github.com/oyelola-a/lineage-extractor/internal/provider"
)

// Diagnostic: list registered providers with display names and credential
// status, and mark the default.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if path := os.Getenv("EXTRACT_CONFIG_FILE"); path != "" {
		if err := common.LoadConfigFile(cfg, path); err != nil {
			logger.Error("load config file", "path", path, "error", err)
			os.Exit(2)
		}
	}

	registry := provider.NewDefaultRegistry(cfg, logger)
	defaultName, _ := registry.Default()

	for _, name := range registry.Names() {
		display, err := registry.DisplayName(name)
		if err != nil {
			continue
		}
		creds, err := registry.CheckCredentials(name)
		if err != nil {
			continue
		}
		marker := " "
		if name == defaultName {
			marker = "*"
		}
		status := "ok"
		if !creds.OK {
			status = "missing"
		}
		fmt.Printf("%s %-12s %-22s credentials=%s (%s)\n", marker, name, display, status, creds.Detail)
	}
}
