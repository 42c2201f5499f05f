package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/oyelola-a/lineage-extractor/internal/common"
	"github.com/oyelola-a/lineage-extractor/internal/export"
	"github.com/oyelola-a/lineage-extractor/internal/extract"
	"github.com/oyelola-a/lineage-extractor/internal/provider"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: extract <file|-> [provider]")
		os.Exit(2)
	}

	text, err := readDocumentText(os.Args[1])
	if err != nil {
		logger.Error("read document text", "arg", os.Args[1], "error", err)
		os.Exit(2)
	}

	providerName := ""
	if len(os.Args) >= 3 {
		providerName = os.Args[2]
	}

	cfg := common.LoadConfig()
	if path := os.Getenv("EXTRACT_CONFIG_FILE"); path != "" {
		if err := common.LoadConfigFile(cfg, path); err != nil {
			logger.Error("load config file", "path", path, "error", err)
			os.Exit(2)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	registry := provider.NewDefaultRegistry(cfg, logger)
	extractor := extract.NewExtractor(registry, logger)
	ctx := context.Background()

	opts := extract.Options{ProviderName: providerName}

	// Optional response recording: wrap the resolved backend so real
	// responses land in the replay store for later mock runs.
	if cfg.Replay.Path != "" && os.Getenv("RECORD_RESPONSES") == "true" {
		store, err := provider.OpenReplayStore(cfg.Replay.Path)
		if err != nil {
			logger.Error("open replay store", "path", cfg.Replay.Path, "error", err)
			os.Exit(2)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("close replay store", "error", err)
			}
		}()

		inner, err := registry.Create(providerName, nil)
		if err != nil {
			logger.Error("create provider", "name", providerName, "error", err)
			os.Exit(2)
		}
		name := providerName
		if name == "" {
			name, _ = registry.Default()
		}
		opts.ProviderInstance = provider.NewRecordingProvider(inner, name, store, logger)
	}

	result, err := extractor.Extract(ctx, text, opts)
	if err != nil {
		logger.Error("extract", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if result.Success {
		if path := os.Getenv("EXPORT_XLSX_PATH"); path != "" {
			svc := export.NewService(cfg.Export.SheetName, logger)
			b, err := svc.ExportRecordsXLSX(result.Records)
			if err != nil {
				logger.Error("export xlsx", "error", err)
				os.Exit(1)
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				logger.Error("write xlsx", "path", path, "error", err)
				os.Exit(1)
			}
			logger.Info("xlsx written", "path", path, "records", len(result.Records))
		}
		return
	}
	os.Exit(1)
}

func readDocumentText(arg string) (string, error) {
	if arg == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
