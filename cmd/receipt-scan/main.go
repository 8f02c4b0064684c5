package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/expensio/receipt-scan/internal/common"
	"github.com/expensio/receipt-scan/internal/pipeline"
	"github.com/expensio/receipt-scan/internal/validate"
	"github.com/expensio/receipt-scan/internal/vision/openai"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config overlay")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall analysis timeout")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "receipt-scan [flags] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := common.LoadConfig()
	if *configPath != "" {
		if err := cfg.ApplyYAML(*configPath); err != nil {
			logger.Error("load config overlay", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	capability := openai.NewClient(cfg.Vision, logger)
	validator := validate.New(validate.DefaultConfig(), logger)
	pipe := pipeline.New(cfg.Pipeline, capability, validator, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = common.WithRequestID(ctx, uuid.New().String())

	res, err := pipe.Analyze(ctx, pipeline.RawDocument{
		Data:     data,
		Filename: filepath.Base(path),
	})
	if err != nil {
		logger.Error("analysis rejected", "path", path, "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
