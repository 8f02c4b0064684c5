package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/expensio/receipt-scan/constants"
	"github.com/expensio/receipt-scan/internal/async"
	"github.com/expensio/receipt-scan/internal/common"
	"github.com/expensio/receipt-scan/internal/pipeline"
	"github.com/expensio/receipt-scan/internal/validate"
	"github.com/expensio/receipt-scan/internal/vision/openai"
)

func main() {
	var (
		dir        = flag.String("dir", "", "directory of receipt files to analyze (required)")
		out        = flag.String("out", "", "output directory for result JSON files (default: alongside inputs)")
		configPath = flag.String("config", "", "optional YAML config overlay")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *dir == "" {
		logger.Error("usage", "cmd", "receipt-batch --dir <directory> [--out <directory>]")
		os.Exit(2)
	}

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

	capability := openai.NewClient(cfg.Vision, logger)
	validator := validate.New(validate.DefaultConfig(), logger)
	pipe := pipeline.New(cfg.Pipeline, capability, validator, logger)

	var total, reviewed, degraded, failed atomic.Int64
	queue := async.NewQueue(pipe, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithQueueSize(cfg.Batch.QueueSize),
		async.WithJobTimeout(cfg.Batch.JobTimeout),
		async.WithResultFunc(func(job async.Job, res pipeline.Result, err error) {
			total.Add(1)
			switch {
			case err != nil:
				failed.Add(1)
				return
			case !res.Success:
				degraded.Add(1)
			case res.Data.NeedsReview:
				reviewed.Add(1)
			}
			if werr := writeResult(job.Path, *out, res); werr != nil {
				logger.Error("write result", "path", job.Path, "error", werr)
			}
		}),
	)

	ctx := context.Background()
	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("read directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			continue
		}
		_ = queue.Enqueue(ctx, async.Job{
			Path:        filepath.Join(*dir, e.Name()),
			SubmittedAt: time.Now(),
			TraceID:     uuid.New().String(),
		})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()
	queue.Shutdown(shutdownCtx)

	logger.Info("batch complete",
		"total", total.Load(),
		"needs_review", reviewed.Load(),
		"degraded", degraded.Load(),
		"failed", failed.Load(),
	)
}

// writeResult stores the analysis next to the input (or under outDir) as
// <name>.json.
func writeResult(inputPath, outDir string, res pipeline.Result) error {
	name := filepath.Base(inputPath) + ".json"
	target := filepath.Join(filepath.Dir(inputPath), name)
	if outDir != "" {
		target = filepath.Join(outDir, name)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}
