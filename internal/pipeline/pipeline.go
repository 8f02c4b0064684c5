// Package pipeline orchestrates the document recognition flow: input checks,
// rasterization, conditioning, extraction with bounded retries, response
// parsing with regex fallback, and validation. Each Analyze call is an
// independent unit of work with no shared mutable state.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/expensio/receipt-scan/constants"
	"github.com/expensio/receipt-scan/internal/common"
	"github.com/expensio/receipt-scan/internal/prep"
	"github.com/expensio/receipt-scan/internal/validate"
	"github.com/expensio/receipt-scan/internal/vision"
)

// RawDocument is the immutable per-request input.
type RawDocument struct {
	Data      []byte
	Filename  string
	MediaType string
}

// Result is the sole artifact returned to the caller. On degraded failure
// Success is false, Error is set, and Data carries a low-confidence draft
// the caller can present for manual correction.
type Result struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error,omitempty"`
	Data    vision.InvoiceFields `json:"data"`
}

type Pipeline struct {
	cfg        common.PipelineConfig
	capability vision.Capability
	validator  *validate.Validator
	log        *slog.Logger
}

func New(cfg common.PipelineConfig, capability vision.Capability, validator *validate.Validator, logger *slog.Logger) *Pipeline {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	if cfg.RasterDPI <= 0 {
		cfg.RasterDPI = 200
	}
	if cfg.MinDimension <= 0 {
		cfg.MinDimension = 800
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = 2500
	}
	if cfg.ContrastBoost <= 0 {
		cfg.ContrastBoost = 30
	}
	if cfg.SharpenSigma <= 0 {
		cfg.SharpenSigma = 1.5
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "EUR"
	}
	if validator == nil {
		validator = validate.New(validate.DefaultConfig(), logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, capability: capability, validator: validator, log: logger}
}

// Analyze runs the full recognition flow for one document. Input errors
// (empty, oversized, unsupported, undecodable, unconvertible) surface as
// typed errors and are never retried. Extraction failures are retried with
// a fixed delay and degrade into a Success=false Result after the last
// attempt; that outcome is first-class, not an error.
func (p *Pipeline) Analyze(ctx context.Context, doc RawDocument) (Result, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	mediaType, err := prep.CheckInput(doc.Data, doc.Filename, doc.MediaType, p.cfg.MaxUploadBytes)
	if err != nil {
		p.log.Error("pipeline.analyze.rejected", "req_id", rid, "filename", doc.Filename, "error", err)
		return Result{}, err
	}

	format := constants.DetectFormat(doc.Data)
	p.log.Info("pipeline.analyze.start",
		"req_id", rid,
		"filename", doc.Filename,
		"bytes", len(doc.Data),
		"media_type", mediaType,
		"format", string(format),
	)

	pages, err := p.rasterize(doc.Data, format)
	if err != nil {
		p.log.Error("pipeline.analyze.raster_failed", "req_id", rid, "error", err)
		return Result{}, err
	}

	condCfg := prep.ConditionConfig{
		MinDimension:  p.cfg.MinDimension,
		MaxDimension:  p.cfg.MaxDimension,
		ContrastBoost: p.cfg.ContrastBoost,
		SharpenSigma:  p.cfg.SharpenSigma,
	}
	for i := range pages {
		pages[i] = prep.Condition(pages[i], condCfg)
	}

	dataURL, encodedType, err := prep.EncodeDataURL(pages[0], "png", 0)
	if err != nil {
		return Result{}, common.WrapError(err, "encode primary page")
	}

	categories := constants.AsStringSlice()
	req := vision.Request{
		System:       vision.BuildSystemPrompt(categories, p.cfg.DefaultCurrency),
		User:         vision.BuildUserPrompt(),
		ImageDataURL: dataURL,
		MediaType:    encodedType,
	}

	fields, err := Retry(ctx, p.cfg.MaxAttempts, p.cfg.RetryDelay, p.log,
		func(ctx context.Context, attempt int) (vision.InvoiceFields, error) {
			return p.attempt(ctx, req, doc.Filename, categories)
		})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		p.log.Error("pipeline.analyze.degraded",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{
			Success: false,
			Error:   err.Error(),
			Data:    p.degradedFields(doc.Filename),
		}, nil
	}

	fields.FileType = string(format)
	if format == constants.DOCUMENT {
		fields.PageCount = len(pages)
	}
	if fields.Currency == "" {
		fields.Currency = p.cfg.DefaultCurrency
	}

	p.log.Info("pipeline.analyze.ok",
		"req_id", rid,
		"vendor", fields.VendorName,
		"date", fields.InvoiceDate,
		"category", fields.Category,
		"confidence", fields.Confidence,
		"needs_review", fields.NeedsReview,
		"warnings", len(fields.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{Success: true, Data: fields}, nil
}

// attempt is one extract-parse-validate round. Parse failures fall back to
// regex recovery; a fallback that finds no amount counts as a failed
// attempt so the retry loop can run again.
func (p *Pipeline) attempt(ctx context.Context, req vision.Request, filename string, categories []string) (vision.InvoiceFields, error) {
	raw, err := p.capability.Describe(ctx, req)
	if err != nil {
		return vision.InvoiceFields{}, err
	}

	fields, _, perr := vision.ParseResponse(raw, categories, p.log)
	if perr != nil {
		p.log.Warn("pipeline.parse_failed", "error", perr)
		recovered, ok := vision.FallbackExtract(raw, filename)
		if !ok {
			return vision.InvoiceFields{}, fmt.Errorf("unusable extraction response: %w", perr)
		}
		fields = recovered
	}

	return p.validator.Validate(fields, filename), nil
}

func (p *Pipeline) rasterize(data []byte, format constants.FileFormat) ([]image.Image, error) {
	if format == constants.DOCUMENT {
		return prep.RasterizePDF(data, p.cfg.RasterDPI, p.cfg.MaxPages)
	}
	img, err := prep.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return []image.Image{img}, nil
}

// degradedFields is the low-confidence draft returned when every attempt
// failed: no amount, the default currency, a best-effort category from
// filename keywords, and today's date so the caller's form is prefilled.
func (p *Pipeline) degradedFields(filename string) vision.InvoiceFields {
	return vision.InvoiceFields{
		Currency:    p.cfg.DefaultCurrency,
		InvoiceDate: time.Now().Format("02/01/2006"),
		Category:    string(constants.DetectFromText(filename)),
		Confidence:  0.1,
		NeedsReview: true,
	}
}
