package harvester

import (
	"context"
	"fmt"
	"os"
	"time"

	"hfharvest/internal/pool"
	"hfharvest/pkg/auth"
	"hfharvest/pkg/checkpoint"
	"hfharvest/pkg/config"
	errs "hfharvest/pkg/errors"
	"hfharvest/pkg/fetch"
	"hfharvest/pkg/hub"
	"hfharvest/pkg/logger"
	"hfharvest/pkg/merge"
	"hfharvest/pkg/ratelimit"
	"hfharvest/pkg/record"
	"hfharvest/pkg/source"
)

// Harvester drives one run: load identifiers, diff against completed
// output, fetch the outstanding set concurrently, checkpoint batches, and
// merge everything into the consolidated dataset.
type Harvester struct {
	config  *config.Config
	client  *hub.Client
	fetcher pool.Fetcher
	prefix  string
	logger  logger.Logger
}

// New validates the configuration and wires up the run. Configuration
// problems are the only fatal errors; everything after Run starts is
// recorded, not raised.
func New(cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeConfig, Message: err.Error()}
	}
	if cfg.Harvest.IDsFile == "" {
		return nil, &errs.Error{Type: errs.ErrorTypeConfig, Message: "ids file is required"}
	}
	if _, err := os.Stat(cfg.Harvest.IDsFile); err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeConfig, Message: fmt.Sprintf("ids file: %v", err)}
	}

	client := hub.NewClient(cfg.Hub.Timeout, log)
	client.SetHeader("User-Agent", cfg.Hub.UserAgent)
	client.SetToken(auth.Resolve(cfg.Hub.Token))

	extractor, err := extractorFor(cfg)
	if err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeConfig, Message: err.Error()}
	}

	fetcher := fetch.New(client, extractor, fetch.Options{
		MaxAttempts: cfg.Hub.MaxAttempts,
		Politeness:  cfg.Harvest.Sleep,
		Logger:      log,
	})

	prefix := cfg.Checkpoint.PartPrefix
	if prefix == "" {
		prefix = checkpoint.DefaultPrefix()
	}
	if cfg.Checkpoint.UniquePrefix {
		prefix = checkpoint.UniquePrefix(prefix)
	}

	return &Harvester{
		config:  cfg,
		client:  client,
		fetcher: fetcher,
		prefix:  prefix,
		logger:  log,
	}, nil
}

// extractorFor selects the payload variant from configuration
func extractorFor(cfg *config.Config) (fetch.Extractor, error) {
	switch cfg.Harvest.Extractor {
	case "size":
		return fetch.SizeExtractor{}, nil
	case "tags":
		return fetch.TagsExtractor{Prefix: cfg.Harvest.TagPrefix, Field: cfg.Harvest.TagField}, nil
	case "stats":
		return fetch.StatsExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", cfg.Harvest.Extractor)
	}
}

// Client returns the shared hub client, so callers can redirect it at a
// test server before Run
func (h *Harvester) Client() *hub.Client {
	return h.client
}

// Prefix returns the producer prefix chosen for this run
func (h *Harvester) Prefix() string {
	return h.prefix
}

// Run executes one harvest. A run may be interrupted at any point and
// restarted against the same checkpoint directory; restart re-derives the
// outstanding set from whatever parts and consolidated output exist, with
// no other persisted state.
func (h *Harvester) Run(ctx context.Context) error {
	cfg := h.config

	all, err := source.Load(cfg.Harvest.IDsFile)
	if err != nil {
		return &errs.Error{Type: errs.ErrorTypeConfig, Message: err.Error()}
	}

	done := source.DoneIDs(cfg.Checkpoint.PartsDir, cfg.Harvest.Out, cfg.Harvest.RetryErrors, h.logger)
	todo := source.Outstanding(all, done)

	h.logger.InfoWithFields("harvest plan", map[string]interface{}{
		"total":       len(all),
		"done":        len(done),
		"outstanding": len(todo),
		"prefix":      h.prefix,
	})

	if len(todo) == 0 {
		_, err := merge.Merge(cfg.Checkpoint.PartsDir, cfg.Harvest.Out, h.logger)
		return err
	}

	writer, err := checkpoint.NewWriter(cfg.Checkpoint.PartsDir, h.prefix, cfg.Checkpoint.BatchSize, h.logger)
	if err != nil {
		return &errs.Error{Type: errs.ErrorTypeConfig, Message: err.Error()}
	}

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter = ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	}

	wp := pool.NewWorkerPool(ctx, cfg.Harvest.Workers, h.fetcher, limiter, h.logger)
	wp.Start()

	go func() {
		for _, id := range todo {
			if err := wp.Submit(id); err != nil {
				break
			}
		}
		wp.Stop()
	}()

	// The batch buffer is mutated only here, on the coordinating goroutine
	var okCount, errCount int
	for rec := range wp.Results() {
		if rec.Status == record.StatusOK {
			okCount++
		} else {
			errCount++
		}
		if err := writer.Add(rec); err != nil {
			h.logger.ErrorWithFields("failed to write checkpoint part", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if err := writer.Flush(); err != nil {
		h.logger.ErrorWithFields("failed to flush final part", map[string]interface{}{
			"error": err.Error(),
		})
	}

	h.logger.InfoWithFields("harvest complete", map[string]interface{}{
		"fetched": okCount + errCount,
		"ok":      okCount,
		"errors":  errCount,
	})

	_, err = merge.Merge(cfg.Checkpoint.PartsDir, cfg.Harvest.Out, h.logger)
	return err
}
