package fetch

import (
	"context"
	"math/rand"
	"time"

	"hfharvest/pkg/hub"
	"hfharvest/pkg/logger"
	"hfharvest/pkg/record"
	"hfharvest/pkg/retry"
)

// Options configures a Fetcher
type Options struct {
	// MaxAttempts caps requests per identifier, including the first
	MaxAttempts int
	// Backoff applied between transient failures
	Backoff retry.BackoffStrategy
	// Politeness is the base post-fetch sleep; the actual sleep is
	// Politeness multiplied by a random factor in [0.9, 1.3). Zero disables it.
	Politeness time.Duration
	// Logger for fetch outcomes
	Logger logger.Logger
}

// Fetcher performs one bounded-retry fetch per identifier. Every failure
// mode terminates in a returned error record; Fetch never fails outright.
type Fetcher struct {
	client      *hub.Client
	extractor   Extractor
	maxAttempts int
	backoff     retry.BackoffStrategy
	politeness  time.Duration
	logger      logger.Logger
}

// New creates a Fetcher around a shared client and a variant extractor
func New(client *hub.Client, extractor Extractor, opts Options) *Fetcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Backoff == nil {
		opts.Backoff = retry.DefaultExponentialBackoff()
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	return &Fetcher{
		client:      client,
		extractor:   extractor,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		politeness:  opts.Politeness,
		logger:      opts.Logger,
	}
}

// Fetch retrieves the payload for one identifier. Transient failures are
// retried with exponential backoff up to the attempt cap; permanent
// failures stop immediately. Either way the outcome is a record. The
// politeness delay applies after success and after exhausting the cap,
// but not after a permanent failure.
func (f *Fetcher) Fetch(ctx context.Context, id string) record.Record {
	payload, err := retry.DoWithResult(func() (map[string]interface{}, error) {
		return f.extractor.Extract(ctx, f.client, id)
	}, &retry.Config{
		MaxAttempts: f.maxAttempts,
		Backoff:     f.backoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      f.logger.WithField("dataset", id),
	})

	var rec record.Record
	if err != nil {
		f.logger.WarnWithFields("fetch failed", map[string]interface{}{
			"dataset": id,
			"error":   err.Error(),
		})
		rec = record.Failed(id, f.extractor.NullPayload())
	} else {
		rec = record.OK(id, payload)
	}

	// A retryable error surviving the loop means the cap was exhausted;
	// a non-retryable one means the loop stopped early.
	if err == nil || retry.DefaultRetryIf(err) {
		f.politeSleep(ctx)
	}
	return rec
}

// politeSleep spreads request load over time, independent of retry backoff
func (f *Fetcher) politeSleep(ctx context.Context) {
	if f.politeness <= 0 {
		return
	}
	factor := 0.9 + 0.4*rand.Float64()
	_ = retry.Wait(ctx, time.Duration(float64(f.politeness)*factor))
}
