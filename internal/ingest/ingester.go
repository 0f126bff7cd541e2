// ABOUTME: Batched ingestion of export payloads into the sample store.
// ABOUTME: Parse errors wrap ErrMalformedPayload; storage failures name the failed batch.
package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lifeos/internal/storage"
)

// BatchSize is the number of samples written per upsert.
const BatchSize = 500

// Result summarises one ingestion.
type Result struct {
	Ingested int   `json:"ingested"`
	Skipped  int   `json:"skipped"`
	Stats    Stats `json:"-"`
}

// Ingester writes payloads to a sample store.
type Ingester struct {
	store  storage.SampleStore
	logger *log.Logger
}

// New creates an Ingester. A nil logger discards output.
func New(store storage.SampleStore, logger *log.Logger) *Ingester {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Ingester{store: store, logger: logger}
}

// Ingest normalises p and upserts the samples in batches.
func (i *Ingester) Ingest(ctx context.Context, p *Payload) (Result, error) {
	samples, stats := Normalize(p)
	res := Result{Skipped: stats.Skipped(), Stats: stats}

	for start := 0; start < len(samples); start += BatchSize {
		end := min(start+BatchSize, len(samples))
		n, err := i.store.UpsertSamples(ctx, samples[start:end])
		if err != nil {
			return res, fmt.Errorf("ingest batch %d-%d: %w", start, end, err)
		}
		res.Ingested += n
	}

	i.logger.Info("ingested payload",
		"series", len(p.Data.Metrics),
		"ingested", res.Ingested,
		"skipped", res.Skipped)
	return res, nil
}

// IngestReader parses and ingests a payload from r.
func (i *Ingester) IngestReader(ctx context.Context, r io.Reader) (Result, error) {
	p, err := Parse(r)
	if err != nil {
		return Result{}, err
	}
	return i.Ingest(ctx, p)
}
