// Package batch fans a list of video references out to a resolver and a
// normalizer and collects one result record per input, in input order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Resolver resolves a video reference into metadata and a caption track.
type Resolver interface {
	Resolve(ctx context.Context, ref engine.VideoRef, lang string) (*engine.Resolution, error)
}

// Normalizer turns a caption track into plain text.
type Normalizer interface {
	Normalize(ctx context.Context, track engine.CaptionTrack) (string, error)
}

// Runner processes batches. Items share no state: each goroutine writes only
// its own slot of the result slice.
type Runner struct {
	Resolver    Resolver
	Normalizer  Normalizer
	MaxItems    int // requests with more refs are rejected with engine.ErrBatchTooLarge
	Concurrency int
}

// NewRunner builds a Runner with limits from engine.Cfg.
func NewRunner(r Resolver, n Normalizer) *Runner {
	return &Runner{
		Resolver:    r,
		Normalizer:  n,
		MaxItems:    engine.Cfg.MaxBatchSize,
		Concurrency: engine.Cfg.BatchConcurrency,
	}
}

// Validate checks request-level constraints before any fetch happens.
// A nil list is missing; an empty one is a valid batch with no results.
func (r *Runner) Validate(req engine.BatchRequest) error {
	if req.Videos == nil {
		return engine.ErrMissingVideos
	}
	if limit := r.maxItems(); len(req.Videos) > limit {
		return fmt.Errorf("%w: %d given, at most %d allowed", engine.ErrBatchTooLarge, len(req.Videos), limit)
	}
	return nil
}

// Run processes every reference in req and returns len(req.Videos) results in
// input order. The error is non-nil only when the request itself is rejected;
// per-item failures are reported in the results.
func (r *Runner) Run(ctx context.Context, req engine.BatchRequest) (engine.BatchResponse, error) {
	engine.IncrBatchRequests()
	if err := r.Validate(req); err != nil {
		engine.IncrBatchRejected()
		return engine.BatchResponse{}, err
	}

	lang := engine.NormLang(req.Language)
	ext := engine.NormFormat(req.Format)
	results := make([]engine.TranscriptResult, len(req.Videos))

	var g errgroup.Group
	g.SetLimit(r.concurrency())
	for i, raw := range req.Videos {
		g.Go(func() error {
			results[i] = r.processItem(ctx, raw, lang, ext)
			return nil
		})
	}
	_ = g.Wait() // items never return errors

	out := engine.BatchResponse{Results: results}
	if req.Archive {
		data, err := engine.BuildArchiveBase64(results)
		if err != nil {
			return engine.BatchResponse{}, fmt.Errorf("build archive: %w", err)
		}
		out.Archive = data
		out.ArchiveName = engine.ArchiveName
	}
	return out, nil
}

// processItem runs resolve → normalize for one input and converts any failure
// into an error record.
func (r *Runner) processItem(ctx context.Context, raw, lang, ext string) (res engine.TranscriptResult) {
	start := time.Now()
	ref, err := engine.ParseVideoRef(raw)
	id := ref.ID
	if id == "" {
		id = raw
	}
	defer func() {
		if p := recover(); p != nil {
			slog.Error("batch: item panicked", slog.String("id", id), slog.Any("panic", p))
			res = engine.FailureResult(id, "internal error")
		}
		if res.OK() {
			engine.IncrItemsOK()
		} else {
			engine.IncrItemsFailed()
		}
	}()
	if err != nil {
		return r.failure(id, err, start)
	}

	var (
		resolution *engine.Resolution
		content    string
	)
	err = engine.TrackOperation(ctx, "transcript:"+ref.ID, func(ctx context.Context) error {
		var err error
		resolution, err = r.Resolver.Resolve(ctx, ref, lang)
		if err != nil {
			return err
		}
		content, err = r.Normalizer.Normalize(ctx, resolution.Track)
		return err
	})
	if err != nil {
		return r.failure(ref.ID, err, start)
	}

	filename := engine.TranscriptFilename(resolution.Metadata, ref.ID, ext)
	body := engine.RenderTranscript(resolution.Metadata, ref.ID, content, ext)
	slog.Debug("batch: item ok",
		slog.String("id", ref.ID),
		slog.String("lang", resolution.Track.LanguageCode),
		slog.Duration("elapsed", time.Since(start)))
	return engine.SuccessResult(ref.ID, filename, body)
}

func (r *Runner) failure(id string, err error, start time.Time) engine.TranscriptResult {
	slog.Warn("batch: item failed",
		slog.String("id", id),
		slog.String("kind", engine.ErrorKind(err)),
		slog.Duration("elapsed", time.Since(start)),
		slog.Any("error", err))
	return engine.FailureResult(id, ErrorMessage(err))
}

// ErrorMessage renders err as the human-readable per-item error string.
func ErrorMessage(err error) string {
	var fe *engine.FetchError
	switch {
	case errors.Is(err, engine.ErrInvalidReference):
		return err.Error()
	case errors.Is(err, engine.ErrNotFound):
		return "video not found"
	case errors.Is(err, engine.ErrNoCaptions):
		return "no captions available for this video"
	case errors.Is(err, engine.ErrEmptyTranscript):
		return "captions exist but contain no text"
	case errors.Is(err, engine.ErrMetadataUnavailable):
		return "video metadata unavailable"
	case errors.Is(err, engine.ErrUnsupportedPayload):
		return "unsupported caption format"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out fetching transcript"
	case errors.As(err, &fe):
		if fe.StatusCode != 0 {
			return fmt.Sprintf("upstream fetch failed: HTTP %d", fe.StatusCode)
		}
		return "upstream fetch failed"
	}
	return "error fetching transcript"
}

func (r *Runner) maxItems() int {
	if r.MaxItems > 0 {
		return r.MaxItems
	}
	return engine.DefaultMaxBatchSize
}

func (r *Runner) concurrency() int {
	if r.Concurrency > 0 {
		return r.Concurrency
	}
	return engine.DefaultBatchConcurrency
}
