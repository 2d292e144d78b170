package sources

// YouTube implementation is split across files by responsibility:
//   youtube_innertube.go  - player response and caption payload wire types
//   youtube_page.go       - watch page fetch, DOM parse, embedded player response extraction
//   youtube_metadata.go   - title/channel strategy chain
//   youtube_tracks.go     - caption track selection and URL shaping
//   youtube_transcript.go - caption payload parsing and plain-text normalization

import (
	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// YouTube resolves video metadata and caption tracks from the public watch
// page and normalizes caption payloads into plain text. It is safe for
// concurrent use; all per-video state lives on the call stack.
type YouTube struct {
	watchBaseURL  string
	captionFormat string
	strict        bool
	strategies    []MetadataStrategy
}

// Option configures a YouTube source.
type Option func(*YouTube)

// WithWatchBaseURL overrides the watch page prefix (the id is appended).
func WithWatchBaseURL(u string) Option {
	return func(y *YouTube) { y.watchBaseURL = u }
}

// WithCaptionFormat selects engine.FormatXML or engine.FormatJSON3 payloads.
func WithCaptionFormat(f string) Option {
	return func(y *YouTube) { y.captionFormat = f }
}

// WithStrictMetadata fails items whose title cannot be resolved.
func WithStrictMetadata(strict bool) Option {
	return func(y *YouTube) { y.strict = strict }
}

// WithMetadataStrategies replaces the metadata strategy chain.
func WithMetadataStrategies(s ...MetadataStrategy) Option {
	return func(y *YouTube) { y.strategies = s }
}

// NewYouTube creates a YouTube source from engine.Cfg plus opts.
func NewYouTube(opts ...Option) *YouTube {
	y := &YouTube{
		watchBaseURL:  engine.Cfg.WatchBaseURL,
		captionFormat: engine.Cfg.CaptionFormat,
		strict:        engine.Cfg.StrictMetadata,
		strategies:    DefaultMetadataStrategies(),
	}
	for _, opt := range opts {
		opt(y)
	}
	if y.watchBaseURL == "" {
		y.watchBaseURL = engine.DefaultWatchBaseURL
	}
	return y
}
