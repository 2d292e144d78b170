package engine

import "time"

// --- Core transcript types ---

// VideoRef identifies a source video: the normalized 11-char identifier and
// the input string it was extracted from.
type VideoRef struct {
	ID  string `json:"id"`
	Raw string `json:"raw"`
}

// Caption payload formats and output file extensions.
const (
	FormatXML   = "xml"
	FormatJSON3 = "json3"

	ExtText     = "txt"
	ExtMarkdown = "md"
)

// CaptionTrack is a resolved, fetchable reference to one language's captions.
type CaptionTrack struct {
	LanguageCode string `json:"language_code"`
	Name         string `json:"name,omitempty"`
	Kind         string `json:"kind,omitempty"` // "asr" = auto-generated
	URL          string `json:"url"`
	FormatHint   string `json:"format_hint,omitempty"`
}

// Placeholder metadata used when a field cannot be determined.
const (
	PlaceholderTitle   = "untitled"
	PlaceholderChannel = "unknown_channel"
)

// VideoMetadata is the raw (pre-sanitization) title and channel of a video.
type VideoMetadata struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
}

// WithPlaceholders returns m with empty fields replaced by placeholder values.
func (m VideoMetadata) WithPlaceholders() VideoMetadata {
	if m.Title == "" {
		m.Title = PlaceholderTitle
	}
	if m.Channel == "" {
		m.Channel = PlaceholderChannel
	}
	return m
}

// Resolution is the output of resolving one VideoRef.
type Resolution struct {
	Ref      VideoRef      `json:"ref"`
	Metadata VideoMetadata `json:"metadata"`
	Track    CaptionTrack  `json:"track"`
	Tracks   int           `json:"tracks"` // number of tracks offered by the page
}

// CaptionCue is a single timed caption unit with entity-decoded text.
type CaptionCue struct {
	Start    time.Duration
	Duration time.Duration
	Text     string
}

// --- Batch types (JSON request/response) ---

// BatchRequest is the batch input: ordered video references and a language.
type BatchRequest struct {
	Videos   []string `json:"videoIds"`
	Language string   `json:"languageCode"`
	Archive  bool     `json:"archive,omitempty"`
	Format   string   `json:"format,omitempty"`
}

// TranscriptResult is the externally visible record for one input.
// Exactly one of (Filename, Content) or Error is set.
type TranscriptResult struct {
	ID       string  `json:"id"`
	Filename *string `json:"filename"`
	Content  *string `json:"content"`
	Error    *string `json:"error"`
}

// OK reports whether r is a success record.
func (r TranscriptResult) OK() bool { return r.Error == nil && r.Content != nil }

// SuccessResult builds a success record.
func SuccessResult(id, filename, content string) TranscriptResult {
	return TranscriptResult{ID: id, Filename: &filename, Content: &content}
}

// FailureResult builds a failure record.
func FailureResult(id, msg string) TranscriptResult {
	return TranscriptResult{ID: id, Error: &msg}
}

// BatchResponse is the batch output, one result per input in input order.
type BatchResponse struct {
	Results     []TranscriptResult `json:"results"`
	Archive     string             `json:"archive,omitempty"` // base64 zip
	ArchiveName string             `json:"archiveName,omitempty"`
}
