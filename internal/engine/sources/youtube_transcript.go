package sources

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Normalize fetches the payload behind track and returns its cues as plain
// text, one cue per line. A payload with no usable text is engine.ErrEmptyTranscript.
func (y *YouTube) Normalize(ctx context.Context, track engine.CaptionTrack) (string, error) {
	cues, err := y.FetchCues(ctx, track)
	if err != nil {
		return "", err
	}
	text := JoinCues(cues)
	if text == "" {
		return "", fmt.Errorf("%w: %s track", engine.ErrEmptyTranscript, orDefault(track.LanguageCode, "caption"))
	}
	return text, nil
}

// FetchCues fetches and parses the caption payload behind track.
func (y *YouTube) FetchCues(ctx context.Context, track engine.CaptionTrack) ([]engine.CaptionCue, error) {
	if track.URL == "" {
		return nil, fmt.Errorf("%w: track has no URL", engine.ErrNoCaptions)
	}
	data, err := engine.FetchCaption(ctx, track.URL)
	if err != nil {
		return nil, err
	}
	return ParseCaptionPayload(data)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCaptionPayload detects the payload shape from its first byte and
// returns cues stably sorted by start time. '{' is a json3 event list, '<' is
// timedtext XML. An empty payload returns no cues and no error.
func ParseCaptionPayload(data []byte) ([]engine.CaptionCue, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return nil, nil
	}

	var (
		cues []engine.CaptionCue
		err  error
	)
	switch data[0] {
	case '{':
		cues, err = parseJSON3(data)
	case '<':
		cues, err = parseTimedTextXML(data)
	default:
		return nil, fmt.Errorf("%w: starts with %q", engine.ErrUnsupportedPayload, data[0])
	}
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(cues, func(a, b engine.CaptionCue) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return cues, nil
}

func parseJSON3(data []byte) ([]engine.CaptionCue, error) {
	var doc ytJSON3
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: json3: %v", engine.ErrUnsupportedPayload, err)
	}
	cues := make([]engine.CaptionCue, 0, len(doc.Events))
	for _, ev := range doc.Events {
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		cues = append(cues, engine.CaptionCue{
			Start:    msDuration(ev.TStartMs),
			Duration: msDuration(ev.DDurationMs),
			Text:     cueText(sb.String()),
		})
	}
	return cues, nil
}

// parseTimedTextXML reads <text> or srv3 <p> cues. The XML reader undoes the
// document's own escaping; cueText then applies the single entity pass the
// service's double-escaped text needs. Unknown entities pass through.
func parseTimedTextXML(data []byte) ([]engine.CaptionCue, error) {
	var doc ytTimedText
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: timedtext XML: %v", engine.ErrUnsupportedPayload, err)
	}

	cues := make([]engine.CaptionCue, 0, len(doc.Lines)+len(doc.Body.Paras))
	for _, l := range doc.Lines {
		cues = append(cues, engine.CaptionCue{
			Start:    secDuration(attrFloat(l.Start)),
			Duration: secDuration(attrFloat(l.Dur)),
			Text:     cueText(l.Text),
		})
	}
	for _, p := range doc.Body.Paras {
		text := p.Text
		if len(p.Segs) > 0 {
			var sb strings.Builder
			for _, s := range p.Segs {
				sb.WriteString(s.Text)
			}
			text = sb.String()
		}
		cues = append(cues, engine.CaptionCue{
			Start:    msDuration(int64(attrFloat(p.T))),
			Duration: msDuration(int64(attrFloat(p.D))),
			Text:     cueText(text),
		})
	}
	return cues, nil
}

// cueText decodes entities and folds a cue onto one line.
func cueText(s string) string {
	return strings.Join(strings.Fields(engine.DecodeEntities(s)), " ")
}

// JoinCues joins non-empty cue texts, one per line, in slice order.
func JoinCues(cues []engine.CaptionCue) string {
	var sb strings.Builder
	for _, c := range cues {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// attrFloat parses a numeric XML attribute; missing or malformed values are 0.
func attrFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func msDuration(ms int64) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func secDuration(s float64) time.Duration {
	if s < 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
