package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// ytInitialPlayerResponseMarker names the player response variable in watch page scripts.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse"

// maxBlobBytes bounds the balanced-brace scan.
const maxBlobBytes = 8 * 1024 * 1024

// WatchPage is a fetched and parsed watch page.
// Player is nil when the embedded player response was missing or unparseable;
// PlayerErr then says why (it wraps engine.ErrMetadataUnavailable).
type WatchPage struct {
	ID        string
	Doc       *goquery.Document
	Player    *PlayerResponse
	PlayerErr error
}

// fetchWatchPage downloads and parses the watch page for id.
func (y *YouTube) fetchWatchPage(ctx context.Context, id string) (*WatchPage, error) {
	body, err := engine.FetchPage(ctx, y.watchBaseURL+id)
	if err != nil {
		return nil, err
	}
	return ParseWatchPage(id, body)
}

// ParseWatchPage builds a WatchPage from raw HTML. A missing player response is
// recorded in PlayerErr, not returned: only an unparseable document is an error.
func ParseWatchPage(id string, body []byte) (*WatchPage, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse watch page: %v", engine.ErrMetadataUnavailable, err)
	}
	page := &WatchPage{ID: id, Doc: goquery.NewDocumentFromNode(root)}

	blob := playerBlobFromScripts(page.Doc)
	if blob == nil {
		// Marker outside a parsed <script> (malformed markup): scan the raw bytes.
		blob, _ = findPlayerBlob(body)
	}
	if blob == nil {
		page.PlayerErr = fmt.Errorf("%w: %s not found in watch page", engine.ErrMetadataUnavailable, ytInitialPlayerResponseMarker)
		return page, nil
	}

	var pr PlayerResponse
	if err := json.Unmarshal(blob, &pr); err != nil {
		page.PlayerErr = fmt.Errorf("%w: decode %s: %v", engine.ErrMetadataUnavailable, ytInitialPlayerResponseMarker, err)
		return page, nil
	}
	page.Player = &pr
	return page, nil
}

// playerBlobFromScripts walks <script> elements for the player response.
func playerBlobFromScripts(doc *goquery.Document) []byte {
	var blob []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, ytInitialPlayerResponseMarker) {
			return true
		}
		if b, err := findPlayerBlob([]byte(text)); err == nil {
			blob = b
			return false
		}
		return true
	})
	return blob
}

// findPlayerBlob returns the JSON object assigned to ytInitialPlayerResponse.
// Mentions of the marker not followed by "= {" (e.g. in window["..."] lookups) are skipped.
func findPlayerBlob(b []byte) ([]byte, error) {
	marker := []byte(ytInitialPlayerResponseMarker)
	rest := b
	for {
		idx := bytes.Index(rest, marker)
		if idx < 0 {
			return nil, errors.New("player response marker not found")
		}
		rest = rest[idx+len(marker):]
		after := bytes.TrimLeft(rest, " \t\r\n\"']")
		if len(after) == 0 || after[0] != '=' {
			continue
		}
		after = bytes.TrimLeft(after[1:], " \t\r\n")
		if len(after) == 0 || after[0] != '{' {
			continue
		}
		return extractJSONObject(after, maxBlobBytes)
	}
}

// extractJSONObject returns the balanced {...} prefix of b, which must start with '{'.
// The scan understands JSON strings and escapes, so braces inside string values
// do not count, and gives up after limit bytes.
func extractJSONObject(b []byte, limit int) ([]byte, error) {
	if len(b) == 0 || b[0] != '{' {
		return nil, errors.New("not a JSON object")
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if i >= limit {
			return nil, fmt.Errorf("JSON object exceeds %d bytes", limit)
		}
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1], nil
			}
		}
	}
	return nil, errors.New("unterminated JSON object")
}
