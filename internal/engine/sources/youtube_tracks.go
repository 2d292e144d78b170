package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Resolve fetches the watch page for ref and returns its metadata and the
// caption track best matching lang. One outbound fetch; no retries.
func (y *YouTube) Resolve(ctx context.Context, ref engine.VideoRef, lang string) (*engine.Resolution, error) {
	if !engine.ValidVideoID(ref.ID) {
		return nil, fmt.Errorf("%w: %q", engine.ErrInvalidReference, ref.Raw)
	}

	page, err := y.fetchWatchPage(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	if ps := page.playability(); ps != nil && strings.EqualFold(ps.Status, "ERROR") {
		return nil, fmt.Errorf("%w: %s", engine.ErrNotFound, orDefault(ps.Reason, ref.ID))
	}

	meta, found := resolveMetadata(page, y.strategies)
	if !found && y.strict {
		if page.PlayerErr != nil {
			return nil, page.PlayerErr
		}
		return nil, fmt.Errorf("%w: no title for %s", engine.ErrMetadataUnavailable, ref.ID)
	}
	if page.PlayerErr != nil {
		slog.Debug("youtube: player response unavailable, metadata from markup",
			slog.String("id", ref.ID), slog.Any("error", page.PlayerErr))
	}

	tracks := page.tracks()
	track, err := selectTrack(tracks, lang)
	if err != nil {
		switch {
		case page.PlayerErr != nil:
			return nil, fmt.Errorf("%w: %w", err, page.PlayerErr)
		case page.playability() != nil && page.playability().Reason != "":
			return nil, fmt.Errorf("%w: %s", err, page.playability().Reason)
		}
		return nil, err
	}

	track.URL, err = y.trackURL(track.URL)
	if err != nil {
		return nil, err
	}
	track.FormatHint = y.captionFormat

	return &engine.Resolution{
		Ref:      ref,
		Metadata: meta,
		Track:    track,
		Tracks:   len(tracks),
	}, nil
}

func (p *WatchPage) playability() *playabilityStatus {
	if p.Player == nil {
		return nil
	}
	return p.Player.PlayabilityStatus
}

// tracks converts the player's caption track list, skipping entries without a URL.
func (p *WatchPage) tracks() []engine.CaptionTrack {
	if p.Player == nil || p.Player.Captions == nil {
		return nil
	}
	raw := p.Player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	out := make([]engine.CaptionTrack, 0, len(raw))
	for _, t := range raw {
		if t.BaseURL == "" {
			continue
		}
		out = append(out, engine.CaptionTrack{
			LanguageCode: t.LanguageCode,
			Name:         t.Name.String(),
			Kind:         t.Kind,
			URL:          t.BaseURL,
		})
	}
	return out
}

// selectTrack picks the caption track for lang among the server-fetchable ones:
//  1. exact language code match (manual tracks before auto-generated ones)
//  2. same base language ("en" ↔ "en-US")
//  3. the first usable track
//
// An empty list, or one where every track needs a PoToken, yields engine.ErrNoCaptions.
func selectTrack(all []engine.CaptionTrack, lang string) (engine.CaptionTrack, error) {
	if len(all) == 0 {
		return engine.CaptionTrack{}, engine.ErrNoCaptions
	}
	tracks := make([]engine.CaptionTrack, 0, len(all))
	for _, t := range all {
		if !needsPoToken(t.URL) {
			tracks = append(tracks, t)
		}
	}
	if len(tracks) == 0 {
		return engine.CaptionTrack{}, fmt.Errorf("%w: tracks require PoToken", engine.ErrNoCaptions)
	}
	lang = strings.TrimSpace(lang)

	if t, ok := pickByLang(tracks, func(code string) bool { return strings.EqualFold(code, lang) }); ok {
		return t, nil
	}
	if base := baseLang(lang); base != "" {
		if t, ok := pickByLang(tracks, func(code string) bool { return baseLang(code) == base }); ok {
			return t, nil
		}
	}
	return tracks[0], nil
}

// pickByLang returns the first manual track matching, else the first matching one.
func pickByLang(tracks []engine.CaptionTrack, match func(string) bool) (engine.CaptionTrack, bool) {
	var asr *engine.CaptionTrack
	for i := range tracks {
		if !match(tracks[i].LanguageCode) {
			continue
		}
		if tracks[i].Kind != "asr" {
			return tracks[i], true
		}
		if asr == nil {
			asr = &tracks[i]
		}
	}
	if asr != nil {
		return *asr, true
	}
	return engine.CaptionTrack{}, false
}

// needsPoToken reports whether a track URL is browser-only (&exp=xpe).
func needsPoToken(rawURL string) bool {
	return strings.Contains(rawURL, "&exp=xpe")
}

func baseLang(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}

// trackURL makes a track URL absolute and applies the configured payload format.
func (y *YouTube) trackURL(raw string) (string, error) {
	base, err := url.Parse(y.watchBaseURL)
	if err != nil {
		return "", fmt.Errorf("watch base URL: %w", err)
	}
	u, err := base.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: bad caption URL %q", engine.ErrNoCaptions, raw)
	}
	if y.captionFormat == engine.FormatJSON3 {
		q := u.Query()
		q.Set("fmt", engine.FormatJSON3)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
