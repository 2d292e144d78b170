package engine

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// videoIDRe matches the 11-char identifier shape used by the video host.
var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// videoHosts lists hosts whose URLs carry a video identifier.
var videoHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"music.youtube.com":        true,
	"youtube-nocookie.com":     true,
	"www.youtube-nocookie.com": true,
	"youtu.be":                 true,
	"www.youtu.be":             true,
}

// pathPrefixes are URL path segments followed by the identifier.
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/", "/e/"}

// ValidVideoID reports whether id has the identifier shape.
func ValidVideoID(id string) bool {
	return videoIDRe.MatchString(id)
}

// ParseVideoRef extracts the video identifier from a bare id or a video URL.
// Returns ErrInvalidReference when no well-formed identifier can be found.
func ParseVideoRef(raw string) (VideoRef, error) {
	s := strings.TrimSpace(raw)
	if ValidVideoID(s) {
		return VideoRef{ID: s, Raw: raw}, nil
	}
	if id, ok := videoIDFromURL(s); ok {
		return VideoRef{ID: id, Raw: raw}, nil
	}
	return VideoRef{Raw: raw}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
}

func videoIDFromURL(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if !videoHosts[host] {
		return "", false
	}

	var id string
	switch {
	case strings.HasSuffix(host, "youtu.be"):
		id = strings.Trim(u.Path, "/")
	case u.Path == "/watch":
		id = u.Query().Get("v")
	default:
		for _, p := range pathPrefixes {
			if strings.HasPrefix(u.Path, p) {
				id = strings.TrimPrefix(u.Path, p)
				if i := strings.IndexByte(id, '/'); i >= 0 {
					id = id[:i]
				}
				break
			}
		}
	}
	if !ValidVideoID(id) {
		return "", false
	}
	return id, true
}
