package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// MetadataStrategy extracts title and/or channel from a watch page.
// Empty fields mean "not found"; the next strategy in the chain is consulted.
type MetadataStrategy interface {
	Name() string
	Extract(p *WatchPage) engine.VideoMetadata
}

// DefaultMetadataStrategies is the fallback chain: embedded player response
// first (videoDetails, then microformat), HTML markup last.
func DefaultMetadataStrategies() []MetadataStrategy {
	return []MetadataStrategy{VideoDetailsStrategy{}, MicroformatStrategy{}, MarkupStrategy{}}
}

// VideoDetailsStrategy reads videoDetails.title / videoDetails.author.
type VideoDetailsStrategy struct{}

func (VideoDetailsStrategy) Name() string { return "video_details" }

func (VideoDetailsStrategy) Extract(p *WatchPage) engine.VideoMetadata {
	if p.Player == nil || p.Player.VideoDetails == nil {
		return engine.VideoMetadata{}
	}
	return engine.VideoMetadata{
		Title:   strings.TrimSpace(p.Player.VideoDetails.Title),
		Channel: strings.TrimSpace(p.Player.VideoDetails.Author),
	}
}

// MicroformatStrategy reads microformat.playerMicroformatRenderer.
type MicroformatStrategy struct{}

func (MicroformatStrategy) Name() string { return "microformat" }

func (MicroformatStrategy) Extract(p *WatchPage) engine.VideoMetadata {
	if p.Player == nil || p.Player.Microformat == nil {
		return engine.VideoMetadata{}
	}
	mf := p.Player.Microformat.PlayerMicroformatRenderer
	return engine.VideoMetadata{
		Title:   strings.TrimSpace(mf.Title.String()),
		Channel: strings.TrimSpace(mf.OwnerChannelName),
	}
}

// MarkupStrategy reads <meta> tags, itemprop markup and <title>.
type MarkupStrategy struct{}

func (MarkupStrategy) Name() string { return "markup" }

var (
	titleSelectors = []string{
		`meta[name="title"]`,
		`meta[property="og:title"]`,
		`meta[itemprop="name"]`,
	}
	channelSelectors = []string{
		`span[itemprop="author"] link[itemprop="name"]`,
		`link[itemprop="name"]`,
		`meta[name="author"]`,
	}
	channelTextSelectors = []string{
		`#text-container yt-formatted-string`,
		`#owner #channel-name a`,
	}
)

func (MarkupStrategy) Extract(p *WatchPage) engine.VideoMetadata {
	if p.Doc == nil {
		return engine.VideoMetadata{}
	}
	var m engine.VideoMetadata
	m.Title = firstAttr(p.Doc, titleSelectors, "content")
	if m.Title == "" {
		m.Title = strings.TrimSuffix(strings.TrimSpace(p.Doc.Find("title").First().Text()), " - YouTube")
		m.Title = strings.TrimSpace(m.Title)
	}
	m.Channel = firstAttr(p.Doc, channelSelectors, "content")
	if m.Channel == "" {
		for _, sel := range channelTextSelectors {
			if t := strings.TrimSpace(p.Doc.Find(sel).First().Text()); t != "" {
				m.Channel = t
				break
			}
		}
	}
	return m
}

func firstAttr(doc *goquery.Document, selectors []string, attr string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// resolveMetadata runs the strategy chain; the first non-empty value per field wins.
// found reports whether a real title was located (before placeholders).
func resolveMetadata(p *WatchPage, strategies []MetadataStrategy) (meta engine.VideoMetadata, found bool) {
	for _, s := range strategies {
		if meta.Title != "" && meta.Channel != "" {
			break
		}
		got := s.Extract(p)
		if meta.Title == "" {
			meta.Title = got.Title
		}
		if meta.Channel == "" {
			meta.Channel = got.Channel
		}
	}
	found = meta.Title != ""
	if meta.Title == "" || meta.Channel == "" {
		engine.IncrMetadataFallbacks()
	}
	return meta.WithPlaceholders(), found
}
