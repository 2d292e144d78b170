package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

const json3Hello = `{"events":[{"tStartMs":0,"segs":[{"utf8":"hola"}]},{"tStartMs":900,"segs":[{"utf8":"mundo"}]}]}`

// fakeYouTube serves watch pages keyed by ?v= and caption payloads keyed by ?lang=.
type fakeYouTube struct {
	*httptest.Server
	pageHits atomic.Int32
}

func newFakeYouTube(t *testing.T) *fakeYouTube {
	t.Helper()
	pages := map[string]string{
		testVideoID:   watchPageHTML(okPlayerJSON),
		"errorVideo1": watchPageHTML(`{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`),
		"noCaptions1": watchPageHTML(`{"playabilityStatus":{"status":"OK"},"videoDetails":{"title":"Silent","author":"Mime"}}`),
		"loginReq001": watchPageHTML(`{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm your age"},"videoDetails":{"title":"Age","author":"Gate"}}`),
		"noPlayer001": markupOnlyHTML,
		"poTokenOnly": watchPageHTML(`{"videoDetails":{"title":"Locked","author":"Web"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"/api/timedtext?v=poTokenOnly&lang=en&exp=xpe","languageCode":"en"}]}}}`),
		"goneCaps001": watchPageHTML(`{"videoDetails":{"title":"Gone","author":"Nobody"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"/api/timedtext?v=goneCaps001&lang=gone","languageCode":"en"}]}}}`),
		"emptyCaps01": watchPageHTML(`{"videoDetails":{"title":"Blank","author":"Nobody"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"/api/timedtext?v=emptyCaps01&lang=blank","languageCode":"en"}]}}}`),
	}
	f := &fakeYouTube{}
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		f.pageHits.Add(1)
		page, ok := pages[r.URL.Query().Get("v")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("lang") == "gone":
			http.NotFound(w, r)
		case q.Get("lang") == "blank":
			w.Write([]byte(`<transcript><text start="0">  </text><text start="1"></text></transcript>`))
		case q.Get("fmt") == engine.FormatJSON3:
			w.Write([]byte(json3Hello))
		case q.Get("lang") == "es":
			w.Write([]byte(`<transcript><text start="0">hola</text><text start="1">mundo</text></transcript>`))
		default:
			w.Write([]byte(timedTextXML))
		}
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeYouTube) source(opts ...Option) *YouTube {
	engine.Init(engine.Config{})
	engine.InitCache("", 0, 0, 0)
	return NewYouTube(append([]Option{WithWatchBaseURL(f.URL + "/watch?v=")}, opts...)...)
}

func ref(id string) engine.VideoRef { return engine.VideoRef{ID: id, Raw: id} }

func TestYouTube_ResolveAndNormalize(t *testing.T) {
	f := newFakeYouTube(t)
	y := f.source()
	ctx := context.Background()

	res, err := y.Resolve(ctx, ref(testVideoID), "es")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Metadata.Title != "Never Gonna {Give} You Up" || res.Metadata.Channel != "Rick Astley" {
		t.Errorf("metadata = %+v", res.Metadata)
	}
	if res.Track.LanguageCode != "es" || res.Track.Name != "Spanish" {
		t.Errorf("track = %+v", res.Track)
	}
	if !strings.HasPrefix(res.Track.URL, f.URL+"/api/timedtext?") {
		t.Errorf("track URL = %q, want absolute on %s", res.Track.URL, f.URL)
	}
	if res.Tracks != 2 {
		t.Errorf("Tracks = %d, want 2", res.Tracks)
	}

	text, err := y.Normalize(ctx, res.Track)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if text != "hola\nmundo" {
		t.Errorf("text = %q", text)
	}
}

func TestYouTube_LanguageFallback(t *testing.T) {
	f := newFakeYouTube(t)
	y := f.source()

	tests := []struct {
		lang string
		want string
	}{
		{"en", "en"},
		{"es", "es"},
		{"fr", "en"},
		{"en-US", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			res, err := y.Resolve(context.Background(), ref(testVideoID), tt.lang)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.Track.LanguageCode != tt.want {
				t.Errorf("Resolve(%q) track = %q, want %q", tt.lang, res.Track.LanguageCode, tt.want)
			}
		})
	}
}

func TestYouTube_JSON3(t *testing.T) {
	f := newFakeYouTube(t)
	y := f.source(WithCaptionFormat(engine.FormatJSON3))
	ctx := context.Background()

	res, err := y.Resolve(ctx, ref(testVideoID), "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(res.Track.URL, "fmt=json3") || res.Track.FormatHint != engine.FormatJSON3 {
		t.Errorf("track = %+v", res.Track)
	}
	text, err := y.Normalize(ctx, res.Track)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if text != "hola\nmundo" {
		t.Errorf("text = %q", text)
	}
}

func TestYouTube_CaptionNotFound(t *testing.T) {
	f := newFakeYouTube(t)
	y := f.source()
	ctx := context.Background()

	res, err := y.Resolve(ctx, ref("goneCaps001"), "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	_, err = y.Normalize(ctx, res.Track)
	var fe *engine.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("Normalize err = %v, want caption 404", err)
	}
	if errors.Is(err, engine.ErrNotFound) {
		t.Error("caption 404 reported as a missing video")
	}
}

func TestYouTube_Errors(t *testing.T) {
	f := newFakeYouTube(t)
	y := f.source()

	tests := []struct {
		name string
		id   string
		want []error
	}{
		{"page 404", "missing0001", []error{engine.ErrNotFound}},
		{"playability error", "errorVideo1", []error{engine.ErrNotFound}},
		{"no caption tracks", "noCaptions1", []error{engine.ErrNoCaptions}},
		{"login required", "loginReq001", []error{engine.ErrNoCaptions}},
		{"no player response", "noPlayer001", []error{engine.ErrNoCaptions, engine.ErrMetadataUnavailable}},
		{"only potoken tracks", "poTokenOnly", []error{engine.ErrNoCaptions}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := y.Resolve(context.Background(), ref(tt.id), "en")
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("Resolve(%s) err = %v, want %v", tt.id, err, want)
				}
			}
		})
	}
}

func TestYouTube_EmptyTranscript(t *testing.T) {
	f := newFakeYouTube(t)
	y := f.source()
	ctx := context.Background()

	res, err := y.Resolve(ctx, ref("emptyCaps01"), "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := y.Normalize(ctx, res.Track); !errors.Is(err, engine.ErrEmptyTranscript) {
		t.Errorf("Normalize err = %v, want ErrEmptyTranscript", err)
	}
}

func TestYouTube_InvalidRefNoFetch(t *testing.T) {
	f := newFakeYouTube(t)
	y := f.source()

	_, err := y.Resolve(context.Background(), engine.VideoRef{Raw: "not a video"}, "en")
	if !errors.Is(err, engine.ErrInvalidReference) {
		t.Errorf("err = %v, want ErrInvalidReference", err)
	}
	if n := f.pageHits.Load(); n != 0 {
		t.Errorf("watch page fetched %d times for an invalid ref", n)
	}
}

func TestYouTube_StrictMetadata(t *testing.T) {
	f := newFakeYouTube(t)

	// Lenient: markup supplies the title, but there are no tracks.
	_, err := f.source().Resolve(context.Background(), ref("noPlayer001"), "en")
	if !errors.Is(err, engine.ErrNoCaptions) {
		t.Fatalf("lenient err = %v, want ErrNoCaptions", err)
	}

	strict := f.source(WithStrictMetadata(true), WithMetadataStrategies(VideoDetailsStrategy{}))
	_, err = strict.Resolve(context.Background(), ref("noPlayer001"), "en")
	if !errors.Is(err, engine.ErrMetadataUnavailable) || errors.Is(err, engine.ErrNoCaptions) {
		t.Errorf("strict err = %v, want ErrMetadataUnavailable only", err)
	}
}
