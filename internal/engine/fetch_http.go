package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// newFetchClient creates an HTTP client with proper settings for web scraping.
// The transport is shared by all batch items for connection pooling.
func newFetchClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// consentCookie skips the cookie-consent interstitial served to some regions.
const consentCookie = "CONSENT=YES+cb; SOCS=CAI"

// FetchPage GETs an HTML document, bounded by Cfg.FetchTimeout and Cfg.MaxPageBytes.
// Uses BrowserClient when configured with UseBrowserClient.
func FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	headers := map[string]string{
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"accept-language": "en-US,en;q=0.9",
		"cookie":          consentCookie,
	}
	var (
		data []byte
		err  error
	)
	if cfg.UseBrowserClient && cfg.BrowserClient != nil {
		data, err = fetchViaBrowser(ctx, pageURL, headers)
	} else {
		metrics.PageFetches.Add(1)
		data, err = fetchBytes(ctx, pageURL, headers, cfg.MaxPageBytes)
	}
	if err != nil {
		return nil, pageNotFound(err)
	}
	return data, nil
}

// pageNotFound marks a 404 page fetch as ErrNotFound. Other fetches keep the plain status.
func pageNotFound(err error) error {
	var fe *FetchError
	if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
		fe.Err = ErrNotFound
	}
	return err
}

// FetchCaption GETs a caption payload. Payloads are served from the cache when present.
func FetchCaption(ctx context.Context, captionURL string) ([]byte, error) {
	key := CacheKey("caption", captionURL)
	if data, ok := CacheGetBytes(ctx, key); ok {
		return data, nil
	}
	metrics.CaptionFetches.Add(1)
	data, err := fetchBytes(ctx, captionURL, map[string]string{
		"accept": "application/json,text/xml,application/xml;q=0.9,*/*;q=0.8",
	}, cfg.MaxCaptionBytes)
	if err != nil {
		return nil, err
	}
	CacheSetBytes(ctx, key, data)
	return data, nil
}

// fetchBytes performs a single GET with its own timeout. Failures are *FetchError.
func fetchBytes(ctx context.Context, rawURL string, headers map[string]string, limit int64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", RandomUserAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if err := statusError(rawURL, resp.StatusCode); err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}

	data, err := readLimited(resp.Body, limit)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, &FetchError{URL: rawURL, StatusCode: 0, Err: err}
	}
	return data, nil
}

// fetchViaBrowser fetches through the TLS-fingerprinting client, bounded by
// Cfg.FetchTimeout and ctx.
func fetchViaBrowser(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	metrics.BrowserFetches.Add(1)
	h := ChromeHeaders()
	for k, v := range headers {
		h[k] = v
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()
	data, status, err := doWithContext(ctx, func() ([]byte, int, error) {
		data, _, status, err := cfg.BrowserClient.Do(http.MethodGet, rawURL, h, nil)
		return data, status, err
	})
	if err != nil {
		metrics.FetchErrors.Add(1)
		slog.Debug("browser fetch failed", slog.String("url", rawURL), slog.Any("error", err))
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if err := statusError(rawURL, status); err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}
	if int64(len(data)) > cfg.MaxPageBytes {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("response exceeds %d bytes", cfg.MaxPageBytes)}
	}
	return data, nil
}

// doWithContext runs call, which cannot take a context, and returns early with
// ctx.Err() once ctx is done. An abandoned call ends on the client's own timeout.
func doWithContext(ctx context.Context, call func() ([]byte, int, error)) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	type result struct {
		data   []byte
		status int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		data, status, err := call()
		done <- result{data, status, err}
	}()
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case r := <-done:
		return r.data, r.status, r.err
	}
}

// statusError maps a non-2xx status to *FetchError.
func statusError(rawURL string, code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	return &FetchError{URL: rawURL, StatusCode: code, Err: errors.New(http.StatusText(code))}
}

// readLimited reads at most limit bytes and fails if the body is larger.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response exceeds %d bytes", limit)
	}
	return data, nil
}
