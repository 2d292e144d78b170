package engine

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// ArchiveName is the download name of a batch archive.
const ArchiveName = "transcripts.zip"

// BuildArchive bundles the successful results into a flat zip.
// Entries keep result order; duplicate names get "-2", "-3", ... before the extension.
func BuildArchive(results []TranscriptResult) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int)
	now := time.Now()

	for _, r := range results {
		if !r.OK() || r.Filename == nil {
			continue
		}
		name := uniqueName(path.Base(*r.Filename), seen)
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return nil, fmt.Errorf("archive entry %s: %w", name, err)
		}
		if _, err := w.Write([]byte(*r.Content)); err != nil {
			return nil, fmt.Errorf("archive write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive close: %w", err)
	}
	metrics.ArchivesBuilt.Add(1)
	return buf.Bytes(), nil
}

// BuildArchiveBase64 is BuildArchive encoded for embedding in a JSON response.
func BuildArchiveBase64(results []TranscriptResult) (string, error) {
	data, err := BuildArchive(results)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func uniqueName(name string, seen map[string]int) string {
	seen[name]++
	n := seen[name]
	if n == 1 {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for {
		candidate := fmt.Sprintf("%s-%d%s", base, n, ext)
		if seen[candidate] == 0 {
			seen[candidate] = 1
			return candidate
		}
		n++
	}
}
