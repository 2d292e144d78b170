package engine

import (
	"bytes"
	"encoding/base64"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		files[f.Name] = string(body)
	}
	return files
}

func TestBuildArchive(t *testing.T) {
	results := []TranscriptResult{
		SuccessResult("aaaaaaaaaaa", "Chan_Talk_aaaaaaaaaaa.txt", "first"),
		FailureResult("bbbbbbbbbbb", "no captions available for this video"),
		SuccessResult("ccccccccccc", "Chan_Other_ccccccccccc.txt", "third"),
	}
	data, err := BuildArchive(results)
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	files := readArchive(t, data)
	if len(files) != 2 {
		t.Fatalf("archive has %d entries, want 2: %v", len(files), files)
	}
	if files["Chan_Talk_aaaaaaaaaaa.txt"] != "first" {
		t.Errorf("first entry = %q", files["Chan_Talk_aaaaaaaaaaa.txt"])
	}
	if files["Chan_Other_ccccccccccc.txt"] != "third" {
		t.Errorf("third entry = %q", files["Chan_Other_ccccccccccc.txt"])
	}
}

func TestBuildArchive_DuplicateNames(t *testing.T) {
	results := []TranscriptResult{
		SuccessResult("x", "same.txt", "one"),
		SuccessResult("x", "same.txt", "two"),
		SuccessResult("x", "same.txt", "three"),
	}
	data, err := BuildArchive(results)
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	files := readArchive(t, data)
	want := map[string]string{"same.txt": "one", "same-2.txt": "two", "same-3.txt": "three"}
	for name, body := range want {
		if files[name] != body {
			t.Errorf("entry %s = %q, want %q", name, files[name], body)
		}
	}
}

func TestBuildArchive_NoSuccesses(t *testing.T) {
	data, err := BuildArchive([]TranscriptResult{FailureResult("x", "boom")})
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	if files := readArchive(t, data); len(files) != 0 {
		t.Errorf("archive has %d entries, want 0", len(files))
	}
}

func TestBuildArchiveBase64(t *testing.T) {
	enc, err := BuildArchiveBase64([]TranscriptResult{SuccessResult("x", "a.txt", "hello")})
	if err != nil {
		t.Fatalf("BuildArchiveBase64: %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if files := readArchive(t, data); files["a.txt"] != "hello" {
		t.Errorf("a.txt = %q, want hello", files["a.txt"])
	}
}
