package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// NormLang normalises a requested language: trimmed, empty → configured default.
func NormLang(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return cfg.DefaultLanguage
	}
	return lang
}

// NormFormat normalises an output format to ExtText or ExtMarkdown.
func NormFormat(format string) string {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case ExtMarkdown, "markdown":
		return ExtMarkdown
	case ExtText, "text":
		return ExtText
	}
	if cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return ExtText
}

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoTranscript/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// entityReplacer decodes the five standard entities. strings.Replacer never
// rescans its own output, so "&amp;amp;" becomes "&amp;" and not "&".
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// DecodeEntities applies one level of decoding for &amp; &lt; &gt; &quot; &#39;.
// Other entities are left as-is.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityReplacer.Replace(s)
}

// maxNameRunes caps the channel and title parts of a filename.
const maxNameRunes = 80

// SanitizeName replaces every run of characters outside [A-Za-z0-9] with a
// single '_' and trims separators from both ends. Case is preserved.
func SanitizeName(s string) string {
	var b strings.Builder
	sep := true
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			sep = false
		} else if !sep {
			b.WriteByte('_')
			sep = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// TranscriptFilename builds "<channel>_<title>_<id>.<ext>" from sanitized parts.
func TranscriptFilename(meta VideoMetadata, id, ext string) string {
	meta = meta.WithPlaceholders()
	parts := make([]string, 0, 3)
	for _, p := range []string{meta.Channel, meta.Title} {
		if s := SanitizeName(strutil.TruncateWith(p, maxNameRunes, "")); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, id)
	if ext == "" {
		ext = ExtText
	}
	return strings.Join(parts, "_") + "." + ext
}

// RenderMarkdown wraps a transcript in a small Markdown document.
func RenderMarkdown(meta VideoMetadata, id, transcript string) string {
	meta = meta.WithPlaceholders()
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(meta.Title)
	sb.WriteString("\n\n")
	sb.WriteString("- Channel: ")
	sb.WriteString(meta.Channel)
	sb.WriteString("\n- Video: ")
	sb.WriteString(DefaultWatchBaseURL + id)
	sb.WriteString("\n\n")
	sb.WriteString(transcript)
	sb.WriteByte('\n')
	return sb.String()
}

// RenderTranscript returns the file body for the given output extension.
func RenderTranscript(meta VideoMetadata, id, transcript, ext string) string {
	if ext == ExtMarkdown {
		return RenderMarkdown(meta, id, transcript)
	}
	return transcript
}
