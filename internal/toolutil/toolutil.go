// Package toolutil provides input helpers shared by the REST handlers and the
// MCP tool.
package toolutil

import "strings"

// FirstList returns the first non-nil list. Aliased request fields resolve
// through it so "videoIds" wins over "videos" when both are sent.
func FirstList(lists ...[]string) []string {
	for _, l := range lists {
		if l != nil {
			return l
		}
	}
	return nil
}

// FirstString returns the first value that is not blank, trimmed.
func FirstString(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// CleanRefs trims every reference. Blank entries are kept so results stay
// aligned with the caller's input positions; a nil list stays nil.
func CleanRefs(refs []string) []string {
	if refs == nil {
		return nil
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = strings.TrimSpace(r)
	}
	return out
}
