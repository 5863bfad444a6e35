package picker

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Match reports whether m, or any type it specializes (GPX is XML is text),
// satisfies one of the accept patterns.
func Match(accept []string, m *mimetype.MIME) bool {
	for cur := m; cur != nil; cur = cur.Parent() {
		if MatchMIME(accept, cur.String()) {
			return true
		}
	}
	return false
}

// MatchMIME matches a concrete type against patterns such as "text/xml",
// "application/*" or "*/*". Parameters like charset are ignored.
func MatchMIME(accept []string, mime string) bool {
	mime = baseType(mime)
	typ, _, _ := strings.Cut(mime, "/")
	for _, p := range accept {
		p = baseType(p)
		switch {
		case p == "*/*" || p == "*":
			return true
		case strings.HasSuffix(p, "/*"):
			if strings.TrimSuffix(p, "/*") == typ {
				return true
			}
		case p == mime:
			return true
		}
	}
	return false
}

// Extensions returns file-name filters for accept, or nil when a wildcard
// makes every file eligible.
func Extensions(accept []string) []string {
	var exts []string
	seen := map[string]bool{}
	add := func(e string) {
		if !seen[e] {
			seen[e] = true
			exts = append(exts, e)
		}
	}
	for _, p := range accept {
		switch baseType(p) {
		case "*/*", "*":
			return nil
		case "application/gpx+xml":
			add(".gpx")
		case "application/xml", "text/xml":
			add(".xml")
			add(".gpx")
		}
	}
	return exts
}

func baseType(s string) string {
	s, _, _ = strings.Cut(s, ";")
	return strings.ToLower(strings.TrimSpace(s))
}
