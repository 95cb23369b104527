package ingest

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// blobKey builds a collision-resistant storage key from a user-supplied
// filename. Blob keys are restricted to a safe character set, so accents
// and diacritics are stripped (NFD decompose, drop combining marks) and
// anything else unsafe becomes an underscore. A short random prefix keeps
// two uploads of "sortie.gpx" from colliding.
func blobKey(filename string) string {
	return "tracks/" + uuid.NewString()[:8] + "_" + sanitizeFilename(filename)
}

func sanitizeFilename(name string) string {
	base := name
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, base); err == nil {
		base = stripped
	}

	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)

	if strings.Trim(base, "._") == "" {
		base = "track.gpx"
	}
	return base
}
