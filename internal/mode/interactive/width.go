// ABOUTME: Display-width helpers: grapheme-aware measuring and ANSI-preserving truncation
// ABOUTME: Used for the footer and port picker rows; fast path for plain ASCII

package interactive

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const ellipsis = "…"

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	if !strings.ContainsRune(s, esc) {
		return s
	}
	return ansiRe.ReplaceAllString(s, "")
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// graphemeWidth returns the cell width of one grapheme cluster.
func graphemeWidth(cluster string) int {
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}

// visibleWidth is the number of terminal cells s occupies.
func visibleWidth(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	plain := stripANSI(s)
	w, state := 0, -1
	for len(plain) > 0 {
		var cluster string
		cluster, plain, _, state = uniseg.FirstGraphemeClusterInString(plain, state)
		w += graphemeWidth(cluster)
	}
	return w
}

// truncateToWidth cuts s to at most maxWidth cells, ending in an ellipsis
// when anything was dropped. Escape sequences pass through and a reset is
// appended if any were seen.
func truncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if visibleWidth(s) <= maxWidth {
		return s
	}

	budget := maxWidth - runewidth.StringWidth(ellipsis)
	var b strings.Builder
	sawEscape := false
	used, state := 0, -1
	for len(s) > 0 {
		if loc := ansiRe.FindStringIndex(s); loc != nil && loc[0] == 0 {
			b.WriteString(s[:loc[1]])
			s = s[loc[1]:]
			sawEscape = true
			continue
		}
		var cluster string
		var rest string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w := graphemeWidth(cluster)
		if used+w > budget {
			break
		}
		b.WriteString(cluster)
		used += w
		s = rest
	}
	b.WriteString(ellipsis)
	if sawEscape {
		b.WriteString(sgrReset)
	}
	return b.String()
}
