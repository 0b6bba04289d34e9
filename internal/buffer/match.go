// ABOUTME: Regex search over the lossy text view of the accumulator
// ABOUTME: Offsets are byte offsets into the UTF-8 view, not the raw buffer

package buffer

import (
	"bytes"
	"fmt"
	"regexp"
)

// Match is one regex hit.
type Match struct {
	Start int
	End   int
	Text  string
}

// Match compiles pattern and returns every non-overlapping hit in the
// current contents. An empty result means no hits.
func (a *Accumulator) Match(pattern string) ([]Match, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}
	text := bytes.ToValidUTF8(a.raw(), []byte("\uFFFD"))

	locs := re.FindAllIndex(text, -1)
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		out = append(out, Match{Start: loc[0], End: loc[1], Text: string(text[loc[0]:loc[1]])})
	}
	return out, nil
}
