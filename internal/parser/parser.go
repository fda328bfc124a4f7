// Package parser recognizes #habit tags and clock times in block text and
// reads Logseq outline markdown into block trees.
package parser

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// The grammar needs lookaround, which the standard regexp package lacks.
var (
	// habitRe captures the habit name after "#habit" up to the next tag, a
	// bare time token, a line break or the end of the text.
	habitRe = regexp2.MustCompile(
		`#habit\s+([^#\r\n]*?)(?=\s*(?<!\d)\d{1,2}:\d{2}(?!\d)|\s*#|\s*[\r\n]|\s*$)`,
		regexp2.IgnoreCase)

	// timeRe matches a 12-hour time with an AM/PM marker or a 24-hour time,
	// never inside a longer run of digits.
	timeRe = regexp2.MustCompile(
		`(?<!\d)(?:(?:1[0-2]|0?[1-9]):[0-5]\d\s*[ap]m\b|(?:2[0-3]|[01]?\d):[0-5]\d(?!\d))`,
		regexp2.IgnoreCase)
)

const matchTimeout = 250 * time.Millisecond

func init() {
	habitRe.MatchTimeout = matchTimeout
	timeRe.MatchTimeout = matchTimeout
}

// Match is a recognized habit occurrence in a block's text.
type Match struct {
	Name string
	// Time is the first clock time found anywhere in the text, in its
	// original surface form, or empty.
	Time string
}

// ParseHabit recognizes the first #habit tag in content. It reports false
// when there is no tag or the captured name is empty after trimming.
func ParseHabit(content string) (Match, bool) {
	if content == "" {
		return Match{}, false
	}
	m, err := habitRe.FindStringMatch(content)
	if err != nil || m == nil {
		return Match{}, false
	}
	name := strings.TrimSpace(m.GroupByNumber(1).String())
	if name == "" {
		return Match{}, false
	}
	return Match{Name: name, Time: FindTime(content)}, true
}

// FindTime returns the first clock time in text or an empty string.
func FindTime(text string) string {
	m, err := timeRe.FindStringMatch(text)
	if err != nil || m == nil {
		return ""
	}
	return m.String()
}
