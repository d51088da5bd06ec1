package usecase

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxPartSize matches the Telegram message limit.
	DefaultMaxPartSize = 4096
	// DefaultHeaderReserve leaves room for a rendered "part i/total" header
	// without knowing the final part count up front; it is a fixed upper
	// bound assuming part counts stay within a few decimal digits.
	DefaultHeaderReserve = 24

	// minBreakOffset avoids degenerate tiny parts: a natural break is only
	// taken when it leaves at least this many bytes in the part.
	minBreakOffset = 100
)

// SegmentText splits text into ordered parts such that every part plus a
// header of at most headerReserve bytes fits in maxPart bytes. Cuts prefer,
// in order: the end of the last line, the last sentence-ending period-space,
// the last space; only when none is found past minBreakOffset does the part
// cut at the hard boundary (never mid-rune).
//
// The whole sequence is materialized because the part count must be known
// before headers can be rendered. Concatenating the parts reproduces the
// input exactly. Empty input yields no parts.
func SegmentText(text string, maxPart, headerReserve int) []string {
	if text == "" {
		return nil
	}
	if maxPart <= 0 {
		maxPart = DefaultMaxPartSize
	}
	if headerReserve < 0 {
		headerReserve = 0
	}
	budget := maxPart - headerReserve
	if budget <= 0 {
		budget = maxPart
	}

	var parts []string
	rest := text
	for rest != "" {
		if len(rest) <= budget {
			parts = append(parts, rest)
			break
		}

		cut := budget
		for cut > 0 && !utf8.RuneStart(rest[cut]) {
			cut--
		}
		if brk := naturalBreak(rest[:cut]); brk >= minBreakOffset {
			cut = brk
		}
		if cut == 0 {
			cut = budget
		}

		parts = append(parts, rest[:cut])
		rest = rest[cut:]
	}
	return parts
}

// naturalBreak returns the byte offset just past the most natural cut point
// inside window, or -1 when the window has none.
func naturalBreak(window string) int {
	if i := strings.LastIndexByte(window, '\n'); i >= 0 {
		return i + 1
	}
	if i := strings.LastIndex(window, ". "); i >= 0 {
		return i + 2
	}
	if i := strings.LastIndexByte(window, ' '); i >= 0 {
		return i + 1
	}
	return -1
}
