package services

import (
	"math"
	"sort"
	"strings"
)

// ParseRanges resolves a range spec such as "1-3, 5" against a document of
// pageCount pages. It returns zero-based, unique page indices in ascending order.
// Tokens that are not numbers or fall outside the document are dropped; ranges are
// clamped to [1, pageCount]. It never fails: bad input yields fewer pages.
func ParseRanges(spec string, pageCount int) []int {
	pages := make(map[int]struct{})
	for _, part := range strings.Split(spec, ",") {
		token := strings.TrimSpace(part)
		if strings.Contains(token, "-") {
			bounds := strings.Split(token, "-")
			start, okStart := leadingInt(bounds[0])
			end, okEnd := leadingInt(bounds[1])
			if !okStart || !okEnd {
				continue
			}
			for i := max(1, start); i <= min(pageCount, end); i++ {
				pages[i-1] = struct{}{}
			}
			continue
		}
		if n, ok := leadingInt(token); ok && n >= 1 && n <= pageCount {
			pages[n-1] = struct{}{}
		}
	}

	indices := make([]int, 0, len(pages))
	for idx := range pages {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// leadingInt parses the integer prefix of s after leading whitespace, with an
// optional sign, ignoring anything after the digits: " 12px" is 12.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		d := int(s[digits] - '0')
		if n > (math.MaxInt32-d)/10 {
			n = math.MaxInt32
			continue
		}
		n = n*10 + d
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
