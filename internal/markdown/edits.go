package markdown

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Edit replaces source[Start:End] with Replacement. Start == End inserts.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

func (e Edit) valid(n int) bool {
	return e.Start >= 0 && e.Start <= e.End && e.End <= n
}

// ApplyEdits applies non-overlapping edits given in original-source offsets, in any order.
func ApplyEdits(source string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return source, nil
	}

	ordered := slices.Clone(edits)
	slices.SortFunc(ordered, func(a, b Edit) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	var b strings.Builder
	b.Grow(len(source))
	pos := 0
	for _, e := range ordered {
		if !e.valid(len(source)) {
			return "", fmt.Errorf("edit [%d,%d) outside source of %d bytes", e.Start, e.End, len(source))
		}
		if e.Start < pos {
			return "", fmt.Errorf("edit [%d,%d) overlaps previous edit ending at %d", e.Start, e.End, pos)
		}
		b.WriteString(source[pos:e.Start])
		b.WriteString(e.Replacement)
		pos = e.End
	}
	b.WriteString(source[pos:])
	return b.String(), nil
}
