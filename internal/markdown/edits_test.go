package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyEdits_SingleReplacement(t *testing.T) {
	src := "See [API](./api-guide.md) for details.\n"
	idx := strings.Index(src, "./api-guide.md")
	require.NotEqual(t, -1, idx)

	out, err := ApplyEdits(src, []Edit{{Start: idx, End: idx + len("./api-guide.md"), Replacement: "p/api-guide"}})
	require.NoError(t, err)
	require.Equal(t, "See [API](p/api-guide) for details.\n", out)
}

func TestApplyEdits_MultipleReplacementsAnyOrder(t *testing.T) {
	src := "A: ./old.md\nB: ./old.md#frag\n"
	idx1 := strings.Index(src, "./old.md")
	idx2 := strings.LastIndex(src, "./old.md#frag")

	out, err := ApplyEdits(src, []Edit{
		{Start: idx2, End: idx2 + len("./old.md#frag"), Replacement: "./new.md#frag"},
		{Start: idx1, End: idx1 + len("./old.md"), Replacement: "./new.md"},
	})
	require.NoError(t, err)
	require.Equal(t, "A: ./new.md\nB: ./new.md#frag\n", out)
}

func TestApplyEdits_Insertion(t *testing.T) {
	out, err := ApplyEdits("body", []Edit{{Start: 0, End: 0, Replacement: "# T\n\n"}})
	require.NoError(t, err)
	require.Equal(t, "# T\n\nbody", out)
}

func TestApplyEdits_RejectsInvalidRanges(t *testing.T) {
	src := "0123456789"

	_, err := ApplyEdits(src, []Edit{{Start: 2, End: 5}, {Start: 4, End: 6}})
	require.Error(t, err)

	_, err = ApplyEdits(src, []Edit{{Start: 5, End: 4}})
	require.Error(t, err)

	_, err = ApplyEdits(src, []Edit{{Start: 8, End: 11}})
	require.Error(t, err)

	_, err = ApplyEdits(src, []Edit{{Start: -1, End: 1}})
	require.Error(t, err)
}
