package jsobj

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TolerantObject(t *testing.T) {
	src := `{
  // product scope
  'video-calling': {
    PRODUCT: 'Video Calling', /* inline */
    "CLIENT": ` + "`Video SDK`" + `,
    nested: { a: 1, },
  },
  ios: { SDK: 'iOS' + ' ' + 'SDK', VERSION: 4.2 },
  empty: [],
}`
	obj, err := ParseObject(src)
	require.NoError(t, err)

	vc := obj["video-calling"].(map[string]any)
	assert.Equal(t, "Video Calling", vc["PRODUCT"])
	assert.Equal(t, "Video SDK", vc["CLIENT"])
	assert.Equal(t, map[string]any{"a": Number("1")}, vc["nested"])

	ios := obj["ios"].(map[string]any)
	assert.Equal(t, "iOS SDK", ios["SDK"])
	assert.Equal(t, Number("4.2"), ios["VERSION"])
	assert.Equal(t, []any{}, obj["empty"])
}

func TestParse_Literals(t *testing.T) {
	v, err := Parse(`[true, false, null, undefined, -3, props.platform, data['x'], 'it\'s', "a\nb" + 1]`)
	require.NoError(t, err)
	assert.Equal(t, []any{true, false, nil, nil, Number("-3"), Ident("props.platform"), Ident("data['x']"), "it's", "a\nb1"}, v)
}

func TestParse_TemplateInterpolation(t *testing.T) {
	v, err := ParseWith("`${BASE}/path/${MISSING}`", Options{Vars: map[string]string{"BASE": "https://x.io"}})
	require.NoError(t, err)
	assert.Equal(t, "https://x.io/path/${MISSING}", v)
}

func TestParse_ErrorsArePositioned(t *testing.T) {
	_, err := Parse("{\n  a: 'x',\n  b: 'y' 'z'\n}")
	require.Error(t, err)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Line)
	assert.Equal(t, 10, se.Column)
	assert.Contains(t, err.Error(), "3:10:")
}

func TestParse_Unterminated(t *testing.T) {
	for _, src := range []string{"{a: 1", "[1, 2", "'abc", "`abc", "{a 1}"} {
		_, err := Parse(src)
		assert.Error(t, err, src)
	}
}

func TestParse_UnsupportedConcat(t *testing.T) {
	_, err := Parse("'a' + other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported '+' operand")
}

func TestParseObject_RejectsNonObject(t *testing.T) {
	_, err := ParseObject("[1]")
	assert.Error(t, err)
}

func TestBindingsAndLookup(t *testing.T) {
	src := `import x from './x';

export const products = {
  ios: 'Apple',
};
const data = { KEY: 'v' };
export const link = 'https://' + 'x.io';
`
	bindings, err := Bindings(src, Options{})
	require.NoError(t, err)
	require.Len(t, bindings, 3)
	assert.Equal(t, "products", bindings[0].Name)
	assert.True(t, bindings[0].Exported)
	assert.False(t, bindings[1].Exported)

	v, ok, err := Lookup(src, "data", Options{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"KEY": "v"}, v)

	_, ok, err = Lookup(src, "missing", Options{})
	require.NoError(t, err)
	assert.False(t, ok)

	exports, err := Exports(src, Options{})
	require.NoError(t, err)
	assert.Len(t, exports, 2)
	assert.Equal(t, "https://x.io", exports["link"])
}

func TestString(t *testing.T) {
	s, ok := String(Number("7"))
	assert.True(t, ok)
	assert.Equal(t, "7", s)
	_, ok = String(map[string]any{})
	assert.False(t, ok)
}
