package variables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
)

const globalSrc = `// Global variables
export const COMPANY = 'Agora';
export const DOCS = "https://docs.agora.io";
export const API_REF = ` + "`${DOCS}/en/api-ref`" + `;
export const DEEP = ` + "`${API_REF}/v4`" + `;
export const GHOST = '${UNDEFINED}x';
`

func TestParseDeclarations(t *testing.T) {
	decls := ParseDeclarations(globalSrc + "PLAIN = bare value\n")
	require.Len(t, decls, 6)
	assert.Equal(t, Declaration{Name: "COMPANY", Raw: "Agora", Line: 2}, decls[0])
	assert.Equal(t, "${DOCS}/en/api-ref", decls[2].Raw)
	assert.Equal(t, "PLAIN", decls[5].Name)
	assert.Equal(t, "bare value", decls[5].Raw)
}

func TestResolve_NestedReferences(t *testing.T) {
	table := Resolve(ParseDeclarations(globalSrc))

	v, ok := table.Get("DEEP")
	require.True(t, ok)
	assert.Equal(t, "https://docs.agora.io/en/api-ref/v4", v)

	v, _ = table.Get("GHOST")
	assert.Equal(t, "x", v)

	_, ok = table.Get("NOPE")
	assert.False(t, ok)
	assert.Equal(t, 5, table.Len())
}

func TestResolve_CycleIsOrderIndependent(t *testing.T) {
	forward := Resolve([]Declaration{
		{Name: "A", Raw: "a${B}"},
		{Name: "B", Raw: "b${A}"},
		{Name: "C", Raw: "c${A}"},
		{Name: "S", Raw: "s${S}"},
	})
	backward := Resolve([]Declaration{
		{Name: "S", Raw: "s${S}"},
		{Name: "C", Raw: "c${A}"},
		{Name: "B", Raw: "b${A}"},
		{Name: "A", Raw: "a${B}"},
	})

	for _, name := range []string{"A", "B", "C", "S"} {
		f, _ := forward.Get(name)
		b, _ := backward.Get(name)
		assert.Equal(t, f, b, name)
	}
	a, _ := forward.Get("A")
	assert.Equal(t, "a${B}", a)
	c, _ := forward.Get("C")
	assert.Equal(t, "ca${B}", c)
	s, _ := forward.Get("S")
	assert.Equal(t, "s${S}", s)
}

const productSrc = `import x from 'y';

const data = {
  // comment
  'video-calling': {
    PRODUCT: 'Video Calling',
    /* block */
    COMPANY_ID: 12,
  },
  voice: { PRODUCT: 'Voice Calling', },
};

export default data;
`

func TestParseScoped(t *testing.T) {
	s, err := ParseScoped("product", productSrc)
	require.NoError(t, err)
	assert.Equal(t, "product", s.Name())
	assert.True(t, s.HasScope("voice"))
	assert.False(t, s.HasScope("ios"))

	v, ok := s.Lookup("video-calling", "COMPANY_ID")
	require.True(t, ok)
	assert.Equal(t, "12", v)

	assert.Equal(t, "Voice Calling", s.Replace("<Vpd k=\"PRODUCT\" />", "voice", "PRODUCT"))
	assert.Equal(t, "<Vpd k=\"X\" />", s.Replace("<Vpd k=\"X\" />", "voice", "X"))
	assert.Equal(t, "<tag>", s.Replace("<tag>", "missing", "PRODUCT"))
}

func TestLoadScoped_ParseErrorHasPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platform.js")
	require.NoError(t, os.WriteFile(path, []byte("const data = {\n  ios: { A: 'x' 'y' },\n};\n"), 0o600))

	_, err := LoadScoped("platform", path)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryParse))
	assert.Contains(t, err.Error(), "2:")
}

func TestLoadGlobals_MissingIsFatal(t *testing.T) {
	_, err := LoadGlobals(filepath.Join(t.TempDir(), "global.js"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryImport))
	assert.True(t, ferrors.IsFatal(err))
}

func newSubstitutor(t *testing.T) *Substitutor {
	t.Helper()
	products, err := ParseScoped("product", productSrc)
	require.NoError(t, err)
	return &Substitutor{
		Globals:  Resolve(ParseDeclarations(globalSrc)),
		Products: products,
		Platforms: NewScoped("platform", map[string]map[string]string{
			"ios": {"CLIENT": "iOS"},
		}),
	}
}

func TestSubstitutor_Apply(t *testing.T) {
	s := newSubstitutor(t)
	sink := diag.NewCollector(nil)

	in := "By <Vg k=\"COMPANY\" />: <Vpd k=\"PRODUCT\"/> on <Vpl k=\"CLIENT\" />.\n" +
		"```\nsdk <Vg k='COMPANY'>\n```\n<Vg k=\"UNKNOWN\" />"
	out, err := s.Apply(in, "ios", "voice", sink)
	require.NoError(t, err)
	assert.Equal(t, "By Agora: Voice Calling on iOS.\n```\nsdk Agora\n```\n<Vg k=\"UNKNOWN\" />", out)
	require.Equal(t, 1, sink.Count())
	assert.Equal(t, diag.KindUnresolvedReference, sink.Warnings()[0].Kind)

	again, err := s.Apply(out, "ios", "voice", nil)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestSubstitutor_UnknownScopeIsFatal(t *testing.T) {
	s := newSubstitutor(t)

	_, err := s.Apply("<Vpl k=\"CLIENT\" />", "android", "voice", nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryVariables))
	assert.Contains(t, err.Error(), "unknown platform scope: android")

	_, err = s.Apply("<Vpd k=\"PRODUCT\" />", "ios", "broadcast", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown product scope: broadcast")

	out, err := s.Apply("no tags here", "android", "broadcast", nil)
	require.NoError(t, err)
	assert.Equal(t, "no tags here", out)
}
