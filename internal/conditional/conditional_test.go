package conditional

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

func TestResolve_Selection(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		selector string
		want     string
	}{
		{"allow list hit", `a<PlatformWrapper platform="[ios, android]">X</PlatformWrapper>b`, "ios", "aXb"},
		{"allow list miss", `a<PlatformWrapper platform="[ios, android]">X</PlatformWrapper>b`, "web", "ab"},
		{"expression list", `<PlatformWrapper platform={["web","flutter"]}>X</PlatformWrapper>`, "flutter", "X"},
		{"bare value", `<PlatformWrapper platform='web'>X</PlatformWrapper>`, "web", "X"},
		{"deny list hit", `<PlatformWrapper notAllowed="web">X</PlatformWrapper>`, "web", ""},
		{"deny list miss", `<PlatformWrapper notAllowed="[web, unity]">X</PlatformWrapper>`, "ios", "X"},
		{"allow wins over deny", `<PlatformWrapper platform="ios" notAllowed="ios">X</PlatformWrapper>`, "ios", "X"},
		{"no attributes", `a<PlatformWrapper>X</PlatformWrapper>b`, "ios", "ab"},
		{"self closing", `a<PlatformWrapper platform="ios" />b`, "ios", "ab"},
		{"other kind untouched", `<ProductWrapper product="voice">X</ProductWrapper>`, "ios", `<ProductWrapper product="voice">X</ProductWrapper>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in, Platform, tt.selector, nil))
		})
	}
}

func TestResolve_NestedSameKind(t *testing.T) {
	in := "<PlatformWrapper platform=\"[ios, web]\">\nouter\n<PlatformWrapper platform=\"web\">\ninner\n</PlatformWrapper>\ntail\n</PlatformWrapper>"

	assert.Equal(t, "\nouter\n\ntail\n", Resolve(in, Platform, "ios", nil))
	assert.Equal(t, "\nouter\n\ninner\n\ntail\n", Resolve(in, Platform, "web", nil))
	assert.Equal(t, "", Resolve(in, Platform, "android", nil))
}

func TestResolve_ProductKind(t *testing.T) {
	in := `<ProductWrapper product="voice-calling">V</ProductWrapper><ProductWrapper notAllowed="voice-calling">O</ProductWrapper>`
	assert.Equal(t, "V", Resolve(in, Product, "voice-calling", nil))
	assert.Equal(t, "O", Resolve(in, Product, "video-calling", nil))
}

func TestResolve_OutputIsBalanced(t *testing.T) {
	inputs := []string{
		"<PlatformWrapper platform=\"ios\">a<PlatformWrapper platform=\"ios\">b</PlatformWrapper>",
		"a</PlatformWrapper>b<PlatformWrapper notAllowed=\"web\">c",
		"<PlatformWrapper platform=\"ios\"><PlatformWrapper>x</PlatformWrapper></PlatformWrapper></PlatformWrapper>",
	}
	for _, in := range inputs {
		out := Resolve(in, Platform, "ios", nil)
		assert.NotContains(t, out, "<PlatformWrapper", in)
		assert.NotContains(t, out, "</PlatformWrapper>", in)
	}
}

func TestResolve_UnclosedOpenerWarnsAndKeepsContent(t *testing.T) {
	sink := diag.NewCollector(nil)
	out := Resolve("a<PlatformWrapper platform=\"web\">b", Platform, "ios", sink)
	assert.Equal(t, "ab", out)
	require.Equal(t, 1, sink.Count())
	assert.Equal(t, diag.KindMalformedTag, sink.Warnings()[0].Kind)
}

func TestResolve_OrphanCloserWarns(t *testing.T) {
	sink := diag.NewCollector(nil)
	assert.Equal(t, "ab", Resolve("a</ProductWrapper>b", Product, "voice", sink))
	assert.Equal(t, 1, sink.Count())
}

func TestResolve_IgnoresFencedCode(t *testing.T) {
	in := "```jsx\n<PlatformWrapper platform=\"web\">demo</PlatformWrapper>\n```\n"
	assert.Equal(t, in, Resolve(in, Platform, "ios", nil))
}

func TestResolveWith_ElementCap(t *testing.T) {
	in := strings.Repeat(`<PlatformWrapper platform="web">x</PlatformWrapper>`, 3)
	sink := diag.NewCollector(nil)
	out := ResolveWith(in, Platform, "ios", sink, 1)
	assert.Equal(t, "xx", out)
	assert.Positive(t, sink.Count())
}

func TestAllowed(t *testing.T) {
	attrs := mdx.Attrs{{Name: "platform", Value: "[ios, android]", Kind: mdx.AttrString}}
	assert.True(t, Allowed(attrs, Platform, "android"))
	assert.False(t, Allowed(attrs, Product, "android"))
}
