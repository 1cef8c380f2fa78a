package links

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/variables"
)

const site = "https://docs.example.io/en"

// docsTree creates a small documentation tree and returns its root.
func docsTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "docs")
	files := map[string]string{
		"p/get-started/x.mdx":      "# X",
		"p/get-started/foo.mdx":    "# Foo",
		"p/get-started/local.png":  "png",
		"assets/images/banner.png": "banner",
		"shared/logo.svg":          "<svg/>",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestHyperlinks_RelativeLinkResolvesAgainstDocsRoot(t *testing.T) {
	root := docsTree(t)
	r := New(Config{DocsRoot: root, SiteBase: site})
	sink := diag.NewCollector(nil)

	out, err := r.Hyperlinks("See [foo](./foo.mdx#setup).", filepath.Join(root, "p", "get-started"), sink)
	require.NoError(t, err)
	assert.Equal(t, "See [foo](https://docs.example.io/en/p/get-started/foo#setup).", out)
	assert.Zero(t, sink.Count())
}

func TestHyperlinks_Kinds(t *testing.T) {
	root := docsTree(t)
	r := New(Config{DocsRoot: root, SiteBase: site})
	docDir := filepath.Join(root, "p", "get-started")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"anchor", "[a](#top)", "[a](#top)"},
		{"mailto", "[m](mailto:a@b.c)", "[m](mailto:a@b.c)"},
		{"foreign", "[g](https://github.com/x)", "[g](https://github.com/x)"},
		{"root relative", "[r](/video/overview?platform=ios)", "[r](https://docs.example.io/en/video/overview?platform=ios)"},
		{"locale prefixed", "[r](/en/video/overview)", "[r](https://docs.example.io/en/video/overview)"},
		{"parent", "[p](../intro.mdx)", "[p](https://docs.example.io/en/p/intro)"},
		{"code span", "`[c](./foo.mdx)`", "`[c](./foo.mdx)`"},
		{"fenced", "```\n[c](./foo.mdx)\n```", "```\n[c](./foo.mdx)\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Hyperlinks(tt.in, docDir, diag.Discard)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestHyperlinks_MissingTargetWarns(t *testing.T) {
	root := docsTree(t)
	r := New(Config{DocsRoot: root, SiteBase: site})
	sink := diag.NewCollector(nil)

	out, err := r.Hyperlinks("[gone](./missing.mdx)", filepath.Join(root, "p", "get-started"), sink)
	require.NoError(t, err)
	assert.Equal(t, "[gone](https://docs.example.io/en/p/get-started/missing)", out)
	require.Equal(t, 1, sink.Count())
	assert.Equal(t, diag.KindBrokenLink, sink.Warnings()[0].Kind)
}

func TestHyperlinks_MarkdownScheme(t *testing.T) {
	root := docsTree(t)
	r := New(Config{DocsRoot: root, SiteBase: site, MarkdownBase: "https://md.example.io/"})
	docDir := filepath.Join(root, "p", "get-started")

	out, err := r.Hyperlinks(
		"[a](https://docs.example.io/en/video/overview?platform=ios#intro) [b](./foo.mdx) [c](https://other.io/en/x)",
		docDir, diag.Discard)
	require.NoError(t, err)
	assert.Equal(t,
		"[a](https://md.example.io/video/overview_ios.md#intro) [b](https://md.example.io/p/get-started/foo.md) [c](https://other.io/en/x)",
		out)
}

func TestImages_CopiesAndRewrites(t *testing.T) {
	root := docsTree(t)
	out := t.TempDir()
	r := New(Config{DocsRoot: root, SiteBase: site, OutputRoot: out, AssetBaseURL: "https://cdn.example.io/assets/"})
	sink := diag.NewCollector(nil)

	text := "![banner](/images/banner.png)\n![local](./local.png \"Local\")\n![logo](@docs/shared/logo.svg)\n![remote](https://x.io/a.png)"
	got, assets, err := r.Images(text, filepath.Join(root, "p", "get-started"), sink)
	require.NoError(t, err)
	assert.Equal(t,
		"![banner](https://cdn.example.io/assets/images/banner.png)\n"+
			"![local](https://cdn.example.io/assets/p/get-started/local.png \"Local\")\n"+
			"![logo](https://cdn.example.io/assets/shared/logo.svg)\n"+
			"![remote](https://x.io/a.png)",
		got)
	require.Len(t, assets, 3)
	assert.Zero(t, sink.Count())

	data, err := os.ReadFile(filepath.Join(out, "assets", "images", "banner.png"))
	require.NoError(t, err)
	assert.Equal(t, "banner", string(data))
	assert.FileExists(t, filepath.Join(out, "assets", "p", "get-started", "local.png"))
	assert.FileExists(t, filepath.Join(out, "assets", "shared", "logo.svg"))
}

func TestImages_MissingFileWarnsAndKeepsReference(t *testing.T) {
	root := docsTree(t)
	r := New(Config{DocsRoot: root, SiteBase: site})
	sink := diag.NewCollector(nil)

	got, assets, err := r.Images("![x](/images/none.png)", root, sink)
	require.NoError(t, err)
	assert.Equal(t, "![x](/images/none.png)", got)
	assert.Empty(t, assets)
	require.Equal(t, 1, sink.Count())
	assert.Equal(t, diag.KindAssetMissing, sink.Warnings()[0].Kind)
}

func TestImages_DefaultAssetBaseWithoutCopy(t *testing.T) {
	root := docsTree(t)
	r := New(Config{DocsRoot: root, SiteBase: site})

	got, assets, err := r.Images("![b](/images/banner.png)", root, diag.Discard)
	require.NoError(t, err)
	assert.Equal(t, "![b](/assets/images/banner.png)", got)
	require.Len(t, assets, 1)
	assert.Empty(t, assets[0].Target)
}

func TestLinkTags(t *testing.T) {
	globals := variables.NewTable(map[string]string{"CONSOLE_URL": "https://console.example.io"})
	r := New(Config{SiteBase: site, Globals: globals})
	sink := diag.NewCollector(nil)

	in := `Open <Link to="{{Global.CONSOLE_URL}}/projects">the console</Link>, ` +
		`read <Link to="/video/overview">the overview</Link>, ` +
		`or <Link to="{{Global.MISSING}}">this</Link>.`
	out := r.LinkTags(in, sink)
	assert.Equal(t,
		`Open [the console](https://console.example.io/projects), `+
			`read [the overview](/video/overview), `+
			`or <Link to="{{Global.MISSING}}">this</Link>.`,
		out)
	require.Equal(t, 1, sink.Count())
	assert.Equal(t, diag.KindUnknownGlobalKey, sink.Warnings()[0].Kind)
}

func TestRewrite_RunsAllStages(t *testing.T) {
	root := docsTree(t)
	r := New(Config{DocsRoot: root, SiteBase: site, Globals: variables.NewTable(nil)})
	sink := diag.NewCollector(nil)

	out, assets, err := r.Rewrite("<Link to=\"./foo.mdx\">Foo</Link> ![b](/images/banner.png)",
		filepath.Join(root, "p", "get-started"), sink)
	require.NoError(t, err)
	assert.Equal(t, "[Foo](https://docs.example.io/en/p/get-started/foo) ![b](/assets/images/banner.png)", out)
	assert.Len(t, assets, 1)
	assert.Zero(t, sink.Count())
}
