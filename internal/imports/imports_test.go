package imports

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/variables"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return root
}

func testVars() *variables.Substitutor {
	return &variables.Substitutor{
		Globals:  variables.NewTable(map[string]string{"COMPANY": "Agora"}),
		Products: variables.NewScoped("product", map[string]map[string]string{"voice": {"PRODUCT": "Voice"}}),
		Platforms: variables.NewScoped("platform", map[string]map[string]string{
			"ios": {"CLIENT": "iOS"},
			"web": {"CLIENT": "Web"},
		}),
	}
}

const docSrc = `---
title: Doc
---
import Setup from '@docs/shared/common/_setup.mdx';
import Tabs from '@theme/Tabs';
import * as links from './_links.mdx';
import Vpd from '@docs/shared/variables/vpd.mdx';

export const toc = [{}];

Intro {links.sdk[props.platform]} and {links.home} {links.missing} {links.sdk['web']}

<Setup />

<Setup platform="web"/>

` + "```js\nimport Thing from './thing.mdx';\n```\n"

func TestExpand_SplicesFragmentsPerBranch(t *testing.T) {
	root := writeTree(t, map[string]string{
		"p/get-started/doc.mdx":    docSrc,
		"p/get-started/_links.mdx": "export const sdk = { ios: 'https://x/ios', web: 'https://x/web' };\nexport const home = 'https://x';\n",
		"shared/common/_setup.mdx": "Setup for <Vpl k=\"CLIENT\" />\n<PlatformWrapper platform=\"web\">WEB ONLY\n</PlatformWrapper>",
		"shared/variables/vpd.mdx": "never read",
	})
	e := New(root, testVars())
	sink := diag.NewCollector(nil)

	out, err := e.Expand(filepath.Join(root, "p/get-started/doc.mdx"), Selection{Platform: "ios", Product: "voice"}, sink)
	require.NoError(t, err)

	assert.NotContains(t, out, "title: Doc")
	assert.NotContains(t, out, "import Setup")
	assert.NotContains(t, out, "@theme/Tabs")
	assert.NotContains(t, out, "export const toc")
	assert.Contains(t, out, "Intro https://x/ios and https://x {links.missing} https://x/web")
	assert.Contains(t, out, "Setup for iOS\n")
	assert.Contains(t, out, "Setup for Web\nWEB ONLY\n")
	assert.NotContains(t, out, "<Setup")
	assert.Contains(t, out, "```js\nimport Thing from './thing.mdx';\n```\n")

	require.Equal(t, 1, sink.Count())
	assert.Equal(t, diag.KindUnresolvedReference, sink.Warnings()[0].Kind)
}

func TestExpand_NestedFragmentsResolveRelativeToIncluder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"doc.mdx":    "import A from './frag/a.mdx';\n\n<A />\n",
		"frag/a.mdx": "import B from './b.mdx';\n\nA then <B />",
		"frag/b.mdx": "<ProductWrapper product=\"voice\">B for voice</ProductWrapper>",
	})
	out, err := New(root, nil).Expand(filepath.Join(root, "doc.mdx"), Selection{Platform: "ios", Product: "voice"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A then B for voice\n", out)
}

func TestExpand_CyclicImportFailsFast(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.mdx": "import B from './b.mdx';\n<B />",
		"b.mdx": "import A from './a.mdx';\n<A />",
	})
	_, err := New(root, nil).Expand(filepath.Join(root, "a.mdx"), Selection{}, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryImport))
	assert.Contains(t, err.Error(), "cyclic import")
	assert.Contains(t, err.Error(), "a.mdx -> ")
}

func TestExpand_MissingFragmentIsFatal(t *testing.T) {
	root := writeTree(t, map[string]string{
		"doc.mdx": "import Gone from './gone.mdx';\n<Gone />",
	})
	_, err := New(root, nil).Expand(filepath.Join(root, "doc.mdx"), Selection{}, nil)
	require.Error(t, err)
	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.True(t, classified.IsFatal())
	assert.True(t, strings.HasSuffix(classified.Path(), "gone.mdx"))
}

func TestExpand_UnusedImportIsNotRead(t *testing.T) {
	root := writeTree(t, map[string]string{
		"doc.mdx": "import Gone from './gone.mdx';\nno tag here\n",
	})
	out, err := New(root, nil).Expand(filepath.Join(root, "doc.mdx"), Selection{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "no tag here\n", out)
}

func TestExpand_FragmentVariableScopeErrorPropagates(t *testing.T) {
	root := writeTree(t, map[string]string{
		"doc.mdx": "import F from './f.mdx';\n<F platform=\"android\" />",
		"f.mdx":   "client <Vpl k=\"CLIENT\" />",
	})
	_, err := New(root, testVars()).Expand(filepath.Join(root, "doc.mdx"), Selection{Platform: "ios"}, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryVariables))
}

func TestFindRefs(t *testing.T) {
	src := "import A from './a.mdx';\nimport * as ns from '@docs/x';\nimport {B} from 'b';\nimport 'style.css';\ntext\n"
	refs := FindRefs(src)
	require.Len(t, refs, 4)
	assert.Equal(t, RefTag, refs[0].Kind)
	assert.Equal(t, "A", refs[0].Name)
	assert.Equal(t, RefNamespace, refs[1].Kind)
	assert.Equal(t, "ns", refs[1].Name)
	assert.Equal(t, RefOther, refs[2].Kind)
	assert.Equal(t, RefOther, refs[3].Kind)
	assert.Equal(t, "text\n", StripImports(src, refs))
}

func TestFindRefs_SkipsCodeSampleBodies(t *testing.T) {
	src := "import A from './a.mdx';\n\n<CodeBlock language=\"js\">{`\nimport AgoraRTC from \"agora-rtc-sdk-ng\";\nimport './style.css';\nconst client = AgoraRTC.createClient();\n`}</CodeBlock>\n\n" +
		"<ExampleTab title=\"ts\">\nimport { x } from 'y';\n</ExampleTab>\n"
	refs := FindRefs(src)
	require.Len(t, refs, 1)
	assert.Equal(t, "A", refs[0].Name)

	out := StripImports(src, refs)
	assert.Contains(t, out, "import AgoraRTC from \"agora-rtc-sdk-ng\";\nimport './style.css';\n")
	assert.Contains(t, out, "import { x } from 'y';")
}

func TestExpand_KeepsImportsInsideCodeBlocks(t *testing.T) {
	root := writeTree(t, map[string]string{
		"doc.mdx":    "import Setup from './_setup.mdx';\n\n<Setup />\n\n<CodeBlock language=\"js\">{`\nimport AgoraRTC from \"agora-rtc-sdk-ng\";\nimport './style.css';\n`}</CodeBlock>\n",
		"_setup.mdx": "Setup.\n<CodeBlock language=\"dart\">{`\nimport 'package:agora_rtc_engine/agora_rtc_engine.dart';\n`}</CodeBlock>\n",
	})
	out, err := New(root, nil).Expand(filepath.Join(root, "doc.mdx"), Selection{}, nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "import Setup")
	assert.Contains(t, out, "Setup.\n")
	assert.Contains(t, out, "import AgoraRTC from \"agora-rtc-sdk-ng\";\nimport './style.css';\n")
	assert.Contains(t, out, "import 'package:agora_rtc_engine/agora_rtc_engine.dart';\n")
}

func TestStripTOC(t *testing.T) {
	src := "a\nexport const toc = [\n  {value: 'x', id: 'x', level: 2},\n];\nb\n"
	assert.Equal(t, "a\nb\n", StripTOC(src))
	assert.Equal(t, "a\n", StripTOC("a\nexport const toc = [{}];"))
}

func TestSubstituteNamespace(t *testing.T) {
	bag := Bag{
		"sdk":     map[string]any{"ios": "I", "web": map[string]any{"npm": "N"}},
		"version": "4.2",
	}
	sink := diag.NewCollector(nil)
	out := SubstituteNamespace("{ns.version} {ns.sdk[props.platform]} {ns.sdk.web.npm} {ns.sdk['web']['npm']} {ns.sdk} {other.x}", "ns", bag, "ios", sink)
	assert.Equal(t, "4.2 I N N {ns.sdk} {other.x}", out)
	assert.Equal(t, 1, sink.Count())
}
