package links

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

// globalLinkRe matches `{{Global.KEY}}/rest` link targets. The loose prefix accepts the
// spellings found in the documentation sources.
var globalLinkRe = regexp.MustCompile(`^\{\{\s*(?:[Gg]lobal?|GLOBAL)\.*([^}\s]+)\s*\}\}(.*)$`)

// LinkTags converts `<Link to="...">name</Link>` into Markdown links. Targets of the form
// `{{Global.KEY}}/sub` are resolved through the global table; an unknown key leaves the
// tag in place and warns.
func (r *Rewriter) LinkTags(text string, sink diag.Sink) string {
	out, issues := mdx.Rewrite(text, mdx.Options{Names: []string{"Link"}, SkipFences: true},
		func(n *mdx.Node, inner func() string) string {
			to, ok := n.Attrs.Get("to")
			if !ok {
				return inner()
			}
			name := strings.TrimSpace(inner())
			if m := globalLinkRe.FindStringSubmatch(to); m != nil {
				base, found := r.cfg.Globals.Get(m[1])
				if !found {
					sink.Warn(diag.Warning{
						Kind:    diag.KindUnknownGlobalKey,
						Message: fmt.Sprintf("unknown global link key %q", m[1]),
					})
					return n.Outer()
				}
				to = base + m[2]
			}
			return "[" + name + "](" + to + ")"
		})
	for _, is := range issues {
		sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: is.String()})
	}
	return out
}
