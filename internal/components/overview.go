package components

import (
	"fmt"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	"git.home.luguber.info/inful/mdx2md/internal/jsobj"
	"git.home.luguber.info/inful/mdx2md/internal/mdx"
)

type callToAction struct {
	attr        string
	label       string
	description string // primary entries only
}

var callsToAction = []callToAction{
	{attr: "quickStartLink", label: "Quick start", description: "Build your first app step by step."},
	{attr: "apiReferenceLink", label: "API reference", description: "Browse the complete API."},
	{attr: "samplesLink", label: "Sample projects"},
	{attr: "pricingLink", label: "Pricing"},
}

// ProductOverview converts <ProductOverview> panels into a titled page with a call to
// action list and a feature list. Relative links are made absolute against siteBase.
func ProductOverview(text, siteBase string, sink diag.Sink) string {
	sink = orDiscard(sink)
	out, issues := mdx.Rewrite(text, mdx.Options{Names: []string{"ProductOverview"}, SkipFences: true}, func(n *mdx.Node, inner func() string) string {
		title := strings.TrimSpace(n.Attrs.Value("title"))
		var parts []string
		if title != "" {
			parts = append(parts, "# "+title)
		}
		if img, ok := n.Attrs.First("img", "image"); ok && img != "" {
			parts = append(parts, fmt.Sprintf("![%s](%s)", title, img))
		}
		if body := block(inner()); body != "" {
			parts = append(parts, body)
		}

		var ctas []string
		for _, c := range callsToAction {
			link, ok := n.Attrs.Get(c.attr)
			if !ok || strings.TrimSpace(link) == "" {
				continue
			}
			item := fmt.Sprintf("- [%s](%s)", c.label, AbsoluteURL(siteBase, link))
			if c.description != "" {
				item += ": " + c.description
			}
			ctas = append(ctas, item)
		}
		if len(ctas) > 0 {
			parts = append(parts, "## Start building with\n\n"+strings.Join(ctas, "\n"))
		}

		if features := overviewFeatures(n, siteBase, sink); len(features) > 0 {
			parts = append(parts, "## Product Features\n\n"+strings.Join(features, "\n"))
		}
		return strings.Join(parts, "\n\n")
	})
	warnIssues(sink, issues)
	return out
}

func overviewFeatures(n *mdx.Node, siteBase string, sink diag.Sink) []string {
	attr, ok := n.Attrs.Lookup("features")
	if !ok {
		return nil
	}
	v, err := jsobj.Parse(attr.Value)
	if err != nil {
		sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: "cannot parse ProductOverview features: " + err.Error()})
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		sink.Warn(diag.Warning{Kind: diag.KindMalformedTag, Message: "ProductOverview features is not an array"})
		return nil
	}

	var out []string
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		title, _ := jsobj.String(obj["title"])
		content, _ := jsobj.String(obj["content"])
		link, _ := jsobj.String(obj["link"])
		content = strings.Join(strings.Fields(content), " ")

		entry := "- " + title
		if link != "" {
			entry = fmt.Sprintf("- [%s](%s)", title, AbsoluteURL(siteBase, link))
		}
		if content != "" {
			entry += ": " + content
		}
		out = append(out, entry)
	}
	return out
}

// AbsoluteURL joins a site-relative link with siteBase. When the link repeats the last
// segment of the base (a locale such as /en), the duplicate is dropped.
func AbsoluteURL(siteBase, link string) string {
	link = strings.TrimSpace(link)
	if link == "" || strings.HasPrefix(link, "#") || strings.HasPrefix(link, "//") {
		return link
	}
	if u, err := url.Parse(link); err == nil && u.Scheme != "" {
		return link
	}

	base := strings.TrimRight(siteBase, "/")
	path := "/" + strings.TrimPrefix(strings.TrimPrefix(link, "./"), "/")
	if bu, err := url.Parse(base); err == nil {
		if last := lastSegment(bu.Path); last != "" {
			prefix := "/" + last
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				path = strings.TrimPrefix(path, prefix)
			}
		}
	}
	return base + path
}

func lastSegment(p string) string {
	p = strings.Trim(p, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
