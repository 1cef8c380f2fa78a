// Package frontmatterops combines front matter parsing with fingerprinting.
package frontmatterops

import "git.home.luguber.info/inful/mdx2md/internal/frontmatter"

// Read returns the parsed front matter fields and the body of a Markdown or MDX document.
// A document without a front matter block yields had=false, no fields and the whole input
// as body.
func Read(content string) (fields map[string]any, body string, had bool, err error) {
	raw, body, had, err := frontmatter.Split(content)
	if err != nil {
		return nil, "", false, err
	}
	if !had {
		return map[string]any{}, body, false, nil
	}
	if fields, err = frontmatter.ParseYAML(raw); err != nil {
		return nil, "", true, err
	}
	return fields, body, true, nil
}
