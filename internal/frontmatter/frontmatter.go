package frontmatter

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates YAML frontmatter (`---` delimited) from the document body.
//
// If the document does not start with a delimiter line, had is false and body is the
// full input. CRLF documents are accepted; the returned parts keep their line endings.
func Split(content string) (raw string, body string, had bool, err error) {
	nl := "\n"
	if strings.HasPrefix(content, "---\r\n") {
		nl = "\r\n"
	} else if !strings.HasPrefix(content, "---\n") {
		return "", content, false, nil
	}

	start := len("---" + nl)
	if strings.HasPrefix(content[start:], "---"+nl) {
		return "", content[start+len("---"+nl):], true, nil
	}

	closeSeq := nl + "---" + nl
	idx := strings.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the final line has no trailing newline.
		if strings.HasSuffix(content, nl+"---") {
			return content[start : len(content)-len("---")], "", true, nil
		}
		return "", "", false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Join reassembles a document from serialized YAML and a body.
//
// An empty frontmatter yields the body unchanged.
func Join(serialized string, body string) string {
	if serialized == "" {
		return body
	}
	if !strings.HasSuffix(serialized, "\n") {
		serialized += "\n"
	}
	return "---\n" + serialized + "---\n" + body
}
