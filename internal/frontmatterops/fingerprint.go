package frontmatterops

import (
	"errors"
	"sort"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/mdx2md/internal/frontmatter"
)

// ComputeFingerprint computes the content fingerprint of an exported document.
//
// Canonicalization:
//   - excludes: fingerprint, exported_on
//   - serializes YAML with keys sorted
//   - trims a single trailing newline from the serialized YAML before hashing
func ComputeFingerprint(fields map[string]any, body string) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == mdfp.FingerprintField || k == frontmatter.KeyExportedOn {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	serialized, err := frontmatter.SerializeOrdered(fields, keys)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(serialized, "\n"), body), nil
}

// FingerprintDocument fingerprints a complete Markdown document.
func FingerprintDocument(content string) (string, error) {
	fields, body, _, err := Read(content)
	if err != nil {
		return "", err
	}
	return ComputeFingerprint(fields, body)
}
