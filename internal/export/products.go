package export

import (
	"os"
	"regexp"

	"git.home.luguber.info/inful/mdx2md/internal/diag"
	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/jsobj"
)

var (
	productIDRe = regexp.MustCompile(`\bid\s*:\s*['"]([^'"]+)['"]`)
	platformsRe = regexp.MustCompile(`\bplatforms\s*:\s*`)
)

// Products maps a product id to the platforms it is published for.
type Products map[string][]string

// LoadProducts reads the product catalogue (data/v2/products.js).
func LoadProducts(path string, sink diag.Sink) (Products, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FragmentMissing(path).WithCause(err).Build()
	}
	return ParseProducts(string(data), path, sink), nil
}

// ParseProducts extracts `id: '<product>'` entries and the `platforms: { latest: [...] }`
// object that follows each of them. The rest of the catalogue (icons, JSX, functions) is
// never evaluated. A product whose platforms cannot be parsed is reported and left out.
func ParseProducts(src, path string, sink diag.Sink) Products {
	out := Products{}
	ids := productIDRe.FindAllStringSubmatchIndex(src, -1)
	for i, m := range ids {
		id := src[m[2]:m[3]]
		end := len(src)
		if i+1 < len(ids) {
			end = ids[i+1][0]
		}
		loc := platformsRe.FindStringIndex(src[m[1]:end])
		if loc == nil {
			continue
		}
		v, _, err := jsobj.ValueAt(src, m[1]+loc[1], jsobj.Options{})
		if err != nil {
			sink.Warn(diag.Warning{
				Kind:    diag.KindMalformedTag,
				Path:    path,
				Message: "cannot parse platforms of product " + id + ": " + err.Error(),
			})
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		latest, _ := obj["latest"].([]any)
		platforms := make([]string, 0, len(latest))
		for _, p := range latest {
			if s, ok := jsobj.String(p); ok && s != "" {
				platforms = append(platforms, s)
			}
		}
		out[id] = platforms
	}
	return out
}
