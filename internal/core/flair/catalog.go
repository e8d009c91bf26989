// Package flair contains the pure business logic for the flair policy:
// the flair catalog, keyword matching, submission phases, guards and planners.
package flair

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Flair is a tag name and the category code applied alongside it.
type Flair struct {
	Name     string
	CSSClass string
}

// Catalog is the ordered set of flairs an author may request.
type Catalog struct {
	flairs  []Flair
	byName  map[string]Flair
	pattern *regexp.Regexp
}

// DefaultFlairs is the catalog used when configuration does not provide one.
var DefaultFlairs = []Flair{
	{Name: "meme", CSSClass: "meme"},
	{Name: "social", CSSClass: "social"},
	{Name: "advice", CSSClass: "advice"},
	{Name: "serious", CSSClass: "serious"},
	{Name: "discussion", CSSClass: "discuss"},
	{Name: "other", CSSClass: "other"},
	{Name: "rant", CSSClass: "rant"},
	{Name: "relationship", CSSClass: "relationship"},
	{Name: "media", CSSClass: "media"},
}

// NewCatalog builds a catalog from an ordered flair list.
// Names are matched case-insensitively and must be unique.
func NewCatalog(flairs []Flair) (*Catalog, error) {
	if len(flairs) == 0 {
		return nil, fmt.Errorf("flair catalog is empty")
	}

	c := &Catalog{
		flairs: make([]Flair, 0, len(flairs)),
		byName: make(map[string]Flair, len(flairs)),
	}
	alternatives := make([]string, 0, len(flairs))
	for _, f := range flairs {
		name := strings.ToLower(strings.TrimSpace(f.Name))
		if name == "" {
			return nil, fmt.Errorf("flair name must not be empty")
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate flair name %q", name)
		}
		entry := Flair{Name: name, CSSClass: f.CSSClass}
		c.flairs = append(c.flairs, entry)
		c.byName[name] = entry
		alternatives = append(alternatives, "("+regexp.QuoteMeta(name)+")")
	}

	pattern, err := regexp.Compile("(?i)" + strings.Join(alternatives, "|"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile flair pattern: %w", err)
	}
	c.pattern = pattern

	return c, nil
}

// MustCatalog is NewCatalog for static flair lists; it panics on error.
func MustCatalog(flairs []Flair) *Catalog {
	c, err := NewCatalog(flairs)
	if err != nil {
		panic(err)
	}
	return c
}

// Flairs returns the catalog entries in configured order.
func (c *Catalog) Flairs() []Flair {
	out := make([]Flair, len(c.flairs))
	copy(out, c.flairs)
	return out
}

// Lookup returns the flair registered under name. Names compare under
// Unicode case folding, the same rule Match uses.
func (c *Catalog) Lookup(name string) (Flair, bool) {
	if f, ok := c.byName[strings.ToLower(name)]; ok {
		return f, true
	}
	for _, f := range c.flairs {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Flair{}, false
}

// Match finds the first occurrence of any flair keyword in body.
// The leftmost occurrence wins; keywords inside longer words still match.
func (c *Catalog) Match(body string) (Flair, bool) {
	loc := c.pattern.FindStringSubmatchIndex(body)
	if loc == nil {
		return Flair{}, false
	}
	// group i+1 is flairs[i]
	for i := range c.flairs {
		if loc[2*(i+1)] >= 0 {
			return c.flairs[i], true
		}
	}
	return Flair{}, false
}

// DisplayNames returns the title-cased flair names in configured order.
func (c *Catalog) DisplayNames() []string {
	names := make([]string, len(c.flairs))
	for i, f := range c.flairs {
		names[i] = TitleCase(f.Name)
	}
	return names
}

// TitleCase formats a flair keyword the way it is shown on a submission.
func TitleCase(keyword string) string {
	return cases.Title(language.English).String(keyword)
}
