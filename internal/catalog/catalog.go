package catalog

import (
	"fmt"
	"sort"
	"strings"

	"bakerybot/internal/model"
)

// Policy says what a multi-item alias means.
type Policy string

const (
	// PolicyExpand updates every item in the group.
	PolicyExpand Policy = "expand"
	// PolicyAsk raises a clarification instead of updating.
	PolicyAsk Policy = "ask"
)

// Alias maps a loose phrase to one or more canonical item names.
// Single-item aliases ignore Policy.
type Alias struct {
	Phrase string
	Items  []string
	Policy Policy
}

// Match is the kind of result Resolve produced.
type Match int

const (
	MatchNone Match = iota
	MatchExact
	MatchAlias
	MatchGroup
	MatchAmbiguous
)

func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchAlias:
		return "alias"
	case MatchGroup:
		return "group"
	case MatchAmbiguous:
		return "ambiguous"
	}
	return "none"
}

// Resolution is the outcome of resolving a raw phrase.
type Resolution struct {
	Phrase string
	Match  Match
	Items  []string
}

// Resolved reports whether the phrase names items that may be updated
// without asking the requester.
func (r Resolution) Resolved() bool {
	switch r.Match {
	case MatchExact, MatchAlias, MatchGroup:
		return true
	}
	return false
}

// Catalog is the static universe of tracked items and their aliases.
type Catalog struct {
	categories []model.Category
	items      map[string]string
	category   map[string]string
	aliases    map[string]Alias
	order      []string
}

// New validates the categories and aliases and builds a Catalog.
func New(categories []model.Category, aliases []Alias) (*Catalog, error) {
	c := &Catalog{
		items:    make(map[string]string),
		category: make(map[string]string),
		aliases:  make(map[string]Alias),
	}
	for _, cat := range categories {
		items := make([]string, len(cat.Items))
		copy(items, cat.Items)
		for _, item := range items {
			key := normalize(item)
			if prev, dup := c.items[key]; dup {
				return nil, fmt.Errorf("catalog: item %q listed twice (also %q)", item, prev)
			}
			c.items[key] = item
			c.category[item] = cat.Name
			c.order = append(c.order, item)
		}
		c.categories = append(c.categories, model.Category{Name: cat.Name, Items: items})
	}
	for _, a := range aliases {
		if len(a.Items) == 0 {
			return nil, fmt.Errorf("catalog: alias %q has no items", a.Phrase)
		}
		for _, item := range a.Items {
			if _, ok := c.category[item]; !ok {
				return nil, fmt.Errorf("catalog: alias %q targets unknown item %q", a.Phrase, item)
			}
		}
		if len(a.Items) > 1 && a.Policy != PolicyExpand && a.Policy != PolicyAsk {
			return nil, fmt.Errorf("catalog: alias %q needs an expand or ask policy", a.Phrase)
		}
		c.aliases[normalize(a.Phrase)] = a
	}
	return c, nil
}

// MustNew is New for static tables.
func MustNew(categories []model.Category, aliases []Alias) *Catalog {
	c, err := New(categories, aliases)
	if err != nil {
		panic(err)
	}
	return c
}

// Categories returns the categories in display order.
func (c *Catalog) Categories() model.Categories {
	out := make(model.Categories, len(c.categories))
	for i, cat := range c.categories {
		items := make([]string, len(cat.Items))
		copy(items, cat.Items)
		out[i] = model.Category{Name: cat.Name, Items: items}
	}
	return out
}

// Items returns every canonical item in display order.
func (c *Catalog) Items() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// CategoryOf returns the category holding item.
func (c *Catalog) CategoryOf(item string) (string, bool) {
	name, ok := c.category[item]
	return name, ok
}

// Canonical returns the canonical spelling of an exact item name.
func (c *Catalog) Canonical(name string) (string, bool) {
	item, ok := c.items[normalize(name)]
	return item, ok
}

// Aliases returns the alias table sorted by phrase.
func (c *Catalog) Aliases() []Alias {
	out := make([]Alias, 0, len(c.aliases))
	for _, a := range c.aliases {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phrase < out[j].Phrase })
	return out
}

// Resolve maps a raw phrase to canonical items. Exact names win over
// aliases; a trailing "s" is tolerated in both directions.
func (c *Catalog) Resolve(phrase string) Resolution {
	res := Resolution{Phrase: phrase}
	for _, key := range variants(normalize(phrase)) {
		if item, ok := c.items[key]; ok {
			res.Match = MatchExact
			res.Items = []string{item}
			return res
		}
	}
	for _, key := range variants(normalize(phrase)) {
		a, ok := c.aliases[key]
		if !ok {
			continue
		}
		res.Items = make([]string, len(a.Items))
		copy(res.Items, a.Items)
		switch {
		case len(a.Items) == 1:
			res.Match = MatchAlias
		case a.Policy == PolicyExpand:
			res.Match = MatchGroup
		default:
			res.Match = MatchAmbiguous
		}
		return res
	}
	return res
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func variants(key string) []string {
	if key == "" {
		return nil
	}
	out := []string{key}
	if strings.HasSuffix(key, "s") {
		out = append(out, strings.TrimSuffix(key, "s"))
	} else {
		out = append(out, key+"s")
	}
	return out
}
