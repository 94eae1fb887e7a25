// Package taxonomy routes raw catalog records into the catalog tree.
//
// Records are grouped by category key. Each group is matched against an
// exact-key rule table first and, failing that, against ordered fallback
// routes on the key; the first match wins. Everything lands in umbrella groups
// that are merged into the Library root at the end, while distribution wikis
// go to the Linux root.
package taxonomy

import (
	"slices"

	"go.uber.org/zap"

	"github.com/takeshy/zimcatalog/internal/catalog"
)

// Record is one raw catalog row.
type Record struct {
	Category string `json:"category" yaml:"category"`
	Size     uint64 `json:"size_bytes" yaml:"size_bytes"`
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
}

// Classifier builds catalog trees from records.
type Classifier struct {
	caps          catalog.Capabilities
	rules         []Rule
	routes        []Route
	umbrellaOrder []string
	companions    []Companion
	logger        *zap.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for routing traces.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRules replaces the exact-key rule table.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) { c.rules = rules }
}

// WithRoutes replaces the fallback routes.
func WithRoutes(routes []Route) Option {
	return func(c *Classifier) { c.routes = routes }
}

// WithUmbrellaOrder sets the order umbrellas are merged into the Library root.
// Umbrellas not listed follow in creation order.
func WithUmbrellaOrder(order []string) Option {
	return func(c *Classifier) { c.umbrellaOrder = order }
}

// WithCompanions replaces the static companion list. An empty list drops the
// companion group.
func WithCompanions(companions []Companion) Option {
	return func(c *Classifier) { c.companions = companions }
}

// New returns a classifier using the default tables. caps is applied to every
// leaf the classifier creates.
func New(caps catalog.Capabilities, opts ...Option) *Classifier {
	c := &Classifier{
		caps:          caps,
		rules:         DefaultRules(),
		routes:        DefaultRoutes(),
		umbrellaOrder: DefaultUmbrellaOrder,
		companions:    DefaultCompanions,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capabilities returns the snapshot the classifier builds leaves with.
func (c *Classifier) Capabilities() catalog.Capabilities {
	return c.caps
}

// Classify builds the catalog roots: Library first, Linux second.
func (c *Classifier) Classify(records []Record) []*catalog.Group {
	b := &build{
		Classifier: c,
		library:    catalog.NewGroup(RootLibrary, nil, false),
		linux:      catalog.NewGroup(RootLinux, nil, false),
		umbrellas:  make(map[string]*catalog.Group),
	}

	for _, cat := range groupByCategory(records) {
		b.place(cat.key, cat.records)
	}
	return b.finish()
}

type category struct {
	key     string
	records []Record
}

// groupByCategory groups records by exact key in first-seen order.
func groupByCategory(records []Record) []category {
	index := make(map[string]int)
	var out []category
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, category{key: r.Category})
		}
		out[i].records = append(out[i].records, r)
	}
	return out
}

type build struct {
	*Classifier
	library   *catalog.Group
	linux     *catalog.Group
	umbrellas map[string]*catalog.Group
	created   []string
}

func (b *build) leaves(records []Record) []catalog.Item {
	items := make([]catalog.Item, 0, len(records))
	for _, r := range records {
		items = append(items, catalog.NewLeaf(b.caps, r.Name, r.URL, r.Size, catalog.TransportForURL(r.URL)))
	}
	return items
}

func (b *build) umbrella(name string) *catalog.Group {
	if name == "" {
		return b.library
	}
	u, ok := b.umbrellas[name]
	if !ok {
		u = catalog.NewGroup(name, nil, false)
		b.umbrellas[name] = u
		b.created = append(b.created, name)
	}
	return u
}

func (b *build) place(key string, records []Record) {
	for _, rule := range b.rules {
		if !rule.Match(key) {
			continue
		}
		name := key
		if rule.Rename != nil {
			name = rule.Rename(key)
		}
		group := catalog.NewGroup(name, b.leaves(records), rule.Exclusive)
		if rule.Family != nil {
			family := rule.Family(key)
			b.linux.Add(catalog.NewGroup(family, []catalog.Item{group}, false))
			b.logger.Debug("routed category",
				zap.String("category", key),
				zap.String("rule", rule.Name),
				zap.String("family", family),
				zap.Int("records", len(records)))
			return
		}
		b.umbrella(rule.Umbrella).Add(group)
		b.logger.Debug("routed category",
			zap.String("category", key),
			zap.String("rule", rule.Name),
			zap.String("umbrella", rule.Umbrella),
			zap.Int("records", len(records)))
		return
	}

	route, matched := b.route(key)
	items := b.leaves(records)

	var item catalog.Item
	switch {
	case len(items) > 1:
		item = catalog.NewGroup(key, items, true)
	case matched && route.WrapSingle:
		item = catalog.NewGroup(key, items, false)
	default:
		item = items[0]
	}

	umbrella := ""
	if matched {
		umbrella = route.Umbrella
	}
	b.umbrella(umbrella).Add(item)
	b.logger.Debug("routed category",
		zap.String("category", key),
		zap.String("route", route.Name),
		zap.String("umbrella", umbrella),
		zap.Int("records", len(records)))
}

// route returns the first fallback route matching key.
func (b *build) route(key string) (Route, bool) {
	for _, r := range b.routes {
		if r.Match(key) {
			return r, true
		}
	}
	return Route{Name: "default"}, false
}

func (b *build) finish() []*catalog.Group {
	order := slices.Clone(b.created)
	slices.SortStableFunc(order, func(x, y string) int {
		return b.rank(x) - b.rank(y)
	})

	for _, name := range order {
		b.library.Add(b.umbrellas[name].Rebuild())
	}
	if len(b.companions) > 0 {
		b.library.Add(CompanionGroup(b.caps, b.companions))
	}

	return []*catalog.Group{b.library.Rebuild(), b.linux.Rebuild()}
}

// rank orders umbrellas by their position in umbrellaOrder; unknown names
// sort last.
func (b *build) rank(name string) int {
	if i := slices.Index(b.umbrellaOrder, name); i >= 0 {
		return i
	}
	return len(b.umbrellaOrder)
}
