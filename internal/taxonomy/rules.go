package taxonomy

import (
	"github.com/takeshy/zimcatalog/internal/catalog"
)

// Root and umbrella group names.
const (
	RootLibrary = "Library"
	RootLinux   = "Linux"

	UmbrellaWikimedia     = "Wikimedia"
	UmbrellaStackExchange = "Stack Exchange"
	UmbrellaDevDocs       = "DevDocs"
	UmbrellaIFixit        = "iFixit"
	UmbrellaTED           = "TED"
	UmbrellaMedia         = "Media"
)

// wikiSuffix is appended to distribution wiki category names.
const wikiSuffix = " (wiki)"

// Rule routes a whole category when Match accepts its key. The records are
// wrapped in a group named by Rename (or the key) and either nested under a
// distribution family in the Linux root, when Family is set, or added to the
// Umbrella group.
type Rule struct {
	Name      string
	Match     func(key string) bool
	Rename    func(key string) string
	Exclusive bool
	Umbrella  string
	Family    func(key string) string
}

// Route picks the umbrella for a category no Rule matched. A singleton record
// is added as a bare leaf unless WrapSingle is set, in which case it is first
// wrapped in a group named after the key.
type Route struct {
	Name       string
	Match      func(key string) bool
	Umbrella   string
	WrapSingle bool
}

var encyclopediaKeys = []string{
	"wikipedia",
	"wikibooks",
	"wikinews",
	"wikiquote",
	"wikisource",
	"wikiversity",
	"wikivoyage",
	"wiktionary",
}

var mediaKeys = []string{
	"gutenberg",
	"phet",
	"vikidia",
	"wikihow",
	"libretexts",
}

// distributionFamilies maps distribution wiki keys to their family group.
var distributionFamilies = map[string]string{
	"archlinux":     "Arch",
	"gentoo":        "Gentoo",
	"installgentoo": "Gentoo",
	"alpinelinux":   "Alpine",
}

var qaSuffixes = []string{
	".stackexchange.com",
	"stackoverflow.com",
	"superuser.com",
	"serverfault.com",
	"askubuntu.com",
	"mathoverflow.net",
	"stackapps.com",
}

var vendorPrefixes = []struct {
	prefix   string
	umbrella string
}{
	{"devdocs", UmbrellaDevDocs},
	{"ifixit", UmbrellaIFixit},
}

var tedKeys = []string{"ted", "tedx"}

// DefaultUmbrellaOrder is the order umbrellas are merged into the Library root.
var DefaultUmbrellaOrder = []string{
	UmbrellaWikimedia,
	UmbrellaStackExchange,
	UmbrellaDevDocs,
	UmbrellaIFixit,
	UmbrellaTED,
	UmbrellaMedia,
}

// DefaultRules returns the exact-key table consulted before any Route.
func DefaultRules() []Rule {
	distroKeys := make([]string, 0, len(distributionFamilies))
	for key := range distributionFamilies {
		distroKeys = append(distroKeys, key)
	}

	return []Rule{
		{
			Name:      "encyclopedia",
			Match:     keyIn(encyclopediaKeys...),
			Exclusive: true,
			Umbrella:  UmbrellaWikimedia,
		},
		{
			Name:     "media",
			Match:    keyIn(mediaKeys...),
			Umbrella: UmbrellaMedia,
		},
		{
			Name:      "distribution",
			Match:     keyIn(distroKeys...),
			Rename:    func(key string) string { return key + wikiSuffix },
			Exclusive: true,
			Family:    func(key string) string { return distributionFamilies[key] },
		},
	}
}

// DefaultRoutes returns the fallback predicates in precedence order.
func DefaultRoutes() []Route {
	routes := []Route{{
		Name:     "q&a",
		Match:    hasAnySuffix(qaSuffixes...),
		Umbrella: UmbrellaStackExchange,
	}}
	for _, v := range vendorPrefixes {
		routes = append(routes, Route{
			Name:     "vendor:" + v.prefix,
			Match:    hasPrefix(v.prefix),
			Umbrella: v.umbrella,
		})
	}
	return append(routes, Route{
		Name:       "ted",
		Match:      equalsAny(tedKeys...),
		Umbrella:   UmbrellaTED,
		WrapSingle: true,
	})
}

// keyIn matches keys exactly, case-sensitively.
func keyIn(keys ...string) func(string) bool {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return func(key string) bool {
		_, ok := set[key]
		return ok
	}
}

func hasAnySuffix(suffixes ...string) func(string) bool {
	return func(key string) bool {
		for _, s := range suffixes {
			if catalog.HasSuffixFoldASCII(key, s) {
				return true
			}
		}
		return false
	}
}

func hasPrefix(prefix string) func(string) bool {
	return func(key string) bool {
		return catalog.HasPrefixFoldASCII(key, prefix)
	}
}

func equalsAny(values ...string) func(string) bool {
	return func(key string) bool {
		for _, v := range values {
			if catalog.EqualFoldASCII(key, v) {
				return true
			}
		}
		return false
	}
}
