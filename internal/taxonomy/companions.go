package taxonomy

import (
	"github.com/takeshy/zimcatalog/internal/catalog"
)

// CompanionGroupName names the static group of reader applications.
const CompanionGroupName = "Kiwix Apps"

// Companion is a curated downloadable tool listed next to the content.
type Companion struct {
	Name string
	URL  string
	Size uint64
}

// DefaultCompanions lists the reader applications offered with every catalog.
// Sizes are approximate release sizes.
var DefaultCompanions = []Companion{
	{
		Name: "Kiwix Desktop (Linux AppImage)",
		URL:  "https://download.kiwix.org/release/kiwix-desktop/kiwix-desktop_x86_64.appimage",
		Size: 157 << 20,
	},
	{
		Name: "Kiwix Desktop (Windows)",
		URL:  "https://download.kiwix.org/release/kiwix-desktop/kiwix-desktop_windows_x64.zip",
		Size: 121 << 20,
	},
	{
		Name: "kiwix-tools (Linux x86_64)",
		URL:  "https://download.kiwix.org/release/kiwix-tools/kiwix-tools_linux-x86_64.tar.gz",
		Size: 22 << 20,
	},
	{
		Name: "Kiwix (Android)",
		URL:  "https://download.kiwix.org/release/kiwix-android/kiwix.apk",
		Size: 64 << 20,
	},
}

// CompanionGroup builds the non-exclusive companion group.
func CompanionGroup(caps catalog.Capabilities, companions []Companion) *catalog.Group {
	items := make([]catalog.Item, 0, len(companions))
	for _, c := range companions {
		items = append(items, catalog.NewLeaf(caps, c.Name, c.URL, c.Size, catalog.TransportForURL(c.URL)))
	}
	return catalog.NewGroup(CompanionGroupName, items, false)
}
