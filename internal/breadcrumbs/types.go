package breadcrumbs

import "github.com/goliatone/go-publish/resources"

// ItemType names what a breadcrumb item points at.
type ItemType string

const (
	ItemPage      ItemType = ItemType(resources.TypePage)
	ItemDatabase  ItemType = ItemType(resources.TypeDatabase)
	ItemFile      ItemType = ItemType(resources.TypeFile)
	ItemWorkspace ItemType = ItemType(resources.TypeWorkspace)
	ItemCategory  ItemType = "category"
)

// Trait flags presentation hints on an item.
type Trait uint8

const (
	TraitCurrent Trait = 1 << iota
	TraitRoot
	TraitCategory
	TraitEmojiIcon
	TraitImageIcon
)

// Has reports whether every bit of flag is set.
func (t Trait) Has(flag Trait) bool {
	return flag != 0 && t&flag == flag
}

// Item is one step of a breadcrumb trail. Data carries the icon value for
// items with an icon trait.
type Item struct {
	Type   ItemType `json:"type"`
	Traits Trait    `json:"traits"`
	Text   string   `json:"text"`
	Data   string   `json:"data,omitempty"`
	URL    string   `json:"url"`
}

// Breadcrumb is a trail ordered root first, current page last.
type Breadcrumb struct {
	Trail []Item `json:"trail"`
}

// Empty reports whether the trail has no items.
func (b Breadcrumb) Empty() bool {
	return len(b.Trail) == 0
}
