// Package shop holds the purchasable catalog and the random box table.
package shop

import (
	"fmt"
	"strings"

	"telegram-economy-bot/internal/config"
	"telegram-economy-bot/internal/game/outcome"
)

// ItemBox marks items that draw from the random reward table.
const ItemBox = "box"

// NoReward is drawn when the box roll lands past every reward bucket.
const NoReward = "nothing"

// Item is one purchasable item.
type Item struct {
	ID    string
	Name  string
	Price int64
	// Type is the reward granted on purchase, or ItemBox.
	Type string
}

// IsBox reports whether the item draws a random reward.
func (i Item) IsBox() bool {
	return i.Type == ItemBox
}

// Catalog is the configured item list and box table. Both keep config order;
// the box draw depends on it.
type Catalog struct {
	items   []Item
	rewards []outcome.Bucket
}

// NewCatalog builds a catalog from configuration.
func NewCatalog(items []config.ShopItemConfig, rewards []config.RandomRewardConfig) *Catalog {
	c := &Catalog{
		items:   make([]Item, 0, len(items)),
		rewards: make([]outcome.Bucket, 0, len(rewards)),
	}
	for _, it := range items {
		c.items = append(c.items, Item{ID: it.ID, Name: it.Name, Price: it.Price, Type: it.Type})
	}
	for _, r := range rewards {
		c.rewards = append(c.rewards, outcome.Bucket{Label: r.Type, Weight: r.Chance})
	}
	return c
}

// Items returns the items in display order.
func (c *Catalog) Items() []Item {
	return c.items
}

// Get looks an item up by ID.
func (c *Catalog) Get(id string) (Item, bool) {
	for _, it := range c.items {
		if strings.EqualFold(it.ID, id) {
			return it, true
		}
	}
	return Item{}, false
}

// RewardBuckets returns the box table.
func (c *Catalog) RewardBuckets() []outcome.Bucket {
	return c.rewards
}

// FormatCatalog renders the /shop listing.
func FormatCatalog(items []Item) string {
	var b strings.Builder
	b.WriteString("🎁 SHOP\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "• %s – %s – %d coin\n", it.ID, it.Name, it.Price)
	}
	b.WriteString("\nMua bằng /buy <id> hoặc bấm nút bên dưới.")
	return b.String()
}
