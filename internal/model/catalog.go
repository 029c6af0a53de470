package model

import "sort"

// CatalogEntry is one flat price catalog row: a single (item, band, currency)
// combination carrying both price-year values. A nil BandCeiling means a flat
// price applicable to any quantity. When IsCustom is true the item is priced
// by contract and carries no band or year prices.
type CatalogEntry struct {
	BandCeiling  *float64
	PricePrior   *float64
	PriceCurrent *float64
	ItemID       string
	Currency     string
	SourceTab    string
	IsCustom     bool
}

// Catalog is the merged set of priced and custom entries across all tabs.
// It is built once per run and read-only afterwards.
type Catalog struct {
	priced map[string]map[string][]CatalogEntry // item -> currency -> entries
	custom map[string]string                    // custom item -> source tab
	counts CatalogCounts
}

// CatalogCounts summarizes what a catalog build produced.
type CatalogCounts struct {
	PricedEntries int
	CustomEntries int
}

// NewCatalog returns an empty catalog ready for accumulation.
func NewCatalog() *Catalog {
	return &Catalog{
		priced: make(map[string]map[string][]CatalogEntry),
		custom: make(map[string]string),
	}
}

// Add appends an entry, routing custom entries into the custom item set.
func (c *Catalog) Add(entry CatalogEntry) {
	if entry.IsCustom {
		if _, ok := c.custom[entry.ItemID]; !ok {
			c.custom[entry.ItemID] = entry.SourceTab
		}
		c.counts.CustomEntries++
		return
	}
	byCurrency, ok := c.priced[entry.ItemID]
	if !ok {
		byCurrency = make(map[string][]CatalogEntry)
		c.priced[entry.ItemID] = byCurrency
	}
	byCurrency[entry.Currency] = append(byCurrency[entry.Currency], entry)
	c.counts.PricedEntries++
}

// IsCustom reports whether the item belongs to the custom-priced set.
// Custom status wins over any numeric entries for the same item.
func (c *Catalog) IsCustom(itemID string) bool {
	_, ok := c.custom[itemID]
	return ok
}

// CustomSourceTab returns the tab that declared the item custom-priced.
func (c *Catalog) CustomSourceTab(itemID string) string {
	return c.custom[itemID]
}

// HasItem reports whether the item appears anywhere in the catalog,
// priced or custom.
func (c *Catalog) HasItem(itemID string) bool {
	if _, ok := c.custom[itemID]; ok {
		return true
	}
	_, ok := c.priced[itemID]
	return ok
}

// Entries returns the priced entries for an (item, currency) pair.
func (c *Catalog) Entries(itemID, currency string) []CatalogEntry {
	return c.priced[itemID][currency]
}

// Currencies lists the currencies an item is priced in, sorted.
func (c *Catalog) Currencies(itemID string) []string {
	byCurrency := c.priced[itemID]
	out := make([]string, 0, len(byCurrency))
	for code := range byCurrency {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// AnySourceTab returns a source tab for the item regardless of currency,
// used when reporting a currency coverage gap.
func (c *Catalog) AnySourceTab(itemID string) string {
	for _, code := range c.Currencies(itemID) {
		entries := c.priced[itemID][code]
		if len(entries) > 0 {
			return entries[0].SourceTab
		}
	}
	return ""
}

// Counts returns build statistics.
func (c *Catalog) Counts() CatalogCounts {
	return c.counts
}

// ItemCount returns the number of distinct items, priced or custom.
func (c *Catalog) ItemCount() int {
	n := len(c.priced)
	for item := range c.custom {
		if _, ok := c.priced[item]; !ok {
			n++
		}
	}
	return n
}

// Items returns the priced item IDs, sorted.
func (c *Catalog) Items() []string {
	out := make([]string, 0, len(c.priced))
	for item := range c.priced {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// CustomItems returns the custom-priced item IDs, sorted.
func (c *Catalog) CustomItems() []string {
	out := make([]string, 0, len(c.custom))
	for item := range c.custom {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
