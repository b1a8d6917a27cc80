package inventory

import (
	"fmt"
	"sort"
)

// Inventory tracks item counts per warehouse.
type Inventory struct {
	Name   string
	counts map[string]uint64
}

// New creates an empty inventory.
func New(name string) *Inventory {
	return &Inventory{Name: name, counts: map[string]uint64{}}
}

// Add records new stock.
func (inv *Inventory) Add(item string, amount uint64) {
	inv.counts[item] += amount
}

func (inv *Inventory) total() uint64 {
	var sum uint64
	for _, amount := range inv.counts {
		sum += amount
	}
	return sum
}

// Summary renders items in sorted order.
func (inv *Inventory) Summary() string {
	items := make([]string, 0, len(inv.counts))
	for item := range inv.counts {
		items = append(items, item)
	}
	sort.Strings(items)

	out := ""
	for _, item := range items {
		out += fmt.Sprintf("%s=%d\n", item, inv.counts[item])
	}
	return out
}
