package order

import "sort"

// MenuItem is the part of a catalog item a cart prices against.
type MenuItem struct {
	ID    string
	Name  string
	Price float64
}

// MaxQuantity bounds the quantity of a single cart entry.
const MaxQuantity = 1000

// Entry is one line of a cart.
type Entry struct {
	Item     MenuItem
	Quantity int
}

// Cart maps item ids to positive quantities and keeps the derived totals.
// Items missing from the loaded menu count towards neither total.
// A Cart is not safe for concurrent use.
type Cart struct {
	items      map[string]MenuItem
	quantities map[string]int
	totalItems int
	totalPrice float64
}

func NewCart(items []MenuItem) *Cart {
	c := &Cart{quantities: map[string]int{}}
	c.SetItems(items)
	return c
}

// SetItems replaces the menu the cart prices against and recomputes totals.
func (c *Cart) SetItems(items []MenuItem) {
	c.items = make(map[string]MenuItem, len(items))
	for _, it := range items {
		c.items[it.ID] = it
	}
	c.recompute()
}

// Adjust adds delta to the quantity of itemID. A result below zero or above
// MaxQuantity is rejected and leaves the cart unchanged; a result of zero
// removes the entry.
func (c *Cart) Adjust(itemID string, delta int) bool {
	cur := c.quantities[itemID]
	if delta < -cur || delta > MaxQuantity-cur {
		return false
	}
	qty := cur + delta
	if qty == 0 {
		delete(c.quantities, itemID)
	} else {
		c.quantities[itemID] = qty
	}
	c.recompute()
	return true
}

func (c *Cart) recompute() {
	c.totalItems, c.totalPrice = 0, 0
	for id, qty := range c.quantities {
		it, ok := c.items[id]
		if !ok {
			continue
		}
		c.totalItems += qty
		c.totalPrice += it.Price * float64(qty)
	}
}

func (c *Cart) Quantity(itemID string) int { return c.quantities[itemID] }

func (c *Cart) Len() int { return len(c.quantities) }

func (c *Cart) TotalItems() int { return c.totalItems }

func (c *Cart) TotalPrice() float64 { return c.totalPrice }

// Entries returns the priced lines of the cart ordered by item id.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, 0, len(c.quantities))
	for id, qty := range c.quantities {
		it, ok := c.items[id]
		if !ok {
			continue
		}
		out = append(out, Entry{Item: it, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.ID < out[j].Item.ID })
	return out
}
