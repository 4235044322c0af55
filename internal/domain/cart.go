package domain

import "time"

// CartLine is one distinct (item, configuration) pairing with a quantity.
// Name and unit price are captured at add time, decoupled from later
// catalog price changes.
type CartLine struct {
	ItemID    string    `bson:"item_id" json:"item_id"`
	Name      string    `bson:"name" json:"name"`
	UnitPrice float64   `bson:"unit_price" json:"unit_price"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	Options   Selection `bson:"options" json:"options"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// SameLine reports whether two lines are the same for merge purposes:
// equal item id and structurally equal selection.
func (l CartLine) SameLine(other CartLine) bool {
	return l.ItemID == other.ItemID && l.Options.Equal(other.Options)
}

// Cart is an ordered sequence of lines; insertion order governs display.
// All mutations return a new cart value, the receiver is left untouched.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Lines     []CartLine `bson:"lines" json:"lines"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// AddLine merges into an existing line when SameLine matches (quantities
// sum), otherwise appends at the end.
func (c Cart) AddLine(line CartLine) Cart {
	next := c
	next.Lines = c.cloneLines()

	for i, existing := range next.Lines {
		if existing.SameLine(line) {
			next.Lines[i].Quantity += line.Quantity
			return next
		}
	}

	next.Lines = append(next.Lines, line)
	return next
}

// UpdateQuantity replaces the addressed line's quantity. A quantity of zero
// or below removes the line. Lines are index-addressed because two lines may
// share an item id with different options. Out-of-range indices are no-ops.
func (c Cart) UpdateQuantity(index, quantity int) Cart {
	if index < 0 || index >= len(c.Lines) {
		return c
	}
	if quantity <= 0 {
		return c.RemoveLine(index)
	}

	next := c
	next.Lines = c.cloneLines()
	next.Lines[index].Quantity = quantity
	return next
}

// RemoveLine removes exactly the addressed line; remaining lines keep their
// relative order. Out-of-range indices are no-ops.
func (c Cart) RemoveLine(index int) Cart {
	if index < 0 || index >= len(c.Lines) {
		return c
	}

	next := c
	next.Lines = make([]CartLine, 0, len(c.Lines)-1)
	next.Lines = append(next.Lines, c.Lines[:index]...)
	next.Lines = append(next.Lines, c.Lines[index+1:]...)
	return next
}

// Units is the total item count across lines (the cart badge number).
func (c Cart) Units() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

func (c Cart) cloneLines() []CartLine {
	if c.Lines == nil {
		return nil
	}
	return append([]CartLine(nil), c.Lines...)
}
