package domain

// SelectionMode says how many choices an option group admits at once.
type SelectionMode string

const (
	// SelectSingle groups have exactly one active choice (radio-like).
	SelectSingle SelectionMode = "single"
	// SelectMulti groups toggle zero or more choices independently (checkbox-like).
	SelectMulti SelectionMode = "multi"
)

// OptionGroup is one customization axis on a menu item, e.g. "size" or
// "toppings". Choices are ordered for display.
type OptionGroup struct {
	Type    string        `json:"type"`
	Name    string        `json:"name"`
	Mode    SelectionMode `json:"mode"`
	Choices []string      `json:"choices"`
	Default OptionValue   `json:"default"`
}

// MenuItem is immutable once loaded from the catalog.
type MenuItem struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Image       string        `json:"image"`
	Category    string        `json:"category"`
	Options     []OptionGroup `json:"options,omitempty"`
}

// OptionGroupByType returns the group with the given type tag, or false.
func (m MenuItem) OptionGroupByType(groupType string) (OptionGroup, bool) {
	for _, g := range m.Options {
		if g.Type == groupType {
			return g, true
		}
	}
	return OptionGroup{}, false
}
