package tax

// DisplayType determines whether prices are shown including or excluding tax.
// The numeric value doubles as the priority when several customer roles
// declare an override: the highest value wins.
type DisplayType int

const (
	DisplayIncludingTax DisplayType = 0
	DisplayExcludingTax DisplayType = 10
)

// String returns a human-readable name for the display type
func (t DisplayType) String() string {
	switch t {
	case DisplayIncludingTax:
		return "including tax"
	case DisplayExcludingTax:
		return "excluding tax"
	default:
		return "unknown"
	}
}

// Valid reports whether the value is a known display type
func (t DisplayType) Valid() bool {
	return t == DisplayIncludingTax || t == DisplayExcludingTax
}
