package domain

import (
	"fmt"
	"strings"
)

// CommodityKey identifies one price series. Both parts are normalized, so two
// keys built from differently cased or padded input compare equal.
type CommodityKey struct {
	Commodity     string // "rice"
	Specification string // "well milled"
}

func NewCommodityKey(commodity, specification string) CommodityKey {
	return CommodityKey{
		Commodity:     normalize(commodity),
		Specification: normalize(specification),
	}
}

func (k CommodityKey) IsZero() bool {
	return k.Commodity == ""
}

func (k CommodityKey) String() string {
	if k.Specification == "" {
		return k.Commodity
	}
	return fmt.Sprintf("%s/%s", k.Commodity, k.Specification)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Category drives the fallback seasonal heuristic and the category-specific
// explanation factors when a series has no usable history.
type Category int

const (
	CategoryOther Category = iota
	CategoryRice
	CategoryCorn
	CategorySeafood
	CategoryProduce
	CategoryMeat
)

var categoryNames = map[Category]string{
	CategoryOther:   "other",
	CategoryRice:    "rice",
	CategoryCorn:    "corn",
	CategorySeafood: "seafood",
	CategoryProduce: "produce",
	CategoryMeat:    "meat",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// categoryMatchers are checked in order; the first hit wins.
var categoryMatchers = []struct {
	category Category
	needles  []string
}{
	{CategoryRice, []string{"rice"}},
	{CategoryCorn, []string{"corn"}},
	{CategorySeafood, []string{"fish", "seafood"}},
	{CategoryProduce, []string{"vegetable", "fruit"}},
	{CategoryMeat, []string{"meat", "pork", "beef"}},
}

// Classify maps a free-text commodity name onto a Category. Matching happens
// once here so the rest of the code can switch exhaustively on the result.
func Classify(commodity string) Category {
	name := normalize(commodity)
	for _, m := range categoryMatchers {
		for _, needle := range m.needles {
			if strings.Contains(name, needle) {
				return m.category
			}
		}
	}
	return CategoryOther
}

func (k CommodityKey) Category() Category {
	return Classify(k.Commodity)
}
