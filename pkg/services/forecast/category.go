package forecast

import (
	"math"
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
)

// CategorySeasonalAdjustment is the hand-tuned seasonal heuristic used when a
// commodity has no seasonal history. Commodities outside the known
// categories get a small sinusoid over the month index.
func CategorySeasonalAdjustment(c domain.Category, m time.Month) float64 {
	switch c {
	case domain.CategoryRice:
		// main harvest vs lean months
		switch {
		case inMonths(m, time.March, time.May):
			return -0.04
		case inMonths(m, time.July, time.September):
			return 0.05
		}
	case domain.CategoryCorn:
		switch {
		case inMonths(m, time.April, time.June):
			return 0.03
		case inMonths(m, time.August, time.October):
			return -0.03
		}
	case domain.CategorySeafood:
		// typhoon season keeps boats in port
		switch {
		case inMonths(m, time.June, time.September):
			return 0.08
		case inMonths(m, time.March, time.May):
			return -0.03
		}
	case domain.CategoryProduce:
		switch {
		case inMonths(m, time.July, time.October):
			return 0.10
		case inMonths(m, time.January, time.March):
			return -0.05
		}
	case domain.CategoryMeat:
		if inMonths(m, time.November, time.December) {
			return 0.07
		}
	case domain.CategoryOther:
		return 0.02 * math.Sin(2*math.Pi*float64(m-1)/12)
	}
	return 0
}

// CategoryFactors are the category-specific explanation factors.
func CategoryFactors(c domain.Category) []string {
	switch c {
	case domain.CategoryRice:
		return []string{"Government rice import and price policy", "Harvest season supply"}
	case domain.CategorySeafood:
		return []string{"Weather conditions affect fishing activity", "Fuel costs for fishing operations"}
	case domain.CategoryProduce:
		return []string{"Harvest cycle and crop yields", "Typhoon and weather damage risk"}
	case domain.CategoryCorn, domain.CategoryMeat, domain.CategoryOther:
		return nil
	}
	return nil
}

func inMonths(m, from, to time.Month) bool {
	return m >= from && m <= to
}
