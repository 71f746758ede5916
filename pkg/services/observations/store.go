package observations

import (
	"sort"
	"strings"

	"github.com/de-tools/price-atlas/pkg/models/domain"
)

// Store is an immutable snapshot of validated observations grouped by
// commodity key. Build a new Store when the underlying records change.
type Store struct {
	series map[domain.CommodityKey]*entry
	keys   []domain.CommodityKey
}

type entry struct {
	commodity     string
	specification string
	points        []domain.PricePoint
}

// Ingest validates records and groups the survivors by key. Invalid records
// (non-positive price, unparsable date, empty commodity) are dropped without
// affecting the rest of the batch.
func Ingest(records []domain.RawRecord) (*Store, domain.IngestReport) {
	s := &Store{series: make(map[domain.CommodityKey]*entry)}
	var report domain.IngestReport

	for _, r := range records {
		point, ok := toPoint(r)
		if !ok {
			report.Dropped++
			continue
		}

		key := domain.NewCommodityKey(r.Commodity, r.Specification)
		e, found := s.series[key]
		if !found {
			e = &entry{
				commodity:     strings.TrimSpace(r.Commodity),
				specification: strings.TrimSpace(r.Specification),
			}
			s.series[key] = e
			s.keys = append(s.keys, key)
		}
		e.points = append(e.points, point)
		report.Accepted++
	}

	for _, e := range s.series {
		sort.SliceStable(e.points, func(i, j int) bool {
			return e.points[i].Date.Before(e.points[j].Date)
		})
	}
	sort.Slice(s.keys, func(i, j int) bool {
		return s.keys[i].String() < s.keys[j].String()
	})

	return s, report
}

func toPoint(r domain.RawRecord) (domain.PricePoint, bool) {
	if strings.TrimSpace(r.Commodity) == "" || !domain.ValidPrice(r.Price) {
		return domain.PricePoint{}, false
	}
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return domain.PricePoint{}, false
	}
	return domain.PricePoint{
		Date:   date,
		Price:  r.Price,
		Region: strings.TrimSpace(r.Region),
	}, true
}

// Keys returns every key with at least one valid point, sorted.
func (s *Store) Keys() []domain.CommodityKey {
	keys := make([]domain.CommodityKey, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Points returns a chronologically ordered copy of the points for key.
func (s *Store) Points(key domain.CommodityKey) []domain.PricePoint {
	e, ok := s.series[key]
	if !ok {
		return nil
	}
	points := make([]domain.PricePoint, len(e.points))
	copy(points, e.points)
	return points
}

// DisplayNames returns the first-seen original spelling of the key.
func (s *Store) DisplayNames(key domain.CommodityKey) (commodity, specification string, ok bool) {
	e, found := s.series[key]
	if !found {
		return "", "", false
	}
	return e.commodity, e.specification, true
}

// Latest returns the most recent point for key.
func (s *Store) Latest(key domain.CommodityKey) (domain.PricePoint, bool) {
	e, ok := s.series[key]
	if !ok || len(e.points) == 0 {
		return domain.PricePoint{}, false
	}
	return e.points[len(e.points)-1], true
}

func (s *Store) Len() int {
	return len(s.keys)
}
