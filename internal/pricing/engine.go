// Package pricing computes option prices for print products.
//
// A shop's PricingConfig is compiled against the ProductTemplate it prices
// into a Schedule. Compilation is where configuration errors surface: a rule
// whose shape does not fit the option's pricing type is rejected. A compiled
// Schedule never fails: submitted options without a schema or rule, unmapped
// enum/boolean values and page counts outside every bracket all contribute 0.
package pricing

import (
	"maps"
	"slices"
	"strconv"

	"github.com/phenrril/printmarket/internal/domain"
)

type rule interface {
	price(raw any, doc domain.DocumentMeta) float64
}

type valuesRule struct {
	values  map[string]float64
	boolean bool
}

func (r valuesRule) price(raw any, _ domain.DocumentMeta) float64 {
	key := toString(raw)
	if r.boolean {
		key = strconv.FormatBool(toBool(raw))
	}
	return r.values[key]
}

type unitRule struct{ perUnit float64 }

func (r unitRule) price(raw any, _ domain.DocumentMeta) float64 {
	return r.perUnit * toNumber(raw)
}

type pageRule struct{ perPage float64 }

func (r pageRule) price(_ any, doc domain.DocumentMeta) float64 {
	if doc.Pages <= 0 {
		return 0
	}
	return r.perPage * float64(doc.Pages)
}

type rangeRule struct{ ranges []domain.RangeBracket }

// First bracket in configuration order wins; bounds are inclusive.
func (r rangeRule) price(_ any, doc domain.DocumentMeta) float64 {
	for _, b := range r.ranges {
		if doc.Pages >= b.From && doc.Pages <= b.To {
			return b.Price
		}
	}
	return 0
}

// Schedule is a validated, immutable pricing configuration. It is safe for
// concurrent use.
type Schedule struct {
	types   map[string]domain.PricingType
	rules   map[string]rule
	base    float64
	version int
}

// Line is the contribution of one submitted option to the price.
type Line struct {
	Option      string             `json:"option"`
	PricingType domain.PricingType `json:"pricing_type"`
	Amount      float64            `json:"amount"`
}

// Price returns the additive price of the submitted options.
func (s *Schedule) Price(doc domain.DocumentMeta, options map[string]any) float64 {
	total := 0.0
	for _, l := range s.Breakdown(doc, options) {
		total += l.Amount
	}
	return total
}

// Breakdown returns one line per submitted option that has both a schema and
// a rule, ordered by option key so that summation is deterministic.
func (s *Schedule) Breakdown(doc domain.DocumentMeta, options map[string]any) []Line {
	lines := make([]Line, 0, len(options))
	for _, key := range slices.Sorted(maps.Keys(options)) {
		typ, ok := s.types[key]
		if !ok {
			continue
		}
		r, ok := s.rules[key]
		if !ok {
			continue
		}
		lines = append(lines, Line{Option: key, PricingType: typ, Amount: r.price(options[key], doc)})
	}
	return lines
}

// BasePrice is the shop's flat starting price for the template.
func (s *Schedule) BasePrice() float64 { return s.base }

func (s *Schedule) Version() int { return s.version }

// Calculate compiles the input's configuration and prices its options.
func Calculate(in domain.CalculateInput) (float64, error) {
	s, err := Compile(in.Template, in.Pricing)
	if err != nil {
		return 0, err
	}
	return s.Price(in.Document, in.Options), nil
}

// Listing composes a shop's listing price: (base + options) * quantity.
func Listing(base, optionsPrice float64, quantity int) float64 {
	return (base + optionsPrice) * float64(quantity)
}
