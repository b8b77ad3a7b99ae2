package pricing

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/phenrril/printmarket/internal/domain"
)

var (
	ErrMissingTemplate    = errors.New("template is required")
	ErrMissingConfig      = errors.New("pricing config is required")
	ErrUnknownPricingType = errors.New("unknown pricing type")
	ErrInvalidSchema      = errors.New("invalid option schema")
	ErrRuleMismatch       = errors.New("pricing rule does not match option pricing type")
	ErrInvalidRange       = errors.New("invalid range bracket")
)

type ruleShape int

const (
	shapeNone ruleShape = iota
	shapeValues
	shapeUnit
	shapePage
	shapeRanges
)

var expectedShape = map[domain.PricingType]ruleShape{
	domain.PricingEnum:    shapeValues,
	domain.PricingBoolean: shapeValues,
	domain.PricingNumber:  shapeUnit,
	domain.PricingPerPage: shapePage,
	domain.PricingRange:   shapeRanges,
}

// ValidateTemplate checks every option schema of a template. The values
// listed for an enum are a presentation hint and are not checked here: an
// enum without them still prices through its rule's lookup table.
func ValidateTemplate(tpl *domain.ProductTemplate) error {
	if tpl == nil {
		return ErrMissingTemplate
	}
	for _, key := range slices.Sorted(maps.Keys(tpl.AllowedOptions)) {
		if err := validateSchema(tpl.AllowedOptions[key]); err != nil {
			return fmt.Errorf("option %q: %w", key, err)
		}
	}
	return nil
}

func validateSchema(s domain.OptionSchema) error {
	if !s.PricingType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPricingType, s.PricingType)
	}
	if s.PricingType == domain.PricingNumber && s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		return fmt.Errorf("%w: min %v greater than max %v", ErrInvalidSchema, *s.Min, *s.Max)
	}
	return nil
}

// Compile validates cfg against tpl and returns the resulting Schedule.
// Rules for keys the template does not declare are dropped.
func Compile(tpl *domain.ProductTemplate, cfg *domain.PricingConfig) (*Schedule, error) {
	if tpl == nil {
		return nil, ErrMissingTemplate
	}
	if cfg == nil {
		return nil, ErrMissingConfig
	}
	if err := ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	s := &Schedule{
		types:   make(map[string]domain.PricingType, len(tpl.AllowedOptions)),
		rules:   make(map[string]rule, len(cfg.Rules)),
		base:    cfg.BasePrice,
		version: cfg.Version,
	}
	for key, schema := range tpl.AllowedOptions {
		s.types[key] = schema.PricingType
	}
	for _, key := range slices.Sorted(maps.Keys(cfg.Rules)) {
		typ, ok := s.types[key]
		if !ok {
			continue
		}
		r, err := compileRule(typ, cfg.Rules[key])
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", key, err)
		}
		s.rules[key] = r
	}
	return s, nil
}

func compileRule(typ domain.PricingType, pr domain.PricingRule) (rule, error) {
	shape, err := shapeOf(pr)
	if err != nil {
		return nil, err
	}
	if shape != expectedShape[typ] {
		// An empty rule reads as a lookup table or bracket list that never
		// matches; multipliers have no such reading.
		if shape != shapeNone || typ == domain.PricingNumber || typ == domain.PricingPerPage {
			return nil, fmt.Errorf("%w: %s", ErrRuleMismatch, typ)
		}
	}

	switch typ {
	case domain.PricingEnum, domain.PricingBoolean:
		return valuesRule{values: maps.Clone(pr.Values), boolean: typ == domain.PricingBoolean}, nil
	case domain.PricingNumber:
		return unitRule{perUnit: *pr.PricePerUnit}, nil
	case domain.PricingPerPage:
		return pageRule{perPage: *pr.PricePerPage}, nil
	case domain.PricingRange:
		for i, b := range pr.Ranges {
			if b.From < 0 || b.To < b.From {
				return nil, fmt.Errorf("%w: #%d [%d, %d]", ErrInvalidRange, i, b.From, b.To)
			}
		}
		return rangeRule{ranges: slices.Clone(pr.Ranges)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPricingType, typ)
}

func shapeOf(pr domain.PricingRule) (ruleShape, error) {
	shape := shapeNone
	set := 0
	if len(pr.Values) > 0 {
		shape = shapeValues
		set++
	}
	if pr.PricePerUnit != nil {
		shape = shapeUnit
		set++
	}
	if pr.PricePerPage != nil {
		shape = shapePage
		set++
	}
	if len(pr.Ranges) > 0 {
		shape = shapeRanges
		set++
	}
	if set > 1 {
		return shapeNone, fmt.Errorf("%w: rule sets %d shapes", ErrRuleMismatch, set)
	}
	return shape, nil
}
