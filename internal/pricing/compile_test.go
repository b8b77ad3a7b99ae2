package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/printmarket/internal/domain"
	"github.com/phenrril/printmarket/internal/pricing"
)

func TestCompile_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		schema  domain.OptionSchema
		rule    domain.PricingRule
		wantErr error
	}{
		{
			name:    "values rule on number option",
			schema:  domain.OptionSchema{PricingType: domain.PricingNumber},
			rule:    domain.PricingRule{Values: map[string]float64{"1": 10}},
			wantErr: pricing.ErrRuleMismatch,
		},
		{
			name:    "values rule on range option",
			schema:  domain.OptionSchema{PricingType: domain.PricingRange},
			rule:    domain.PricingRule{Values: map[string]float64{"true": 10}},
			wantErr: pricing.ErrRuleMismatch,
		},
		{
			name:    "per unit rule on enum option",
			schema:  domain.OptionSchema{PricingType: domain.PricingEnum, Values: []string{"a4"}},
			rule:    domain.PricingRule{PricePerUnit: ptr(3)},
			wantErr: pricing.ErrRuleMismatch,
		},
		{
			name:    "per page rule on boolean option",
			schema:  domain.OptionSchema{PricingType: domain.PricingBoolean},
			rule:    domain.PricingRule{PricePerPage: ptr(3)},
			wantErr: pricing.ErrRuleMismatch,
		},
		{
			name:    "two shapes at once",
			schema:  domain.OptionSchema{PricingType: domain.PricingPerPage},
			rule:    domain.PricingRule{PricePerPage: ptr(3), PricePerUnit: ptr(1)},
			wantErr: pricing.ErrRuleMismatch,
		},
		{
			name:    "empty rule on per page option",
			schema:  domain.OptionSchema{PricingType: domain.PricingPerPage},
			rule:    domain.PricingRule{},
			wantErr: pricing.ErrRuleMismatch,
		},
		{
			name:    "empty rule on number option",
			schema:  domain.OptionSchema{PricingType: domain.PricingNumber},
			rule:    domain.PricingRule{},
			wantErr: pricing.ErrRuleMismatch,
		},
		{
			name:    "inverted bracket",
			schema:  domain.OptionSchema{PricingType: domain.PricingRange},
			rule:    domain.PricingRule{Ranges: []domain.RangeBracket{{From: 10, To: 1, Price: 5}}},
			wantErr: pricing.ErrInvalidRange,
		},
		{
			name:    "negative bracket",
			schema:  domain.OptionSchema{PricingType: domain.PricingRange},
			rule:    domain.PricingRule{Ranges: []domain.RangeBracket{{From: -1, To: 1, Price: 5}}},
			wantErr: pricing.ErrInvalidRange,
		},
		{
			name:    "unknown pricing type",
			schema:  domain.OptionSchema{PricingType: "per_sheet"},
			rule:    domain.PricingRule{PricePerPage: ptr(1)},
			wantErr: pricing.ErrUnknownPricingType,
		},
		{
			name:    "number min above max",
			schema:  domain.OptionSchema{PricingType: domain.PricingNumber, Min: ptr(10), Max: ptr(1)},
			rule:    domain.PricingRule{PricePerUnit: ptr(1)},
			wantErr: pricing.ErrInvalidSchema,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := &domain.ProductTemplate{AllowedOptions: map[string]domain.OptionSchema{"opt": tc.schema}}
			cfg := &domain.PricingConfig{Rules: map[string]domain.PricingRule{"opt": tc.rule}}

			s, err := pricing.Compile(tpl, cfg)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), `option "opt"`)
			assert.Nil(t, s)
		})
	}
}

func TestCompile_Accepts(t *testing.T) {
	testCases := []struct {
		name   string
		schema domain.OptionSchema
		rule   domain.PricingRule
	}{
		{name: "empty values on enum", schema: domain.OptionSchema{PricingType: domain.PricingEnum, Values: []string{"a"}}, rule: domain.PricingRule{}},
		{name: "empty values on boolean", schema: domain.OptionSchema{PricingType: domain.PricingBoolean}, rule: domain.PricingRule{Values: map[string]float64{}}},
		{name: "empty ranges", schema: domain.OptionSchema{PricingType: domain.PricingRange}, rule: domain.PricingRule{Ranges: []domain.RangeBracket{}}},
		{name: "single page bracket", schema: domain.OptionSchema{PricingType: domain.PricingRange}, rule: domain.PricingRule{Ranges: []domain.RangeBracket{{From: 0, To: 0, Price: 1}}}},
		{name: "enum without listed values", schema: domain.OptionSchema{PricingType: domain.PricingEnum}, rule: domain.PricingRule{Values: map[string]float64{"a": 1}}},
		{name: "discount per unit", schema: domain.OptionSchema{PricingType: domain.PricingNumber}, rule: domain.PricingRule{PricePerUnit: ptr(-2)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := &domain.ProductTemplate{AllowedOptions: map[string]domain.OptionSchema{"opt": tc.schema}}
			cfg := &domain.PricingConfig{Rules: map[string]domain.PricingRule{"opt": tc.rule}}

			_, err := pricing.Compile(tpl, cfg)
			assert.NoError(t, err)
		})
	}
}

func TestCompile_RuleForUndeclaredOptionIsDropped(t *testing.T) {
	tpl := &domain.ProductTemplate{AllowedOptions: map[string]domain.OptionSchema{
		"rush": {PricingType: domain.PricingBoolean},
	}}
	cfg := &domain.PricingConfig{Rules: map[string]domain.PricingRule{
		"rush":     {Values: map[string]float64{"true": 10}},
		"legacy":   {PricePerUnit: ptr(1), Values: map[string]float64{"x": 1}},
		"printing": {PricePerPage: ptr(2)},
	}}

	s, err := pricing.Compile(tpl, cfg)
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.Price(domain.DocumentMeta{Pages: 5}, map[string]any{"rush": true, "printing": true, "legacy": 4}))
}

func TestCompile_MissingInputs(t *testing.T) {
	_, err := pricing.Compile(nil, &domain.PricingConfig{})
	assert.ErrorIs(t, err, pricing.ErrMissingTemplate)

	_, err = pricing.Compile(&domain.ProductTemplate{}, nil)
	assert.ErrorIs(t, err, pricing.ErrMissingConfig)

	_, err = pricing.Calculate(domain.CalculateInput{Template: &domain.ProductTemplate{}})
	assert.ErrorIs(t, err, pricing.ErrMissingConfig)
}

func TestValidateTemplate(t *testing.T) {
	assert.NoError(t, pricing.ValidateTemplate(posterTemplate()))
	assert.NoError(t, pricing.ValidateTemplate(&domain.ProductTemplate{}))
	assert.ErrorIs(t, pricing.ValidateTemplate(nil), pricing.ErrMissingTemplate)
}
