package contracts

import (
	"product-filter-service/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyFromPath(t *testing.T) {
	assert.Equal(t, "CatalogPriceChangedEvent/1.0.0", generateKeyFromPath("events/catalog-price-changed/v1.json"))
	assert.Equal(t, "FilterRequest/2.0.0", generateKeyFromPath("requests/filter-request/v2.json"))
	assert.Equal(t, "", generateKeyFromPath("events/v1.json"))
}

func TestLoadSchemas(t *testing.T) {
	registry, err := LoadSchemas()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{FilterRequestSchema, PriceChangedEvent + "/" + PriceChangedVersion}, registry.Keys())
}

func TestValidateFilterInput(t *testing.T) {
	registry, err := LoadSchemas()
	require.NoError(t, err)

	valid := []domain.RawFilterInput{
		{},
		{"categories": "shoes", "page": 2, "min_price": "10,5"},
		{"categories": []string{"shoes", "bags"}, "attributes": map[string][]string{"pa_color": {"red"}}},
		{"attributes": map[string]any{"pa_size": "xl"}, "page": []string{"3"}, "unknown": map[string]any{"x": 1}},
	}
	for _, raw := range valid {
		assert.NoError(t, registry.ValidateFilterInput(raw), "%v", raw)
	}

	invalid := []struct {
		raw   domain.RawFilterInput
		field string
	}{
		{raw: domain.RawFilterInput{"page": map[string]any{"n": 1}}, field: "page"},
		{raw: domain.RawFilterInput{"attributes": []string{"pa_color"}}, field: "attributes"},
		{raw: domain.RawFilterInput{"search": []string{"a", "b"}}, field: "search"},
	}
	for _, tt := range invalid {
		err := registry.ValidateFilterInput(tt.raw)
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr, "%v", tt.raw)
		assert.Equal(t, tt.field, vErr.Field)
	}
}

func TestValidateEvent(t *testing.T) {
	registry, err := LoadSchemas()
	require.NoError(t, err)

	ok := []byte(`{"product_ids":[1,2],"reason":"price_updated","occurred_at":"2024-05-01T10:00:00Z"}`)
	assert.NoError(t, registry.ValidateEvent(PriceChangedEvent, PriceChangedVersion, ok))

	missingReason := []byte(`{"occurred_at":"2024-05-01T10:00:00Z"}`)
	assert.Error(t, registry.ValidateEvent(PriceChangedEvent, PriceChangedVersion, missingReason))

	assert.Error(t, registry.ValidateEvent(PriceChangedEvent, PriceChangedVersion, []byte(`{`)))
	assert.Error(t, registry.ValidateEvent(PriceChangedEvent, "9.0.0", ok))
}
