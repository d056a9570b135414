package retail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSKU(t *testing.T) {
	entry, ok := LookupSKU("MAR001")
	require.True(t, ok)
	assert.Equal(t, "Tobacco", entry.Category)
	assert.Equal(t, "Marlboro", entry.Brand)
	assert.Equal(t, "180", entry.Product.Price.String())

	_, ok = LookupSKU("NOPE")
	assert.False(t, ok)
}

func TestCatalog_UniqueSKUs(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Catalog {
		for _, b := range c.Brands {
			require.NotEmpty(t, b.Products, b.Name)
			for _, p := range b.Products {
				assert.False(t, seen[p.SKU], "duplicate sku %s", p.SKU)
				seen[p.SKU] = true
				assert.True(t, p.Price.IsPositive(), p.SKU)
			}
		}
	}
}

func TestLocations(t *testing.T) {
	for _, l := range Locations {
		assert.NotEmpty(t, l.Region, l.City)
		assert.NotEmpty(t, l.Barangays, l.City)
	}
}
