package integrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickpath/internal/model"
)

func TestForContentType(t *testing.T) {
	cases := map[string]string{
		"":                                "csv",
		"text/csv":                        "csv",
		"text/plain; charset=utf-8":       "csv",
		"application/json":                "json",
		"application/vnd.orders+json":     "json",
		"application/json; charset=utf-8": "json",
	}
	for ct, want := range cases {
		src, err := ForContentType(ct)
		require.NoError(t, err, ct)
		assert.Equal(t, want, src.Name(), ct)
	}

	_, err := ForContentType("image/png")
	assert.Error(t, err)
}

func TestJSONAdapter(t *testing.T) {
	items, err := JSONAdapter{}.ParseOrder(strings.NewReader(`[{"sku":"X","locationId":"A-1","qty":2}]`))
	require.NoError(t, err)
	assert.Equal(t, []model.OrderItem{{SKU: "X", LocationID: "A-1", Qty: 2}}, items)

	items, err = JSONAdapter{}.ParseOrder(strings.NewReader(`null`))
	require.NoError(t, err)
	assert.NotNil(t, items)

	_, err = JSONAdapter{}.ParseOrder(strings.NewReader(`{"sku":"X"}`))
	assert.Error(t, err)
}
