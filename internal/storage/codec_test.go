package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinmori2020/shop-portfolio-sub000/internal/cart/domain"
)

func lineItem(id string, price, quantity int64) domain.LineItem {
	return domain.LineItem{
		Product:  domain.ProductSnapshot{ID: id, Name: "Product " + id, Price: price},
		Quantity: quantity,
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	items := []domain.LineItem{
		lineItem("p-1", 1000, 2),
		lineItem("p-2", 500, 1),
	}

	data, err := encodeCart(items)
	require.NoError(t, err)

	decoded := decodeCart(data)
	assert.Equal(t, items, decoded)
}

func TestDecode_VersionMismatchDiscardsEverything(t *testing.T) {
	payload := fmt.Sprintf(
		`{"version":%d,"items":[{"product":{"id":"p-1","name":"A","price":1000},"quantity":2}]}`,
		SchemaVersion+1,
	)

	assert.Nil(t, decodeCart([]byte(payload)))
}

func TestDecode_MissingVersionDiscardsEverything(t *testing.T) {
	payload := `{"items":[{"product":{"id":"p-1","name":"A","price":1000},"quantity":2}]}`

	assert.Nil(t, decodeCart([]byte(payload)))
}

func TestDecode_MalformedPayloadDiscardsEverything(t *testing.T) {
	assert.Nil(t, decodeCart([]byte(`{"version":`)))
	assert.Nil(t, decodeCart([]byte(`[1,2,3]`)))
}

func TestDecode_DropsOnlyTheCorruptItem(t *testing.T) {
	// Three items, the middle one has a non-numeric price.
	payload := fmt.Sprintf(`{"version":%d,"items":[
		{"product":{"id":"p-1","name":"A","price":1000},"quantity":1},
		{"product":{"id":"p-2","name":"B","price":"oops"},"quantity":1},
		{"product":{"id":"p-3","name":"C","price":500},"quantity":2}
	]}`, SchemaVersion)

	items := decodeCart([]byte(payload))
	require.Len(t, items, 2)
	assert.Equal(t, "p-1", items[0].Product.ID)
	assert.Equal(t, "p-3", items[1].Product.ID)
}

func TestDecode_DropsInvalidItems(t *testing.T) {
	payload := fmt.Sprintf(`{"version":%d,"items":[
		{"product":{"id":"","name":"no id","price":1000},"quantity":1},
		{"product":{"id":"p-1","name":"A","price":1000},"quantity":0},
		{"product":{"id":"p-2","name":"B","price":1000},"quantity":3},
		{"product":{"id":"p-2","name":"B dup","price":1000},"quantity":1}
	]}`, SchemaVersion)

	items := decodeCart([]byte(payload))
	require.Len(t, items, 1)
	assert.Equal(t, "p-2", items[0].Product.ID)
	assert.Equal(t, int64(3), items[0].Quantity)
}

func TestEncode_AlwaysWritesCurrentVersion(t *testing.T) {
	data, err := encodeCart(nil)
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"version":%d,"items":[]}`, SchemaVersion), string(data))
}
