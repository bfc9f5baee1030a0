package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cart "github.com/shinmori2020/shop-portfolio-sub000/internal/cart/domain"
	catalog "github.com/shinmori2020/shop-portfolio-sub000/internal/catalog/domain"
)

type mockCatalog struct {
	products map[string]*catalog.Product
	err      error
	errFor   map[string]error
}

func (m *mockCatalog) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err, ok := m.errFor[id]; ok {
		return nil, err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func product(id string, price int64, stock *int64) *catalog.Product {
	return &catalog.Product{ID: id, Name: "Product " + id, Price: price, Stock: stock}
}

func cartItem(id string, price, quantity int64) cart.LineItem {
	return cart.LineItem{
		Product:  cart.ProductSnapshot{ID: id, Name: "Product " + id, Price: price},
		Quantity: quantity,
	}
}

func int64p(v int64) *int64 { return &v }

func TestValidateCart_PriceDriftIsNonBlocking(t *testing.T) {
	// Client holds 1000, catalog says 1200, stock is sufficient.
	v := NewValidator(&mockCatalog{products: map[string]*catalog.Product{
		"p-1": product("p-1", 1200, int64p(10)),
	}})

	result := v.ValidateCart(context.Background(), []cart.LineItem{cartItem("p-1", 1000, 2)})

	assert.True(t, result.Valid)
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(1200), result.Items[0].UnitPrice, "authoritative price must win")
	assert.Equal(t, int64(2400), result.Items[0].Subtotal)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "price changed")
}

func TestValidateCart_SalePriceIsAuthoritative(t *testing.T) {
	v := NewValidator(&mockCatalog{products: map[string]*catalog.Product{
		"p-1": {ID: "p-1", Name: "Sale", Price: 1000, SalePrice: int64p(700), OnSale: true, Stock: int64p(5)},
	}})

	result := v.ValidateCart(context.Background(), []cart.LineItem{cartItem("p-1", 700, 1)})

	assert.True(t, result.Valid)
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(700), result.Items[0].UnitPrice)
	assert.Empty(t, result.Errors, "matching sale price is not drift")
}

func TestValidateCart_InsufficientStockBlocksCheckout(t *testing.T) {
	v := NewValidator(&mockCatalog{products: map[string]*catalog.Product{
		"p-1": product("p-1", 1000, int64p(3)),
	}})

	result := v.ValidateCart(context.Background(), []cart.LineItem{cartItem("p-1", 1000, 10)})

	assert.False(t, result.Valid)
	assert.Empty(t, result.Items)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "only 3 in stock")
}

func TestValidateCart_MissingProductBlocksCheckout(t *testing.T) {
	v := NewValidator(&mockCatalog{products: map[string]*catalog.Product{}})

	result := v.ValidateCart(context.Background(), []cart.LineItem{cartItem("p-gone", 1000, 1)})

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "product not found")
}

func TestValidateCart_FetchErrorFailsClosed(t *testing.T) {
	v := NewValidator(&mockCatalog{err: errors.New("catalog unreachable")})

	result := v.ValidateCart(context.Background(), []cart.LineItem{cartItem("p-1", 1000, 1)})

	assert.False(t, result.Valid, "an unreachable catalog must block checkout")
	assert.Empty(t, result.Items)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "could not verify item")
}

func TestValidateCart_UntrackedStockIsUnconstrained(t *testing.T) {
	// Deliberate default-open policy: a product without a stock field
	// predates inventory tracking and is always purchasable.
	v := NewValidator(&mockCatalog{products: map[string]*catalog.Product{
		"p-legacy": product("p-legacy", 1000, nil),
	}})

	result := v.ValidateCart(context.Background(), []cart.LineItem{cartItem("p-legacy", 1000, 9999)})

	assert.True(t, result.Valid)
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(9999), result.Items[0].Quantity)
}

func TestValidateCart_OneFailureDoesNotAbortOtherItems(t *testing.T) {
	v := NewValidator(&mockCatalog{
		products: map[string]*catalog.Product{
			"p-ok":  product("p-ok", 500, int64p(10)),
			"p-low": product("p-low", 800, int64p(1)),
		},
		errFor: map[string]error{"p-down": errors.New("timeout")},
	})

	items := []cart.LineItem{
		cartItem("p-ok", 500, 2),
		cartItem("p-low", 800, 5),
		cartItem("p-down", 100, 1),
	}
	result := v.ValidateCart(context.Background(), items)

	assert.False(t, result.Valid)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "p-ok", result.Items[0].ProductID)
	assert.Len(t, result.Errors, 2)
}

func TestValidateCart_EmptyCart(t *testing.T) {
	v := NewValidator(&mockCatalog{})

	result := v.ValidateCart(context.Background(), nil)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.Contains(result.Errors[0], "empty"))
}

func TestCheckStock_Insufficient(t *testing.T) {
	v := NewValidator(&mockCatalog{products: map[string]*catalog.Product{
		"p-1": product("p-1", 1000, int64p(3)),
	}})

	check, err := v.CheckStock(context.Background(), "p-1", 10)
	require.NoError(t, err)

	assert.False(t, check.HasStock)
	require.NotNil(t, check.AvailableStock)
	assert.Equal(t, int64(3), *check.AvailableStock)
	assert.NotEmpty(t, check.Message)
}

func TestCheckStock_Sufficient(t *testing.T) {
	v := NewValidator(&mockCatalog{products: map[string]*catalog.Product{
		"p-1": product("p-1", 1000, int64p(3)),
	}})

	check, err := v.CheckStock(context.Background(), "p-1", 3)
	require.NoError(t, err)

	assert.True(t, check.HasStock)
	require.NotNil(t, check.AvailableStock)
	assert.Equal(t, int64(3), *check.AvailableStock)
}

func TestCheckStock_UntrackedStock(t *testing.T) {
	v := NewValidator(&mockCatalog{products: map[string]*catalog.Product{
		"p-legacy": product("p-legacy", 1000, nil),
	}})

	check, err := v.CheckStock(context.Background(), "p-legacy", 100)
	require.NoError(t, err)

	assert.True(t, check.HasStock)
	assert.Nil(t, check.AvailableStock)
}

func TestCheckStock_NotFound(t *testing.T) {
	v := NewValidator(&mockCatalog{products: map[string]*catalog.Product{}})

	check, err := v.CheckStock(context.Background(), "p-gone", 1)
	require.NoError(t, err)

	assert.False(t, check.HasStock)
	assert.NotEmpty(t, check.Message)
}

func TestCheckStock_FetchErrorIsSurfaced(t *testing.T) {
	v := NewValidator(&mockCatalog{err: errors.New("catalog unreachable")})

	_, err := v.CheckStock(context.Background(), "p-1", 1)
	require.Error(t, err)
}
