package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	cartdomain "github.com/shinmori2020/shop-portfolio-sub000/internal/cart/domain"
	"github.com/shinmori2020/shop-portfolio-sub000/internal/cart/store"
	catalogdomain "github.com/shinmori2020/shop-portfolio-sub000/internal/catalog/domain"
)

// ProductCatalog is the catalog surface the handlers need. Consumers define
// this interface, not the repository implementation.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*catalogdomain.Product, error)
	GetAllProducts(ctx context.Context) ([]*catalogdomain.Product, error)
}

type CartHandler struct {
	carts   *store.Manager
	catalog ProductCatalog
}

func NewCartHandler(carts *store.Manager, catalog ProductCatalog) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int64 `json:"quantity"`
}

type CartItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
	ImageURL  string `json:"image_url,omitempty"`
}

type CartResponse struct {
	SessionID  string             `json:"session_id"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int64              `json:"total_items"`
	TotalPrice int64              `json:"total_price"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFromContext(ctx)

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must not be empty")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if errors.Is(err, catalogdomain.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "product_not_found", "no such product")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not fetch product")
		return
	}

	cart := h.carts.Get(ctx, sessionID)
	if err := cart.AddItem(ctx, snapshotFromProduct(product), req.Quantity); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(sessionID, cart))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFromContext(ctx)
	cart := h.carts.Get(ctx, sessionID)

	respondJSON(w, http.StatusOK, cartResponse(sessionID, cart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFromContext(ctx)
	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Zero or negative quantity removes the line item.
	cart := h.carts.Get(ctx, sessionID)
	cart.UpdateQuantity(ctx, productID, req.Quantity)

	respondJSON(w, http.StatusOK, cartResponse(sessionID, cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFromContext(ctx)
	productID := chi.URLParam(r, "product_id")

	cart := h.carts.Get(ctx, sessionID)
	cart.RemoveItem(ctx, productID)

	respondJSON(w, http.StatusOK, cartResponse(sessionID, cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFromContext(ctx)

	cart := h.carts.Get(ctx, sessionID)
	cart.Clear(ctx)

	respondJSON(w, http.StatusOK, cartResponse(sessionID, cart))
}

func snapshotFromProduct(p *catalogdomain.Product) cartdomain.ProductSnapshot {
	snap := cartdomain.ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		OnSale:   p.OnSale,
		ImageURL: p.ImageURL,
	}
	if p.OnSale && p.SalePrice != nil {
		salePrice := *p.SalePrice
		snap.SalePrice = &salePrice
	}
	if p.Stock != nil {
		stock := *p.Stock
		snap.Stock = &stock
	}
	return snap
}

func cartResponse(sessionID string, cart *store.Store) CartResponse {
	items := cart.Items()
	resp := CartResponse{
		SessionID:  sessionID,
		Items:      make([]CartItemResponse, len(items)),
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}
	for i, item := range items {
		resp.Items[i] = CartItemResponse{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: item.Product.DisplayPrice(),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
			ImageURL:  item.Product.ImageURL,
		}
	}
	return resp
}
