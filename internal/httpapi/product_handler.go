package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	catalogdomain "github.com/shinmori2020/shop-portfolio-sub000/internal/catalog/domain"
	"github.com/shinmori2020/shop-portfolio-sub000/internal/checkout"
)

type ProductHandler struct {
	catalog   ProductCatalog
	validator *checkout.Validator
}

func NewProductHandler(catalog ProductCatalog, validator *checkout.Validator) *ProductHandler {
	return &ProductHandler{
		catalog:   catalog,
		validator: validator,
	}
}

type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	SalePrice   *int64 `json:"sale_price,omitempty"`
	OnSale      bool   `json:"on_sale"`
	Stock       *int64 `json:"stock,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func (h *ProductHandler) GetAllProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.GetAllProducts(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not fetch products")
		return
	}

	products := make([]ProductResponse, len(res))
	for i, p := range res {
		products[i] = productResponse(p)
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")

	product, err := h.catalog.GetProduct(r.Context(), id)
	if errors.Is(err, catalogdomain.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "product_not_found", "no such product")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not fetch product")
		return
	}

	respondJSON(w, http.StatusOK, productResponse(product))
}

// CheckStock answers whether the requested quantity can be fulfilled right
// now. A catalog failure is reported as unavailable, never as in-stock.
func (h *ProductHandler) CheckStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")

	quantity := int64(1)
	if raw := r.URL.Query().Get("quantity"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be a positive integer")
			return
		}
		quantity = parsed
	}

	check, err := h.validator.CheckStock(r.Context(), id, quantity)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not verify stock")
		return
	}

	respondJSON(w, http.StatusOK, check)
}

func productResponse(p *catalogdomain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		OnSale:      p.OnSale,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
}
