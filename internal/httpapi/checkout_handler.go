package httpapi

import (
	"context"
	"log"
	"net/http"

	"github.com/shinmori2020/shop-portfolio-sub000/internal/cart/store"
	"github.com/shinmori2020/shop-portfolio-sub000/internal/checkout"
	"github.com/shinmori2020/shop-portfolio-sub000/internal/events"
)

// DraftPublisher hands a validated order draft to the order-creation flow.
type DraftPublisher interface {
	PublishDraft(ctx context.Context, draft events.OrderDraft) error
}

type CheckoutHandler struct {
	carts     *store.Manager
	validator *checkout.Validator
	publisher DraftPublisher // nil when no broker is configured
	schedule  checkout.FeeSchedule
}

func NewCheckoutHandler(carts *store.Manager, validator *checkout.Validator, publisher DraftPublisher, schedule checkout.FeeSchedule) *CheckoutHandler {
	return &CheckoutHandler{
		carts:     carts,
		validator: validator,
		publisher: publisher,
		schedule:  schedule,
	}
}

type ValidateResponse struct {
	Valid   bool                     `json:"valid"`
	Items   []checkout.ValidatedItem `json:"items,omitempty"`
	Errors  []string                 `json:"errors,omitempty"`
	Totals  *checkout.Totals         `json:"totals,omitempty"`
	DraftID string                   `json:"draft_id,omitempty"`
}

// ValidateCart re-checks the session's cart against the catalog and, when
// everything holds, computes the order totals and hands a draft to the
// order-creation flow. The cart itself is never mutated here; it is cleared
// only once the external order placement succeeds.
func (h *CheckoutHandler) ValidateCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFromContext(ctx)

	cart := h.carts.Get(ctx, sessionID)
	result := h.validator.ValidateCart(ctx, cart.Items())

	resp := ValidateResponse{
		Valid:  result.Valid,
		Items:  result.Items,
		Errors: result.Errors,
	}

	if result.Valid {
		totals := checkout.CalculateTotal(result.Items, h.schedule)
		resp.Totals = &totals

		if h.publisher != nil {
			draft := events.NewDraft(sessionID, result.Items, totals)
			if err := h.publisher.PublishDraft(ctx, draft); err != nil {
				// The draft hand-off is downstream bookkeeping; its failure
				// must not block or invalidate the checkout result.
				log.Printf("failed to publish order draft: %v", err)
			} else {
				resp.DraftID = draft.ID
			}
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
