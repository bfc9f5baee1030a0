package storage

import (
	"encoding/json"
	"log"

	"github.com/shinmori2020/shop-portfolio-sub000/internal/cart/domain"
)

// storedCart is the persisted layout: schema version plus the full item list.
type storedCart struct {
	Version int               `json:"version"`
	Items   []domain.LineItem `json:"items"`
}

// rawCart mirrors storedCart but keeps items as raw JSON so each one can be
// decoded and validated independently.
type rawCart struct {
	Version int               `json:"version"`
	Items   []json.RawMessage `json:"items"`
}

func encodeCart(items []domain.LineItem) ([]byte, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	return json.Marshal(storedCart{Version: SchemaVersion, Items: items})
}

// decodeCart turns a stored payload back into line items. A malformed top
// level or a version mismatch discards the whole payload. Individual items
// that fail validation are dropped one by one, so a single corrupt entry does
// not destroy the rest of the cart.
func decodeCart(data []byte) []domain.LineItem {
	var raw rawCart
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("discarding stored cart: malformed payload: %v", err)
		return nil
	}
	if raw.Version != SchemaVersion {
		log.Printf("discarding stored cart: schema version %d, want %d", raw.Version, SchemaVersion)
		return nil
	}

	items := make([]domain.LineItem, 0, len(raw.Items))
	seen := make(map[string]struct{}, len(raw.Items))
	for _, rawItem := range raw.Items {
		var item domain.LineItem
		if err := json.Unmarshal(rawItem, &item); err != nil {
			log.Printf("dropping stored line item: %v", err)
			continue
		}
		if item.Product.ID == "" || item.Quantity < 1 {
			log.Printf("dropping stored line item: invalid product %q quantity %d", item.Product.ID, item.Quantity)
			continue
		}
		if _, dup := seen[item.Product.ID]; dup {
			log.Printf("dropping stored line item: duplicate product %q", item.Product.ID)
			continue
		}
		seen[item.Product.ID] = struct{}{}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil
	}
	return items
}
