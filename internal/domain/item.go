package domain

import "fmt"

// ItemKind distinguishes regular menu items from promotional specials.
// It is carried explicitly from cart add through checkout; it is never
// derived from inspecting an id string.
type ItemKind string

const (
	ItemKindRegular     ItemKind = "regular"
	ItemKindPromotional ItemKind = "promotional"
)

// ParseItemKind validates a client-supplied kind string.
func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(s) {
	case ItemKindRegular, ItemKindPromotional:
		return ItemKind(s), nil
	default:
		return "", fmt.Errorf("unknown item kind %q", s)
	}
}

// ItemRef identifies a catalog item independently of the catalog itself,
// so order lines stay resolvable after the catalog entry changes or vanishes.
type ItemRef struct {
	Kind ItemKind `json:"kind"`
	ID   int64    `json:"id"`
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}
