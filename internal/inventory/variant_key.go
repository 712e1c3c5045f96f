package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
)

// LegacyStandardColor is the sentinel older clients send for products
// without a colour dimension.
const LegacyStandardColor = "Standard"

// VariantKey identifies one stock unit. A nil Color addresses the colourless
// variant of the size, never a variant with a colour.
type VariantKey struct {
	ProductID uuid.UUID
	Size      string
	Color     *string
}

// NormalizeColor trims the raw colour and collapses blanks to nil. With
// legacyStandard set the literal "Standard" also maps to nil.
func NormalizeColor(raw *string, legacyStandard bool) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	if legacyStandard && trimmed == LegacyStandardColor {
		return nil
	}
	return &trimmed
}

// NewVariantKey builds a key with a normalized size and colour.
func NewVariantKey(productID uuid.UUID, size string, color *string, legacyStandard bool) VariantKey {
	return VariantKey{
		ProductID: productID,
		Size:      strings.TrimSpace(size),
		Color:     NormalizeColor(color, legacyStandard),
	}
}

// Validate rejects keys that cannot address a variant.
func (k VariantKey) Validate() error {
	if k.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if strings.TrimSpace(k.Size) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	return nil
}

// SameColor reports whether both colours address the same variant.
func SameColor(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (k VariantKey) String() string {
	if k.Color == nil {
		return fmt.Sprintf("%s/%s", k.ProductID, k.Size)
	}
	return fmt.Sprintf("%s/%s/%s", k.ProductID, k.Size, *k.Color)
}

func (k VariantKey) details() map[string]any {
	out := map[string]any{
		"product_id": k.ProductID.String(),
		"size":       k.Size,
	}
	if k.Color != nil {
		out["color"] = *k.Color
	}
	return out
}
