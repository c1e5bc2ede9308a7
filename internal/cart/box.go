package cart

import (
	"fmt"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
)

// validateBoxCustomization enforces the selection rules for an assortment box.
// PICK_AND_MIX flavor quantities must add up to the product's box size;
// RANDOM boxes may not carry flavor selections at all.
func validateBoxCustomization(box *models.CartItemBoxCustomization, product *models.Product) error {
	if box == nil {
		return nil
	}
	if !box.SelectionType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid selection type")
	}

	switch box.SelectionType {
	case enums.SelectionTypeRandom:
		if len(box.FlavorSelections) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "random boxes cannot include flavor selections")
		}
	case enums.SelectionTypePickAndMix:
		total := 0
		for _, selection := range box.FlavorSelections {
			if selection.Quantity < 1 {
				return pkgerrors.New(pkgerrors.CodeValidation, "flavor quantities must be at least 1")
			}
			total += selection.Quantity
		}
		if total != product.UnitsPerBox {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("flavor quantities must sum to %d, got %d", product.UnitsPerBox, total)).
				WithDetails(map[string]any{
					"expected_total": product.UnitsPerBox,
					"actual_total":   total,
				})
		}
	}
	return nil
}
