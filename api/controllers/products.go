package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/api/responses"
	"github.com/casspea/casspea-backend/api/validators"
	"github.com/casspea/casspea-backend/internal/products"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/logger"
)

type productView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	BasePrice   string    `json:"base_price"`
	UnitsPerBox int       `json:"units_per_box"`
	WeightGrams int       `json:"weight_grams"`
	SoldOut     bool      `json:"sold_out"`

	MainColor      string `json:"main_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
}

type flavourView struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	AllergenIDs []uuid.UUID `json:"allergen_ids,omitempty"`
}

func newProductView(p *models.Product) productView {
	return productView{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Category:       p.Category.Name,
		BasePrice:      p.BasePrice.StringFixed(2),
		UnitsPerBox:    p.UnitsPerBox,
		WeightGrams:    p.WeightGrams,
		SoldOut:        p.SoldOut,
		MainColor:      p.MainColor,
		SecondaryColor: p.SecondaryColor,
	}
}

func newFlavourView(f *models.Flavour) flavourView {
	view := flavourView{
		ID:          f.ID,
		Name:        f.Name,
		Slug:        f.Slug,
		Description: f.Description,
	}
	for _, allergen := range f.Allergens {
		view.AllergenIDs = append(view.AllergenIDs, allergen.ID)
	}
	return view
}

// ListProducts returns every active product for the storefront.
func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]productView, 0, len(records))
		for i := range records {
			views = append(views, newProductView(&records[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// GetProduct returns one purchasable product.
func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetPurchasable(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductView(record))
	}
}

// ListFlavours returns the active flavours available for box customization.
func ListFlavours(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.ListActiveFlavours(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]flavourView, 0, len(records))
		for i := range records {
			views = append(views, newFlavourView(&records[i]))
		}
		responses.WriteSuccess(w, views)
	}
}
