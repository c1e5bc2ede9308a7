package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/api/responses"
	"github.com/casspea/casspea-backend/internal/shipping"
	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/db/models"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
)

type shippingOptionView struct {
	ID            uuid.UUID `json:"id"`
	Carrier       string    `json:"carrier"`
	Name          string    `json:"name"`
	DeliverySpeed string    `json:"delivery_speed"`
	Price         string    `json:"price"`

	EstimatedDaysMin int `json:"estimated_days_min"`
	EstimatedDaysMax int `json:"estimated_days_max"`
}

type shippingOptionsView struct {
	Currency              string               `json:"currency"`
	FreeShippingThreshold string               `json:"free_shipping_threshold"`
	Options               []shippingOptionView `json:"options"`
}

func newShippingOptionView(option *models.ShippingOption) shippingOptionView {
	return shippingOptionView{
		ID:               option.ID,
		Carrier:          option.Company.Name,
		Name:             option.Name,
		DeliverySpeed:    option.DeliverySpeed.String(),
		Price:            option.Price.StringFixed(2),
		EstimatedDaysMin: option.EstimatedDaysMin,
		EstimatedDaysMax: option.EstimatedDaysMax,
	}
}

// ListShippingOptions returns selectable options plus the free shipping rules.
func ListShippingOptions(repo shipping.ShippingRepository, cfg config.ShippingConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := repo.ListActiveOptions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping options"))
			return
		}

		view := shippingOptionsView{
			Currency:              cfg.Currency,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			Options:               make([]shippingOptionView, 0, len(records)),
		}
		for i := range records {
			view.Options = append(view.Options, newShippingOptionView(&records[i]))
		}
		responses.WriteSuccess(w, view)
	}
}
