package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/api/middleware"
	"github.com/casspea/casspea-backend/api/responses"
	"github.com/casspea/casspea-backend/api/validators"
	"github.com/casspea/casspea-backend/internal/orders"
	"github.com/casspea/casspea-backend/pkg/db/models"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
)

type orderItemView struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	UnitPrice     string    `json:"unit_price"`
	Quantity      int       `json:"quantity"`
	LineTotal     string    `json:"line_total"`
	SelectionType *string   `json:"selection_type,omitempty"`
}

type orderStatusView struct {
	FromStatus *string   `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type orderView struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`

	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`

	DiscountCode *string    `json:"discount_code,omitempty"`
	GiftMessage  *string    `json:"gift_message,omitempty"`
	ShippingDate *time.Time `json:"shipping_date,omitempty"`

	Items         []orderItemView   `json:"items"`
	StatusHistory []orderStatusView `json:"status_history"`

	PaidAt    time.Time `json:"paid_at"`
	CreatedAt time.Time `json:"created_at"`
}

func newOrderView(record *models.Order) orderView {
	view := orderView{
		ID:           record.ID,
		OrderNumber:  record.OrderNumber,
		Email:        record.Email,
		Status:       record.Status.String(),
		Subtotal:     centsToMajor(record.SubtotalCents),
		Discount:     centsToMajor(record.DiscountCents),
		Shipping:     centsToMajor(record.ShippingCents),
		Total:        centsToMajor(record.TotalCents),
		DiscountCode: record.DiscountCode,
		GiftMessage:  record.GiftMessage,
		ShippingDate: record.ShippingDate,
		PaidAt:       record.PaidAt,
		CreatedAt:    record.CreatedAt,
	}
	for i := range record.Items {
		item := &record.Items[i]
		itemView := orderItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   centsToMajor(item.UnitPriceCents),
			Quantity:    item.Quantity,
			LineTotal:   centsToMajor(item.LineTotalCents),
		}
		if item.SelectionType != nil {
			selection := item.SelectionType.String()
			itemView.SelectionType = &selection
		}
		view.Items = append(view.Items, itemView)
	}
	for i := range record.StatusHistory {
		entry := &record.StatusHistory[i]
		statusView := orderStatusView{
			ToStatus:  entry.ToStatus.String(),
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		}
		if entry.FromStatus != nil {
			from := entry.FromStatus.String()
			statusView.FromStatus = &from
		}
		view.StatusHistory = append(view.StatusHistory, statusView)
	}
	return view
}

// GetOrderByNumber looks an order up by its customer-facing number.
func GetOrderByNumber(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderNumber := chi.URLParam(r, "orderNumber")
		if orderNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		record, err := svc.GetByNumber(r.Context(), orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(record))
	}
}

// ListMyOrders returns the authenticated user's order history.
func ListMyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolved, ok := middleware.IdentityFromContext(r.Context())
		if !ok || !resolved.Owner.IsUser() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListForUser(r.Context(), *resolved.Owner.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(records) > limit {
			records = records[:limit]
		}

		views := make([]orderView, 0, len(records))
		for i := range records {
			views = append(views, newOrderView(&records[i]))
		}
		responses.WriteSuccess(w, views)
	}
}
