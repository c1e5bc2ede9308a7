package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/api/responses"
	"github.com/casspea/casspea-backend/api/validators"
	"github.com/casspea/casspea-backend/internal/leads"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/logger"
)

type subscribeRequest struct {
	Email string  `json:"email" validate:"required,email"`
	Name  *string `json:"name"`
}

type contactRequest struct {
	Email   string  `json:"email" validate:"required,email"`
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Subject *string `json:"subject"`
	Message string  `json:"message" validate:"required"`
}

type leadView struct {
	ID    uuid.UUID `json:"id"`
	Type  string    `json:"type"`
	Email string    `json:"email"`
}

func newLeadView(record *models.Lead) leadView {
	return leadView{ID: record.ID, Type: record.Type.String(), Email: record.Email}
}

// SubscribeNewsletter records a newsletter signup.
func SubscribeNewsletter(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body subscribeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Subscribe(r.Context(), body.Email, body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newLeadView(record))
	}
}

// SubmitContactForm records a contact form submission.
func SubmitContactForm(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body contactRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.SubmitContact(r.Context(), leads.ContactInput{
			Email:   body.Email,
			Name:    body.Name,
			Phone:   body.Phone,
			Subject: body.Subject,
			Message: body.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newLeadView(record))
	}
}
