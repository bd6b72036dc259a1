package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/emberdate/ember/internal/service"
	"github.com/emberdate/ember/internal/transport/http/middleware"
	"github.com/emberdate/ember/pkg/validator"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		TransactionHash string  `json:"transactionHash"`
		Amount          float64 `json:"amount"`
		PaymentType     string  `json:"paymentType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidatePayment(input.TransactionHash, input.Amount, input.PaymentType); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	payment, err := h.paymentService.Process(r.Context(), userID, input.TransactionHash, input.Amount, input.PaymentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPaymentType):
			writeError(w, http.StatusBadRequest, "INVALID_PAYMENT_TYPE", "Payment type must be initial or monthly")
		case errors.Is(err, service.ErrInvalidTransaction):
			writeError(w, http.StatusBadRequest, "INVALID_TRANSACTION", "Transaction is invalid or unconfirmed")
		case errors.Is(err, service.ErrDuplicatePayment):
			writeError(w, http.StatusConflict, "DUPLICATE_PAYMENT", "This transaction was already processed")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			log.Printf("ERROR process payment: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"payment": payment,
	})
}

func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	payments, err := h.paymentService.History(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR payment history: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, err := h.paymentService.Status(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			log.Printf("ERROR subscription status: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Pricing is static subscription tier information for the payment screen.
func (h *PaymentHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"earlyBird": map[string]any{
			"price":       0.1,
			"currency":    "SOL",
			"description": "Initial subscription (first 2000 users)",
			"duration":    "6 months",
		},
		"regular": map[string]any{
			"price":       0.2,
			"currency":    "SOL",
			"description": "Initial subscription",
			"duration":    "6 months",
		},
		"monthly": map[string]any{
			"price":       0.05,
			"currency":    "SOL",
			"description": "Recurring monthly subscription",
			"duration":    "1 month",
		},
	})
}
