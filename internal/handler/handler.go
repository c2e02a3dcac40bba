package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/loan-service/internal/middleware"
	"github.com/Dan9191/loan-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps every JSON request body
const maxBodyBytes = 1 << 20

// RateQuoter suggests an interest rate for new loans
type RateQuoter interface {
	GetKeyRate(ctx context.Context) (decimal.Decimal, error)
}

type Handler struct {
	svc   *service.Service
	rates RateQuoter
	log   *logrus.Logger
}

// NewHandler creates the HTTP handlers. rates may be nil when no quote source is configured.
func NewHandler(svc *service.Service, rates RateQuoter, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, rates: rates, log: log}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loanRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermMonths   int             `json:"term_months"`
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username, req.Password, req.FullName)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user_id": user.ID})
}

// ApplyForLoan handles loan applications for the authenticated user
func (h *Handler) ApplyForLoan(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req loanRequest
	if !h.decode(w, r, &req) {
		return
	}

	loan, err := h.svc.ApplyForLoan(r.Context(), userID, req.Amount, req.InterestRate, req.TermMonths)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

// ListLoans returns the user's loans with remaining balances.
// ?outstanding=true limits the list to active loans with something left to pay.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	onlyOutstanding := r.URL.Query().Get("outstanding") == "true"

	balances, err := h.svc.ListLoansWithBalance(r.Context(), userID, onlyOutstanding)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

// RecordPayment records a payment against one of the user's loans
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	loanID, err := service.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	payment, err := h.svc.RecordPayment(r.Context(), userID, loanID, req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// PaymentHistory returns the user's payments, newest first
func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	payments, err := h.svc.PaymentHistory(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// KeyRate returns the suggested interest rate
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	if h.rates == nil {
		http.Error(w, "key rate source is not configured", http.StatusServiceUnavailable)
		return
	}

	rate, err := h.rates.GetKeyRate(r.Context())
	if err != nil {
		h.log.Errorf("Failed to get key rate: %v", err)
		http.Error(w, "failed to get key rate", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"key_rate": rate})
}

// Health reports whether the store is reachable
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotOwner):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUserExists):
		status = http.StatusConflict
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Errorf("Request failed: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
