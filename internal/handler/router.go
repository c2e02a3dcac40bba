package handler

import (
	"net/http"

	"github.com/Dan9191/loan-service/internal/auth"
	"github.com/Dan9191/loan-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the HTTP API
func NewRouter(h *Handler, tokens *auth.Tokens, limiter *middleware.RateLimiter, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))

	// Public routes
	r.HandleFunc("/register", limiter.Limit(h.Register)).Methods(http.MethodPost)
	r.HandleFunc("/login", limiter.Limit(h.Login)).Methods(http.MethodPost)
	r.HandleFunc("/key-rate", h.KeyRate).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(tokens))
	authRouter.HandleFunc("/loans", h.ApplyForLoan).Methods(http.MethodPost)
	authRouter.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	authRouter.HandleFunc("/loans/{id}/payments", h.RecordPayment).Methods(http.MethodPost)
	authRouter.HandleFunc("/payments", h.PaymentHistory).Methods(http.MethodGet)

	return r
}
