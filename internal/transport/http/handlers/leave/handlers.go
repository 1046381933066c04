package leavehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/leave"
	"hrpayroll/internal/transport/http/api"
	"hrpayroll/internal/transport/http/middleware"
	"hrpayroll/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
}

func NewHandler(service *leave.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.With(middleware.RequirePermission(access.PermLeaveRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(access.PermLeaveSubmit)).Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(access.PermLeaveDecide)).Post("/{leaveID}/decision", h.handleDecision)
		r.With(middleware.RequirePermission(access.PermLeaveDecide)).Post("/{leaveID}/approve", h.decideWith(leave.StatusApproved))
		r.With(middleware.RequirePermission(access.PermLeaveDecide)).Post("/{leaveID}/reject", h.decideWith(leave.StatusRejected))
	})
	r.With(middleware.RequirePermission(access.PermLeaveBalanceRead)).Get("/leave-balances", h.handleBalance)
	r.With(middleware.RequirePermission(access.PermLeaveBalanceRead)).Get("/leave-balances/{employeeID}", h.handleBalance)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	leaves, err := h.Service.List(r.Context(), user, leave.Filter{EmployeeID: q.Get("employeeId"), Status: q.Get("status")})
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, leaves, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload leave.SubmitInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	lv, err := h.Service.Submit(r.Context(), user, payload)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, lv, middleware.GetRequestID(r.Context()))
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	var payload decisionRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.decide(w, r, payload.Decision)
}

func (h *Handler) decideWith(decision string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.decide(w, r, decision)
	}
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision string) {
	user, _ := middleware.GetUser(r.Context())
	lv, err := h.Service.Decide(r.Context(), user, chi.URLParam(r, "leaveID"), decision)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, lv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	balance, err := h.Service.GetBalance(r.Context(), user, chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}
