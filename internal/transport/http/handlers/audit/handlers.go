package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/transport/http/api"
	"hrpayroll/internal/transport/http/middleware"
	"hrpayroll/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(access.PermAuditRead)).Get("/audit-logs", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	entries, err := h.Service.List(r.Context(), user, audit.Filter{
		Entity:   q.Get("entity"),
		EntityID: q.Get("entityId"),
		Action:   q.Get("action"),
		UserID:   q.Get("userId"),
	})
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 500)
	api.Success(w, shared.Paginate(entries, page), middleware.GetRequestID(r.Context()))
}
