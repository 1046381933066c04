package corehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/transport/http/api"
	"hrpayroll/internal/transport/http/middleware"
	"hrpayroll/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
}

func NewHandler(service *core.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequirePermission(access.PermEmployeesManage))
		r.Get("/", h.handleListEmployees)
		r.Post("/", h.handleCreateEmployee)
		r.Get("/{employeeID}", h.handleGetEmployee)
		r.Put("/{employeeID}", h.handleUpdateEmployee)
		r.Delete("/{employeeID}", h.handleDeactivateEmployee)
	})
	r.With(middleware.RequirePermission(access.PermEmployeeSelfRead)).Get("/me/employee", h.handleGetOwnEmployee)
	r.Route("/salary-structures", func(r chi.Router) {
		r.Use(middleware.RequirePermission(access.PermSalaryManage))
		r.Get("/", h.handleListStructures)
		r.Post("/", h.handleCreateStructure)
		r.Get("/{structureID}", h.handleGetStructure)
		r.Put("/{structureID}", h.handleUpdateStructure)
	})
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	employees, err := h.Service.ListEmployees(r.Context(), user, includeInactive)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload core.EmployeeInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	emp, err := h.Service.CreateEmployee(r.Context(), user, payload)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Service.GetEmployee(r.Context(), user, chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetOwnEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Service.GetEmployee(r.Context(), user, "")
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload core.EmployeePatch
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	emp, err := h.Service.UpdateEmployee(r.Context(), user, chi.URLParam(r, "employeeID"), payload)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "employeeID")
	if err := h.Service.DeactivateEmployee(r.Context(), user, id); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"id": id, "isActive": false}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListStructures(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	structures, err := h.Service.ListSalaryStructures(r.Context(), user)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, structures, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateStructure(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload core.SalaryStructureInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	structure, err := h.Service.CreateSalaryStructure(r.Context(), user, payload)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, structure, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	structure, err := h.Service.GetSalaryStructure(r.Context(), user, chi.URLParam(r, "structureID"))
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, structure, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateStructure(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload core.SalaryStructureInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	structure, err := h.Service.UpdateSalaryStructure(r.Context(), user, chi.URLParam(r, "structureID"), payload)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, structure, middleware.GetRequestID(r.Context()))
}
