package handlers

import (
	"net/http"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/services"
	"aquagem-backend/pkg/utils"
)

type CustomerHandler struct {
	Service *services.CustomerService
}

func NewCustomerHandler(s *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{Service: s}
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	customer, err := h.Service.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

// UpdateSchedule handles PATCH /api/admin/customers/{id}/schedule
func (h *CustomerHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Service.UpdateSchedule(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

// UpdateStatus handles PATCH /api/admin/customers/{id}/status
func (h *CustomerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Service.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

// AssignRoute handles PATCH /api/admin/customers/{id}/route
func (h *CustomerHandler) AssignRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.AssignRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Service.AssignRoute(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

// UpdateJarBalance handles PATCH /api/admin/customers/{id}/jars
func (h *CustomerHandler) UpdateJarBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateJarBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.Service.UpdateJarBalance(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}
