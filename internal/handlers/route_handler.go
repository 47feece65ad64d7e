package handlers

import (
	"net/http"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/services"
	"aquagem-backend/pkg/utils"
)

type RouteHandler struct {
	Service *services.RouteService
}

func NewRouteHandler(s *services.RouteService) *RouteHandler {
	return &RouteHandler{Service: s}
}

func (h *RouteHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Service.ListRoutes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSONWithMeta(w, http.StatusOK, routes, map[string]int{"total": len(routes)})
}

// AssignDeliveryBoy handles PATCH /api/admin/routes/{id}/assign-delivery-boy
func (h *RouteHandler) AssignDeliveryBoy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.AssignDeliveryBoyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	route, err := h.Service.AssignDeliveryBoy(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}

// MyRoute handles GET /api/delivery/route
func (h *RouteHandler) MyRoute(w http.ResponseWriter, r *http.Request) {
	route, err := h.Service.RouteForAgent(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}
