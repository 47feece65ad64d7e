package handlers

import (
	"net/http"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/services"
	"aquagem-backend/pkg/utils"
)

type UserHandler struct {
	Service *services.UserService
}

func NewUserHandler(s *services.UserService) *UserHandler {
	return &UserHandler{Service: s}
}

// CreateUser adds a delivery boy (or, with a password, an admin)
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = models.RoleDeliveryBoy
	}
	if req.Role != models.RoleDeliveryBoy && req.Role != models.RoleAdmin {
		utils.Error(w, http.StatusBadRequest, "Role must be admin or delivery_boy")
		return
	}

	user := &models.User{
		Name:     req.Name,
		Mobile:   req.Mobile,
		WhatsApp: req.WhatsApp,
		Role:     req.Role,
		IsActive: true,
	}
	if err := h.Service.CreateUser(r.Context(), user, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, user)
}

// ListDeliveryBoys handles GET /api/admin/delivery-boys?all=true
func (h *UserHandler) ListDeliveryBoys(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListDeliveryBoys(r.Context(), queryBool(r, "all"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSONWithMeta(w, http.StatusOK, users, map[string]int{"total": len(users)})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}
