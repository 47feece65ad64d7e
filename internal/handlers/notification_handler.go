package handlers

import (
	"net/http"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/services"
	"aquagem-backend/pkg/utils"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(s *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: s}
}

// Notify handles POST /api/admin/operations/notify
func (h *NotificationHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req models.NotifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.Service.Notify(r.Context(), currentUserID(r), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if n.Status == models.NotificationFailed {
		status = http.StatusAccepted
	}
	utils.JSON(w, status, n)
}

// Inbox handles GET /api/delivery/notifications?limit=
func (h *NotificationHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", services.DefaultInboxLimit)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Service.Inbox(r.Context(), currentUserID(r), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, items)
}
