package handlers

import (
	"net/http"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/services"
	"aquagem-backend/pkg/utils"
)

type DeliveryHandler struct {
	Service *services.DeliveryService
}

func NewDeliveryHandler(s *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{Service: s}
}

// Record handles POST /api/delivery/deliveries
func (h *DeliveryHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDeliveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	delivery, err := h.Service.Record(r.Context(), currentUserID(r), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, delivery)
}

// ProofUploadURL handles POST /api/delivery/deliveries/{id}/proof-url
func (h *DeliveryHandler) ProofUploadURL(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.ProofUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.Service.ProofUploadURL(r.Context(), currentUserID(r), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// AttachProof handles PATCH /api/delivery/deliveries/{id}/proof
func (h *DeliveryHandler) AttachProof(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.AttachProofRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	delivery, err := h.Service.AttachProof(r.Context(), currentUserID(r), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, delivery)
}
