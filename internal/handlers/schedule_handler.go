package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/services"
	"aquagem-backend/pkg/utils"
)

type ScheduleHandler struct {
	Schedule *services.ScheduleService
	Reports  *services.ReportService
}

func NewScheduleHandler(schedule *services.ScheduleService, reports *services.ReportService) *ScheduleHandler {
	return &ScheduleHandler{Schedule: schedule, Reports: reports}
}

// GetSchedule handles GET /api/admin/schedule/{date}
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Schedule.ForDate(r.Context(), mux.Vars(r)["date"], queryBool(r, "include_empty"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSONWithMeta(w, http.StatusOK, resp.Groups, resp.Meta)
}

// GenerateSchedule handles GET /api/admin/schedule/generate?date=&route_id=&format=pdf&archive=true.
// route_id may repeat; route_id=unassigned selects customers without a route.
func (h *ScheduleHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var filter models.RouteFilter
	for _, v := range r.URL.Query()["route_id"] {
		if v == "unassigned" {
			filter.Unassigned = true
			continue
		}
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			utils.Error(w, http.StatusBadRequest, "Invalid route_id")
			return
		}
		filter.RouteIDs = append(filter.RouteIDs, id)
	}

	manifest, err := h.Schedule.Manifest(r.Context(), r.URL.Query().Get("date"), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	archive := queryBool(r, "archive")
	if format != "pdf" && !archive {
		utils.JSON(w, http.StatusOK, manifest)
		return
	}

	pdf, err := h.Reports.GenerateManifestPDF(manifest)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if archive {
		url, err := h.Reports.ArchiveManifest(r.Context(), manifest.Date, pdf)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		manifest.ArchiveURL = url
		log.Printf("[Schedule] manifest for %s archived to %s", manifest.Date, url)
	}
	if format != "pdf" {
		utils.JSON(w, http.StatusOK, manifest)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"manifest_%s.pdf\"", manifest.Date))
	if manifest.ArchiveURL != "" {
		w.Header().Set("X-Archive-URL", manifest.ArchiveURL)
	}
	w.Write(pdf)
}

// Dashboard handles GET /api/admin/operations/dashboard
func (h *ScheduleHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Schedule.Dashboard(r.Context(), queryBool(r, "include_empty"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Today handles GET /api/admin/operations/today
func (h *ScheduleHandler) Today(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Schedule.Today(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

// AgentsProgress handles GET /api/admin/operations/delivery-boys
func (h *ScheduleHandler) AgentsProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.Schedule.AgentsProgress(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, progress)
}

// AgentToday handles GET /api/admin/delivery-boys/{id}/today
func (h *ScheduleHandler) AgentToday(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.writeAgentToday(w, r, id)
}

// MyToday handles GET /api/delivery/today for the logged-in delivery boy
func (h *ScheduleHandler) MyToday(w http.ResponseWriter, r *http.Request) {
	h.writeAgentToday(w, r, currentUserID(r))
}

func (h *ScheduleHandler) writeAgentToday(w http.ResponseWriter, r *http.Request, agentID int) {
	resp, err := h.Schedule.AgentToday(r.Context(), agentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}
