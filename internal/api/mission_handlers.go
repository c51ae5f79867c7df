package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rachitshah07/drone-survey-management-system/internal/auth"
	"github.com/rachitshah07/drone-survey-management-system/internal/mission"
	"github.com/rachitshah07/drone-survey-management-system/models"
	"github.com/rachitshah07/drone-survey-management-system/repository"
)

func (h *Handlers) listMissions(w http.ResponseWriter, r *http.Request) {
	p := repository.ListMissionsParams{}
	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		status := models.MissionStatus(s)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "unknown mission status")
			return
		}
		p.Statuses = []models.MissionStatus{status}
	}
	if s := q.Get("drone_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid drone_id")
			return
		}
		p.DroneID = &id
	}
	if s := q.Get("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		p.PageSize = n
	}
	if s := q.Get("after_id"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid after_id")
			return
		}
		p.AfterID = n
	}
	missions, err := h.Missions.List(r.Context(), p)
	if err != nil {
		h.internalError(w, "list missions", err)
		return
	}
	if missions == nil {
		missions = []models.Mission{}
	}
	writeJSON(w, http.StatusOK, missions)
}

func (h *Handlers) getMission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid mission id")
		return
	}
	m, err := h.Missions.GetByID(r.Context(), id)
	if err != nil {
		h.internalError(w, "get mission", err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "mission not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type createMissionRequest struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	MissionType       string          `json:"mission_type"`
	DroneID           int64           `json:"drone_id"`
	FlightAltitude    float64         `json:"flight_altitude"`
	FlightSpeed       float64         `json:"flight_speed"`
	OverlapPercentage int             `json:"overlap_percentage"`
	SurveyArea        json.RawMessage `json:"survey_area"`
	Waypoints         json.RawMessage `json:"waypoints"`
	EstimatedDuration *int            `json:"estimated_duration"`
}

func (h *Handlers) createMission(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing principal")
		return
	}
	var req createMissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	m, err := h.Coordinator.CreateMission(r.Context(), mission.CreateMissionInput{
		Name:              req.Name,
		Description:       req.Description,
		Type:              models.MissionType(req.MissionType),
		DroneID:           req.DroneID,
		UserID:            p.UserID,
		FlightAltitude:    req.FlightAltitude,
		FlightSpeed:       req.FlightSpeed,
		OverlapPercentage: req.OverlapPercentage,
		SurveyArea:        req.SurveyArea,
		Waypoints:         req.Waypoints,
		EstimatedDuration: req.EstimatedDuration,
	})
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handlers) startMission(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Coordinator.Start)
}

func (h *Handlers) pauseMission(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Coordinator.Pause)
}

func (h *Handlers) resumeMission(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Coordinator.Resume)
}

func (h *Handlers) abortMission(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Coordinator.Abort)
}

func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id int64) (*models.Mission, error)) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid mission id")
		return
	}
	m, err := apply(r.Context(), id)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type progressRequest struct {
	ProgressPercentage float64 `json:"progress_percentage"`
	DistanceCovered    float64 `json:"distance_covered"`
}

func (h *Handlers) missionProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid mission id")
		return
	}
	var req progressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	m, err := h.Tracker.Report(r.Context(), id, req.ProgressPercentage, req.DistanceCovered)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handlers) missionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Missions.Stats(r.Context())
	if err != nil {
		h.internalError(w, "mission stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
