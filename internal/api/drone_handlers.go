package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rachitshah07/drone-survey-management-system/models"
	"github.com/rachitshah07/drone-survey-management-system/repository"
)

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handlers) listDrones(w http.ResponseWriter, r *http.Request) {
	p := repository.ListDronesParams{}
	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		status := models.DroneStatus(s)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "unknown drone status")
			return
		}
		p.Status = &status
	}
	if s := q.Get("q"); s != "" {
		p.NameOrSerialContains = &s
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
	drones, err := h.Drones.List(r.Context(), p)
	if err != nil {
		h.internalError(w, "list drones", err)
		return
	}
	if drones == nil {
		drones = []models.Drone{}
	}
	writeJSON(w, http.StatusOK, drones)
}

func (h *Handlers) getDrone(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid drone id")
		return
	}
	d, err := h.Drones.GetByID(r.Context(), id)
	if err != nil {
		h.internalError(w, "get drone", err)
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "drone not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type createDroneRequest struct {
	Name          string `json:"name"`
	Model         string `json:"model"`
	SerialNumber  string `json:"serial_number"`
	MaxFlightTime int    `json:"max_flight_time"`
}

func (h *Handlers) createDrone(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}
	var req createDroneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Model = strings.TrimSpace(req.Model)
	req.SerialNumber = strings.TrimSpace(req.SerialNumber)
	if req.Name == "" || req.Model == "" || req.SerialNumber == "" {
		writeError(w, http.StatusUnprocessableEntity, "name, model, and serial_number are required")
		return
	}

	ctx := r.Context()
	if existing, err := h.Drones.GetBySerial(ctx, req.SerialNumber); err != nil {
		h.internalError(w, "get drone by serial", err)
		return
	} else if existing != nil {
		writeError(w, http.StatusUnprocessableEntity, "drone with this serial number already exists")
		return
	}

	d, err := h.Drones.Create(ctx, &models.Drone{
		Name:          req.Name,
		Model:         req.Model,
		SerialNumber:  req.SerialNumber,
		MaxFlightTime: req.MaxFlightTime,
	})
	if err != nil {
		h.internalError(w, "create drone", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

type updateDroneRequest struct {
	Name         *string  `json:"name"`
	Model        *string  `json:"model"`
	Status       *string  `json:"status"`
	BatteryLevel *int     `json:"battery_level"`
	LocationLat  *float64 `json:"location_lat"`
	LocationLng  *float64 `json:"location_lng"`
	Altitude     *float64 `json:"altitude"`
}

// updateDrone applies a partial update. Status writes here are fleet
// management (maintenance, offline); the mission coordinator alone moves
// drones in and out of in_mission.
func (h *Handlers) updateDrone(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid drone id")
		return
	}
	var req updateDroneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ctx := r.Context()
	d, err := h.Drones.GetByID(ctx, id)
	if err != nil {
		h.internalError(w, "get drone", err)
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "drone not found")
		return
	}

	if req.Name != nil {
		d.Name = strings.TrimSpace(*req.Name)
	}
	if req.Model != nil {
		d.Model = strings.TrimSpace(*req.Model)
	}
	if req.Status != nil {
		status := models.DroneStatus(*req.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "unknown drone status")
			return
		}
		d.Status = status
	}
	if req.BatteryLevel != nil {
		d.BatteryLevel = *req.BatteryLevel
	}
	if req.LocationLat != nil {
		d.LocationLat = req.LocationLat
	}
	if req.LocationLng != nil {
		d.LocationLng = req.LocationLng
	}
	if req.Altitude != nil {
		d.Altitude = *req.Altitude
	}

	if err := h.Drones.Update(ctx, d); err != nil {
		h.internalError(w, "update drone", err)
		return
	}
	updated, err := h.Drones.GetByID(ctx, id)
	if err != nil {
		h.internalError(w, "reload drone", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) deleteDrone(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid drone id")
		return
	}
	ctx := r.Context()
	d, err := h.Drones.GetByID(ctx, id)
	if err != nil {
		h.internalError(w, "get drone", err)
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "drone not found")
		return
	}
	// A drone stays deletable only once every mission referencing it is done.
	n, err := h.Missions.CountNonTerminalByDrone(ctx, id)
	if err != nil {
		h.internalError(w, "count missions", err)
		return
	}
	if n > 0 {
		writeError(w, http.StatusConflict, "drone is referenced by an unfinished mission")
		return
	}
	if err := h.Drones.Delete(ctx, id); err != nil {
		h.internalError(w, "delete drone", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "drone deleted successfully"})
}

func (h *Handlers) droneStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Drones.CountByStatus(r.Context())
	if err != nil {
		h.internalError(w, "drone stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
