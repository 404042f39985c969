package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"winsales/internal/access"
)

// APIHandler serves the small JSON API the pages call from the browser.
type APIHandler struct {
	base
}

func NewAPIHandler(d Deps) *APIHandler {
	return &APIHandler{base{d}}
}

// GET /api/me
func (h *APIHandler) Me(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"id":    s.UserID,
		"name":  s.Name,
		"email": s.Email,
		"role":  s.Role,
		"home":  access.HomeFor(s.Role),
	})
}

// GET /api/agenda/slot
func (h *APIHandler) Slot(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Agenda.CurrentSlot())
}

type locationOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// GET /api/locations/cities?state=
func (h *APIHandler) Cities(w http.ResponseWriter, r *http.Request) {
	stateID, err := uuid.Parse(r.URL.Query().Get("state"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Parámetro state inválido")
		return
	}
	cities, err := h.Catalog.Cities(r.Context(), stateID)
	if err != nil {
		h.Logger.Sugar().Errorw("list cities", "state", stateID, "error", err)
		jsonError(w, http.StatusInternalServerError, "Error al cargar las ciudades")
		return
	}
	out := make([]locationOption, 0, len(cities))
	for _, c := range cities {
		out = append(out, locationOption{ID: c.ID, Name: c.Name})
	}
	jsonResponse(w, http.StatusOK, out)
}

// GET /api/locations/districts?city=
func (h *APIHandler) Districts(w http.ResponseWriter, r *http.Request) {
	cityID, err := uuid.Parse(r.URL.Query().Get("city"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Parámetro city inválido")
		return
	}
	districts, err := h.Catalog.Districts(r.Context(), cityID)
	if err != nil {
		h.Logger.Sugar().Errorw("list districts", "city", cityID, "error", err)
		jsonError(w, http.StatusInternalServerError, "Error al cargar los distritos")
		return
	}
	out := make([]locationOption, 0, len(districts))
	for _, d := range districts {
		out = append(out, locationOption{ID: d.ID, Name: d.Name})
	}
	jsonResponse(w, http.StatusOK, out)
}
