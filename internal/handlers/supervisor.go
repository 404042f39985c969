package handlers

import (
	"net/http"

	"winsales/internal/agenda"
	"winsales/internal/models"
)

// SupervisorHandler serves /dashboard/supervisor: the team and what the team is doing.
type SupervisorHandler struct {
	base
}

func NewSupervisorHandler(d Deps) *SupervisorHandler {
	return &SupervisorHandler{base{d}}
}

func (h *SupervisorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	stats, err := h.Team.Stats(r.Context(), s.UserID, h.today())
	if err != nil {
		h.serverError(w, r, "load team stats", err)
		return
	}
	members, err := h.Team.Members(r.Context(), s.UserID)
	if err != nil {
		h.serverError(w, r, "load team", err)
		return
	}
	h.render(w, r, "supervisor.html", map[string]interface{}{
		"Title":   "Supervisión",
		"Stats":   stats,
		"Members": members,
	})
}

func (h *SupervisorHandler) ShowTeam(w http.ResponseWriter, r *http.Request) {
	h.renderTeam(w, r, http.StatusOK, "")
}

func (h *SupervisorHandler) renderTeam(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	s := h.session(r)
	members, err := h.Team.Members(r.Context(), s.UserID)
	if err != nil {
		h.serverError(w, r, "load team", err)
		return
	}
	available, err := h.Team.Unassigned(r.Context(), s.UserID)
	if err != nil {
		h.serverError(w, r, "load advisors", err)
		return
	}
	h.renderStatus(w, r, status, "supervisor_team.html", map[string]interface{}{
		"Title":     "Mi equipo",
		"Members":   members,
		"Available": available,
		"Error":     errMsg,
	})
}

func (h *SupervisorHandler) Assign(w http.ResponseWriter, r *http.Request) {
	res := h.Actions.AssignAdvisor(r.Context(), h.session(r), r.FormValue("advisor_id"))
	if !res.Success {
		h.renderTeam(w, r, resultStatus(res), res.Error)
		return
	}
	http.Redirect(w, r, "/dashboard/supervisor/team?saved=1", http.StatusFound)
}

func (h *SupervisorHandler) Remove(w http.ResponseWriter, r *http.Request) {
	res := h.Actions.RemoveAdvisor(r.Context(), h.session(r), r.FormValue("advisor_id"))
	if !res.Success {
		h.renderTeam(w, r, resultStatus(res), res.Error)
		return
	}
	http.Redirect(w, r, "/dashboard/supervisor/team?saved=1", http.StatusFound)
}

func (h *SupervisorHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.List(r.Context(), models.ScopeTeam(h.session(r).UserID))
	if err != nil {
		h.serverError(w, r, "list team leads", err)
		return
	}
	h.render(w, r, "leads.html", map[string]interface{}{
		"Title":       "Leads del equipo",
		"Leads":       leads,
		"ShowAdvisor": true,
	})
}

func (h *SupervisorHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Sales.List(r.Context(), models.ScopeTeam(h.session(r).UserID), models.SaleFilter{})
	if err != nil {
		h.serverError(w, r, "list team sales", err)
		return
	}
	h.render(w, r, "sales.html", map[string]interface{}{
		"Title":       "Ventas del equipo",
		"Sales":       sales,
		"ShowAdvisor": true,
	})
}

func (h *SupervisorHandler) ShowAgenda(w http.ResponseWriter, r *http.Request) {
	a, err := h.Agenda.ForSupervisor(r.Context(), h.session(r).UserID)
	if err != nil {
		h.serverError(w, r, "load team agenda", err)
		return
	}
	h.render(w, r, "agenda.html", map[string]interface{}{
		"Title":       "Agenda del equipo",
		"Agenda":      a,
		"SlotOrder":   agenda.SlotOrder,
		"Slot":        h.Agenda.CurrentSlot(),
		"ShowAdvisor": true,
	})
}
