package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"winsales/internal/access"
	"winsales/internal/actions"
	"winsales/internal/agenda"
	"winsales/internal/forms"
	"winsales/internal/models"
)

// AdminHandler serves /admin: every lead and sale, users, teams and the catalog settings.
type AdminHandler struct {
	base
}

func NewAdminHandler(d Deps) *AdminHandler {
	return &AdminHandler{base{d}}
}

type roleCount struct {
	Role  access.Role
	Count int
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.Sales.Stats(ctx, h.today())
	if err != nil {
		h.serverError(w, r, "load sale stats", err)
		return
	}
	users, err := h.Users.List(ctx)
	if err != nil {
		h.serverError(w, r, "list users", err)
		return
	}
	leads, err := h.Leads.List(ctx, models.ScopeAll)
	if err != nil {
		h.serverError(w, r, "list leads", err)
		return
	}

	counts := make(map[access.Role]int, len(access.Roles))
	banned := 0
	for _, u := range users {
		counts[access.Role(u.Role)]++
		if u.Banned {
			banned++
		}
	}
	byRole := make([]roleCount, 0, len(access.Roles))
	for _, role := range access.Roles {
		byRole = append(byRole, roleCount{Role: role, Count: counts[role]})
	}
	pendingLeads := 0
	for _, l := range leads {
		if l.Status == models.LeadStatusNew {
			pendingLeads++
		}
	}

	h.render(w, r, "admin.html", map[string]interface{}{
		"Title":        "Administración",
		"Stats":        stats,
		"UserCount":    len(users),
		"BannedCount":  banned,
		"ByRole":       byRole,
		"LeadCount":    len(leads),
		"PendingLeads": pendingLeads,
	})
}

func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.List(r.Context(), models.ScopeAll)
	if err != nil {
		h.serverError(w, r, "list leads", err)
		return
	}
	h.render(w, r, "leads.html", map[string]interface{}{
		"Title":       "Todos los leads",
		"Leads":       leads,
		"BasePath":    "/admin/leads",
		"CanEdit":     true,
		"ShowAdvisor": true,
	})
}

func (h *AdminHandler) EditLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	lead, err := h.Leads.GetByID(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, "load lead", err)
		return
	}
	h.leadForm(w, r, http.StatusOK, "/admin/leads", lead, map[string]interface{}{})
}

func (h *AdminHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	res := h.Actions.AdminUpdateLead(r.Context(), h.session(r), id, r.PostForm)
	if res.Success {
		http.Redirect(w, r, "/admin/leads?saved=1", http.StatusFound)
		return
	}
	lead, err := h.Leads.GetByID(r.Context(), id)
	if err != nil {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	h.leadForm(w, r, resultStatus(res), "/admin/leads", lead, formData(map[string]interface{}{}, r, res))
}

func (h *AdminHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	filter := statusFilter(r)
	sales, err := h.Sales.List(r.Context(), models.ScopeAll, filter)
	if err != nil {
		h.serverError(w, r, "list sales", err)
		return
	}
	h.render(w, r, "sales.html", map[string]interface{}{
		"Title":        "Todas las ventas",
		"Sales":        sales,
		"ShowAdvisor":  true,
		"BasePath":     "/dashboard/backoffice/sales",
		"FilterPath":   "/admin/sales",
		"StatusFilter": string(filter.RequestStatus),
		"Statuses":     models.RequestStatuses,
		"CanExport":    true,
	})
}

func (h *AdminHandler) ShowAgenda(w http.ResponseWriter, r *http.Request) {
	a, err := h.Agenda.ForAll(r.Context())
	if err != nil {
		h.serverError(w, r, "load agenda", err)
		return
	}
	h.render(w, r, "agenda.html", map[string]interface{}{
		"Title":       "Agenda general",
		"Agenda":      a,
		"SlotOrder":   agenda.SlotOrder,
		"Slot":        h.Agenda.CurrentSlot(),
		"LeadPath":    "/admin/leads",
		"ShowAdvisor": true,
	})
}

// Users

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.renderUsers(w, r, http.StatusOK, map[string]interface{}{})
}

func (h *AdminHandler) renderUsers(w http.ResponseWriter, r *http.Request, status int, data map[string]interface{}) {
	ctx := r.Context()
	users, err := h.Users.List(ctx)
	if err != nil {
		h.serverError(w, r, "list users", err)
		return
	}
	agencies, err := h.activeAgencies(ctx)
	if err != nil {
		h.serverError(w, r, "list agencies", err)
		return
	}
	if _, ok := data["FormUserID"]; !ok {
		data["FormUserID"] = ""
	}
	data["Title"] = "Usuarios"
	data["Users"] = users
	data["Agencies"] = agencies
	data["Roles"] = access.Roles
	h.renderStatus(w, r, status, "admin_users.html", data)
}

// userAction runs a user mutation and either redirects back to the list or re-renders it with the error.
func (h *AdminHandler) userAction(w http.ResponseWriter, r *http.Request, run func(userID string) actions.Result) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	res := run(chi.URLParam(r, "id"))
	if res.Success {
		http.Redirect(w, r, "/admin/users?saved=1", http.StatusFound)
		return
	}
	status := resultStatus(res)
	if res.Error == actions.MsgUserNotFound {
		status = http.StatusNotFound
	}
	h.renderUsers(w, r, status, formData(map[string]interface{}{"FormUserID": chi.URLParam(r, "id")}, r, res))
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	res := h.Actions.CreateUser(r.Context(), h.session(r), r.PostForm)
	if res.Success {
		http.Redirect(w, r, "/admin/users?created=1", http.StatusFound)
		return
	}
	h.renderUsers(w, r, resultStatus(res), formData(map[string]interface{}{"Creating": true}, r, res))
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, func(id string) actions.Result {
		return h.Actions.UpdateUser(r.Context(), h.session(r), id, r.PostForm)
	})
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, func(id string) actions.Result {
		return h.Actions.SetRole(r.Context(), h.session(r), id, r.PostForm)
	})
}

func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, func(id string) actions.Result {
		return h.Actions.SetBanned(r.Context(), h.session(r), id, true, r.PostForm.Get("reason"))
	})
}

func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, func(id string) actions.Result {
		return h.Actions.SetBanned(r.Context(), h.session(r), id, false, "")
	})
}

// Teams

type supervisorTeam struct {
	Supervisor models.User
	Members    []models.TeamMember
}

func (h *AdminHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	h.renderAssignments(w, r, http.StatusOK, "")
}

func (h *AdminHandler) renderAssignments(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	ctx := r.Context()
	users, err := h.Users.List(ctx)
	if err != nil {
		h.serverError(w, r, "list users", err)
		return
	}

	var teams []supervisorTeam
	var advisors []models.User
	for _, u := range users {
		switch access.Role(u.Role) {
		case access.RoleSupervisor:
			members, err := h.Team.Members(ctx, u.ID)
			if err != nil {
				h.serverError(w, r, "load team", err)
				return
			}
			teams = append(teams, supervisorTeam{Supervisor: u, Members: members})
		case access.RoleAdvisor:
			if !u.Banned {
				advisors = append(advisors, u)
			}
		}
	}

	h.renderStatus(w, r, status, "admin_teams.html", map[string]interface{}{
		"Title":    "Equipos",
		"Teams":    teams,
		"Advisors": advisors,
		"Error":    errMsg,
	})
}

// Assignments handles both directions of the supervisor/advisor link; op=remove unlinks.
func (h *AdminHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	supervisorID := r.PostForm.Get("supervisor_id")
	advisorID := r.PostForm.Get("advisor_id")

	var res actions.Result
	if r.PostForm.Get("op") == "remove" {
		res = h.Actions.AdminRemoveAdvisor(r.Context(), h.session(r), supervisorID, advisorID)
	} else {
		res = h.Actions.AdminAssignAdvisor(r.Context(), h.session(r), supervisorID, advisorID)
	}
	if !res.Success {
		h.renderAssignments(w, r, resultStatus(res), res.Error)
		return
	}
	http.Redirect(w, r, "/admin/assignments?saved=1", http.StatusFound)
}

// Settings

func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	h.renderSettings(w, r, http.StatusOK, map[string]interface{}{})
}

func (h *AdminHandler) renderSettings(w http.ResponseWriter, r *http.Request, status int, data map[string]interface{}) {
	ctx := r.Context()
	operators, err := h.Catalog.Operators(ctx, false)
	if err != nil {
		h.serverError(w, r, "list operators", err)
		return
	}
	agencies, err := h.Catalog.Agencies(ctx, false)
	if err != nil {
		h.serverError(w, r, "list agencies", err)
		return
	}
	for _, key := range []string{"FailedForm", "FailedID"} {
		if _, ok := data[key]; !ok {
			data[key] = ""
		}
	}
	data["Title"] = "Configuración"
	data["Operators"] = operators
	data["Agencies"] = agencies
	h.renderStatus(w, r, status, "admin_settings.html", data)
}

// settingsAction parses the form, runs the mutation and tags a failure with the form it came from.
func (h *AdminHandler) settingsAction(w http.ResponseWriter, r *http.Request, formName string, run func() actions.Result) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	res := run()
	if res.Success {
		http.Redirect(w, r, "/admin/settings?saved=1", http.StatusFound)
		return
	}
	status := resultStatus(res)
	if res.Error == actions.MsgOperatorNotFound || res.Error == actions.MsgAgencyNotFound {
		status = http.StatusNotFound
	}
	h.renderSettings(w, r, status, formData(map[string]interface{}{
		"FailedForm": formName,
		"FailedID":   chi.URLParam(r, "id"),
	}, r, res))
}

func (h *AdminHandler) CreateOperator(w http.ResponseWriter, r *http.Request) {
	h.settingsAction(w, r, "operator", func() actions.Result {
		return h.Actions.CreateOperator(r.Context(), h.session(r), r.PostForm)
	})
}

func (h *AdminHandler) UpdateOperator(w http.ResponseWriter, r *http.Request) {
	h.settingsAction(w, r, "operator", func() actions.Result {
		id, ok := pathID(r)
		if !ok {
			return actions.Result{Error: actions.MsgOperatorNotFound}
		}
		return h.Actions.UpdateOperator(r.Context(), h.session(r), id, r.PostForm)
	})
}

func (h *AdminHandler) ToggleOperator(w http.ResponseWriter, r *http.Request) {
	h.settingsAction(w, r, "operator", func() actions.Result {
		id, ok := pathID(r)
		if !ok {
			return actions.Result{Error: actions.MsgOperatorNotFound}
		}
		return h.Actions.SetOperatorActive(r.Context(), h.session(r), id, forms.ParseActive(r.PostForm))
	})
}

func (h *AdminHandler) CreateAgency(w http.ResponseWriter, r *http.Request) {
	h.settingsAction(w, r, "agency", func() actions.Result {
		return h.Actions.CreateAgency(r.Context(), h.session(r), r.PostForm)
	})
}

func (h *AdminHandler) UpdateAgency(w http.ResponseWriter, r *http.Request) {
	h.settingsAction(w, r, "agency", func() actions.Result {
		id, ok := pathID(r)
		if !ok {
			return actions.Result{Error: actions.MsgAgencyNotFound}
		}
		return h.Actions.UpdateAgency(r.Context(), h.session(r), id, r.PostForm)
	})
}

func (h *AdminHandler) ToggleAgency(w http.ResponseWriter, r *http.Request) {
	h.settingsAction(w, r, "agency", func() actions.Result {
		id, ok := pathID(r)
		if !ok {
			return actions.Result{Error: actions.MsgAgencyNotFound}
		}
		return h.Actions.SetAgencyActive(r.Context(), h.session(r), id, forms.ParseActive(r.PostForm))
	})
}
