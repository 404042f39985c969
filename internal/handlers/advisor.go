package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"winsales/internal/access"
	"winsales/internal/actions"
	"winsales/internal/agenda"
	"winsales/internal/models"
)

// AdvisorHandler serves /dashboard: the advisor's own leads, agenda and sales.
type AdvisorHandler struct {
	base
}

func NewAdvisorHandler(d Deps) *AdvisorHandler {
	return &AdvisorHandler{base{d}}
}

// resultStatus picks the response code for a failed action re-rendered in place.
func resultStatus(res actions.Result) int {
	switch res.Error {
	case actions.MsgUnauthorized, actions.MsgLeadEditDenied, actions.MsgLeadDeleteDenied, actions.MsgSaleEditDenied:
		return http.StatusForbidden
	case actions.MsgLeadNotFound, actions.MsgSaleNotFound:
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}

func (b *base) leadFor(ctx context.Context, s *access.Session, id uuid.UUID) (*models.Lead, error) {
	if s.IsAdmin() {
		return b.Leads.GetByID(ctx, id)
	}
	return b.Leads.GetByIDForUser(ctx, id, s.UserID)
}

func (b *base) saleFor(ctx context.Context, s *access.Session, id uuid.UUID) (*models.Sale, error) {
	if s.IsAdmin() {
		return b.Sales.GetByID(ctx, id)
	}
	return b.Sales.GetByIDForUser(ctx, id, s.UserID)
}

func (h *AdvisorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	ctx := r.Context()

	counts, err := h.Leads.CountsByUser(ctx, s.UserID)
	if err != nil {
		h.serverError(w, r, "load lead counts", err)
		return
	}
	a, err := h.Agenda.ForUser(ctx, s.UserID)
	if err != nil {
		h.serverError(w, r, "load agenda", err)
		return
	}

	h.render(w, r, "dashboard.html", map[string]interface{}{
		"Title":          "Inicio",
		"Counts":         counts,
		"ConversionRate": counts.ConversionRate(),
		"Agenda":         a,
		"SlotOrder":      agenda.SlotOrder,
		"Slot":           h.Agenda.CurrentSlot(),
	})
}

func (h *AdvisorHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	h.renderLeads(w, r, "")
}

func (h *AdvisorHandler) renderLeads(w http.ResponseWriter, r *http.Request, errMsg string) {
	s := h.session(r)
	leads, err := h.Leads.List(r.Context(), models.ScopeUser(s.UserID))
	if err != nil {
		h.serverError(w, r, "list leads", err)
		return
	}
	status := http.StatusOK
	if errMsg != "" {
		status = http.StatusUnprocessableEntity
	}
	h.renderStatus(w, r, status, "leads.html", map[string]interface{}{
		"Title":    "Mis leads",
		"Leads":    leads,
		"BasePath": "/dashboard/leads",
		"CanEdit":  true,
		"CanSell":  true,
		"Error":    errMsg,
	})
}

func (h *AdvisorHandler) NewLead(w http.ResponseWriter, r *http.Request) {
	h.renderLeadForm(w, r, http.StatusOK, nil, map[string]interface{}{})
}

func (h *AdvisorHandler) renderLeadForm(w http.ResponseWriter, r *http.Request, status int, lead *models.Lead, data map[string]interface{}) {
	h.leadForm(w, r, status, "/dashboard/leads", lead, data)
}

// leadForm renders lead_form.html posting back under basePath.
func (b *base) leadForm(w http.ResponseWriter, r *http.Request, status int, basePath string, lead *models.Lead, data map[string]interface{}) {
	if err := b.leadFormData(r.Context(), data); err != nil {
		b.serverError(w, r, "load lead form options", err)
		return
	}
	data["Lead"] = lead
	if _, ok := data["Form"]; !ok && lead != nil {
		data["Form"] = leadValues(lead)
	}
	if lead == nil {
		data["Title"] = "Nuevo lead"
		data["Action"] = basePath + "/new"
	} else {
		data["Title"] = "Editar lead"
		data["Action"] = basePath + "/" + lead.ID.String() + "/edit"
	}
	data["Cancel"] = basePath
	b.renderStatus(w, r, status, "lead_form.html", data)
}

// leadValues prefills the edit form with the stored lead.
func leadValues(l *models.Lead) url.Values {
	v := url.Values{
		"full_name":               {l.FullName},
		"dni":                     {l.DNI},
		"phone":                   {l.Phone},
		"contact_date":            {l.ContactDate.Format("2006-01-02")},
		"contact_time_preference": {l.ContactTimePreference.String},
		"current_operator":        {l.CurrentOperator.String},
		"notes":                   {l.Notes.String},
		"address":                 {l.Address.String},
		"reference":               {l.Reference.String},
	}
	if l.ReferralSourceID.Valid {
		v.Set("referral_source_id", l.ReferralSourceID.UUID.String())
	}
	if l.OperatorID.Valid {
		v.Set("operator_id", l.OperatorID.UUID.String())
	}
	if l.DistrictID.Valid {
		v.Set("district_id", l.DistrictID.UUID.String())
	}
	if l.Latitude.Valid {
		v.Set("latitude", strconv.FormatFloat(l.Latitude.Float64, 'f', -1, 64))
	}
	if l.Longitude.Valid {
		v.Set("longitude", strconv.FormatFloat(l.Longitude.Float64, 'f', -1, 64))
	}
	return v
}

func (h *AdvisorHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	res := h.Actions.CreateLead(r.Context(), h.session(r), r.PostForm)
	if !res.Success {
		h.renderLeadForm(w, r, resultStatus(res), nil, formData(map[string]interface{}{}, r, res))
		return
	}
	http.Redirect(w, r, "/dashboard/leads?created=1", http.StatusFound)
}

func (h *AdvisorHandler) EditLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	lead, err := h.leadFor(r.Context(), h.session(r), id)
	if errors.Is(err, models.ErrNotFound) {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, "load lead", err)
		return
	}
	h.renderLeadForm(w, r, http.StatusOK, lead, map[string]interface{}{})
}

func (h *AdvisorHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	s := h.session(r)
	res := h.Actions.UpdateLead(r.Context(), s, id, r.PostForm)
	if res.Success {
		http.Redirect(w, r, "/dashboard/leads?saved=1", http.StatusFound)
		return
	}

	lead, err := h.leadFor(r.Context(), s, id)
	if err != nil {
		h.renderStatus(w, r, resultStatus(res), "error.html", map[string]interface{}{"Title": "Error", "Message": res.Error})
		return
	}
	h.renderLeadForm(w, r, resultStatus(res), lead, formData(map[string]interface{}{}, r, res))
}

func (h *AdvisorHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	res := h.Actions.DeleteLead(r.Context(), h.session(r), id)
	if !res.Success {
		h.renderLeads(w, r, res.Error)
		return
	}
	http.Redirect(w, r, "/dashboard/leads?deleted=1", http.StatusFound)
}

func (h *AdvisorHandler) ShowAgenda(w http.ResponseWriter, r *http.Request) {
	a, err := h.Agenda.ForUser(r.Context(), h.session(r).UserID)
	if err != nil {
		h.serverError(w, r, "load agenda", err)
		return
	}
	h.render(w, r, "agenda.html", map[string]interface{}{
		"Title":     "Agenda",
		"Agenda":    a,
		"SlotOrder": agenda.SlotOrder,
		"Slot":      h.Agenda.CurrentSlot(),
		"LeadPath":  "/dashboard/leads",
	})
}

func (h *AdvisorHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Sales.List(r.Context(), models.ScopeUser(h.session(r).UserID), models.SaleFilter{})
	if err != nil {
		h.serverError(w, r, "list sales", err)
		return
	}
	h.render(w, r, "sales.html", map[string]interface{}{
		"Title":    "Mis ventas",
		"Sales":    sales,
		"BasePath": "/dashboard/sales",
	})
}

// NewSale renders the sale form prefilled from the lead given by ?leadId=.
func (h *AdvisorHandler) NewSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("leadId"))
	if err != nil {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	lead, err := h.leadFor(r.Context(), h.session(r), id)
	if errors.Is(err, models.ErrNotFound) {
		h.notFound(w, r, actions.MsgLeadNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, "load lead", err)
		return
	}

	data := map[string]interface{}{}
	if lead.Status == models.LeadStatusConverted {
		data["Error"] = actions.MsgLeadConverted
	}
	h.renderSaleForm(w, r, http.StatusOK, lead, data)
}

func (h *AdvisorHandler) renderSaleForm(w http.ResponseWriter, r *http.Request, status int, lead *models.Lead, data map[string]interface{}) {
	if err := h.saleFormData(r.Context(), data); err != nil {
		h.serverError(w, r, "load sale form options", err)
		return
	}
	data["Title"] = "Registrar venta"
	data["Lead"] = lead
	data["Action"] = "/dashboard/sales/new"
	if _, ok := data["Form"]; !ok && lead != nil {
		data["Form"] = url.Values{
			"lead_id":   {lead.ID.String()},
			"full_name": {lead.FullName},
			"dni":       {lead.DNI},
			"phone":     {lead.Phone},
			"address":   {lead.Address.String},
			"reference": {lead.Reference.String},
			"district":  {lead.DistrictName.String},
			"province":  {lead.CityName.String},
		}
	}
	h.renderStatus(w, r, status, "sale_form.html", data)
}

func (h *AdvisorHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	s := h.session(r)
	res := h.Actions.CreateSale(r.Context(), s, r.PostForm)
	if res.Success {
		http.Redirect(w, r, "/dashboard/sales/"+res.ID+"?created=1", http.StatusFound)
		return
	}

	var lead *models.Lead
	if id, err := uuid.Parse(r.PostForm.Get("lead_id")); err == nil {
		lead, _ = h.leadFor(r.Context(), s, id)
	}
	h.renderSaleForm(w, r, resultStatus(res), lead, formData(map[string]interface{}{}, r, res))
}

func (h *AdvisorHandler) SaleDetail(w http.ResponseWriter, r *http.Request) {
	h.renderSaleDetail(w, r, http.StatusOK, map[string]interface{}{})
}

func (h *AdvisorHandler) renderSaleDetail(w http.ResponseWriter, r *http.Request, status int, data map[string]interface{}) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, actions.MsgSaleNotFound)
		return
	}
	s := h.session(r)
	sale, err := h.saleFor(r.Context(), s, id)
	if errors.Is(err, models.ErrNotFound) {
		h.notFound(w, r, actions.MsgSaleNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, "load sale", err)
		return
	}
	if err := h.saleFormData(r.Context(), data); err != nil {
		h.serverError(w, r, "load sale form options", err)
		return
	}
	if _, ok := data["Form"]; !ok {
		data["Form"] = saleValues(sale)
	}
	data["Title"] = "Venta de " + sale.FullName
	data["Sale"] = sale
	data["CanEdit"] = access.CanMutate(sale.UserID, s)
	data["Action"] = "/dashboard/sales/" + sale.ID.String()
	h.renderStatus(w, r, status, "sale_detail.html", data)
}

// saleValues prefills the sale form with the stored sale.
func saleValues(s *models.Sale) url.Values {
	v := url.Values{
		"full_name":        {s.FullName},
		"dni":              {s.DNI},
		"birth_place":      {s.BirthPlace.String},
		"email":            {s.Email.String},
		"phone":            {s.Phone},
		"is_phone_owner":   {strconv.FormatBool(!s.PhoneOwnerName.Valid)},
		"phone_owner_name": {s.PhoneOwnerName.String},
		"phone_owner_dni":  {s.PhoneOwnerDNI.String},
		"address":          {s.Address},
		"address_type":     {string(s.AddressType)},
		"reference":        {s.Reference.String},
		"district":         {s.District},
		"province":         {s.Province},
		"department":       {s.Department},
		"plan_id":          {s.PlanID.String()},
		"price":            {s.Price.StringFixed(2)},
	}
	dates := map[string]sql.NullTime{
		"dni_expiry_date":   s.DNIExpiryDate,
		"birth_date":        s.BirthDate,
		"installation_date": s.InstallationDate,
	}
	for key, d := range dates {
		if d.Valid {
			v.Set(key, d.Time.Format("2006-01-02"))
		}
	}
	if s.Latitude.Valid {
		v.Set("latitude", strconv.FormatFloat(s.Latitude.Float64, 'f', -1, 64))
	}
	if s.Longitude.Valid {
		v.Set("longitude", strconv.FormatFloat(s.Longitude.Float64, 'f', -1, 64))
	}
	if s.Score.Valid {
		v.Set("score", strconv.Itoa(int(s.Score.Int32)))
	}
	if s.OperatorID.Valid {
		v.Set("operator_id", s.OperatorID.UUID.String())
	}
	return v
}

func (h *AdvisorHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, actions.MsgSaleNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	res := h.Actions.UpdateSale(r.Context(), h.session(r), id, r.PostForm)
	if res.Success {
		http.Redirect(w, r, "/dashboard/sales/"+id.String()+"?saved=1", http.StatusFound)
		return
	}
	h.renderSaleDetail(w, r, resultStatus(res), formData(map[string]interface{}{}, r, res))
}
