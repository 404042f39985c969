package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"winsales/internal/actions"
	"winsales/internal/cache"
	"winsales/internal/models"
	"winsales/internal/report"
	"winsales/internal/util"
)

// BackofficeHandler serves /dashboard/backoffice: validation of every advisor's sales.
type BackofficeHandler struct {
	base
}

func NewBackofficeHandler(d Deps) *BackofficeHandler {
	return &BackofficeHandler{base{d}}
}

const backofficePath = "/dashboard/backoffice"

func (h *BackofficeHandler) stats(r *http.Request) (models.SaleStats, error) {
	ctx := r.Context()
	today := h.today()
	if h.Cache == nil || h.Revalidator == nil {
		return h.Sales.Stats(ctx, today)
	}
	key := h.Revalidator.Key(ctx, backofficePath, "stats:"+today.Format(util.DateLayout))
	return cache.GetJSON(ctx, h.Cache, key, time.Minute, func(ctx context.Context) (models.SaleStats, error) {
		return h.Sales.Stats(ctx, today)
	})
}

func (h *BackofficeHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats(r)
	if err != nil {
		h.serverError(w, r, "load sale stats", err)
		return
	}
	pending, err := h.Sales.List(r.Context(), models.ScopeAll, models.SaleFilter{RequestStatus: models.RequestPending})
	if err != nil {
		h.serverError(w, r, "list pending sales", err)
		return
	}
	h.render(w, r, "backoffice.html", map[string]interface{}{
		"Title":   "Backoffice",
		"Stats":   stats,
		"Pending": pending,
	})
}

func (h *BackofficeHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.List(r.Context(), models.ScopeAll)
	if err != nil {
		h.serverError(w, r, "list leads", err)
		return
	}
	h.render(w, r, "leads.html", map[string]interface{}{
		"Title":       "Todos los leads",
		"Leads":       leads,
		"ShowAdvisor": true,
	})
}

// statusFilter reads ?status=; unknown values mean no filter.
func statusFilter(r *http.Request) models.SaleFilter {
	status := r.URL.Query().Get("status")
	if models.ValidRequestStatus(status) {
		return models.SaleFilter{RequestStatus: models.RequestStatus(status)}
	}
	return models.SaleFilter{}
}

func (h *BackofficeHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	filter := statusFilter(r)
	sales, err := h.Sales.List(r.Context(), models.ScopeAll, filter)
	if err != nil {
		h.serverError(w, r, "list sales", err)
		return
	}
	h.render(w, r, "sales.html", map[string]interface{}{
		"Title":        "Ventas",
		"Sales":        sales,
		"ShowAdvisor":  true,
		"BasePath":     "/dashboard/backoffice/sales",
		"StatusFilter": string(filter.RequestStatus),
		"Statuses":     models.RequestStatuses,
		"CanExport":    true,
	})
}

func (h *BackofficeHandler) ShowSale(w http.ResponseWriter, r *http.Request) {
	h.renderReview(w, r, http.StatusOK, map[string]interface{}{})
}

func (h *BackofficeHandler) renderReview(w http.ResponseWriter, r *http.Request, status int, data map[string]interface{}) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, actions.MsgSaleNotFound)
		return
	}
	sale, err := h.Sales.GetByID(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		h.notFound(w, r, actions.MsgSaleNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, "load sale", err)
		return
	}
	data["Title"] = "Revisión de venta"
	data["Sale"] = sale
	data["RequestStatuses"] = models.RequestStatuses
	data["OrderStatuses"] = models.OrderStatuses
	data["Metadata"] = string(sale.OperatorMetadata)
	h.renderStatus(w, r, status, "sale_review.html", data)
}

func (h *BackofficeHandler) ReviewSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, actions.MsgSaleNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	res := h.Actions.ReviewSale(r.Context(), h.session(r), id, r.PostForm)
	if res.Success {
		http.Redirect(w, r, "/dashboard/backoffice/sales/"+id.String()+"?saved=1", http.StatusFound)
		return
	}
	h.renderReview(w, r, resultStatus(res), formData(map[string]interface{}{}, r, res))
}

// Export downloads the (optionally status-filtered) sales as an XLSX workbook.
func (h *BackofficeHandler) Export(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Sales.List(r.Context(), models.ScopeAll, statusFilter(r))
	if err != nil {
		h.serverError(w, r, "list sales for export", err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteSalesXLSX(&buf, sales, h.Config.Location()); err != nil {
		h.serverError(w, r, "build sales export", err)
		return
	}

	h.Logger.Info("sales exported", zap.Int("rows", len(sales)), zap.String("user_id", h.session(r).UserID))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.SalesFilename(h.today())+`"`)
	_, _ = buf.WriteTo(w)
}
