// Package handlers serves the server-rendered pages and the small JSON API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/actions"
	"winsales/internal/agenda"
	"winsales/internal/cache"
	"winsales/internal/config"
	"winsales/internal/forms"
	"winsales/internal/middleware"
	"winsales/internal/models"
)

type LeadReader interface {
	List(ctx context.Context, scope models.LeadScope) ([]models.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	GetByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Lead, error)
	CountsByUser(ctx context.Context, userID string) (models.LeadCounts, error)
}

type SaleReader interface {
	List(ctx context.Context, scope models.LeadScope, filter models.SaleFilter) ([]models.Sale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	GetByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Sale, error)
	Stats(ctx context.Context, today time.Time) (models.SaleStats, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type TeamReader interface {
	Members(ctx context.Context, supervisorID string) ([]models.TeamMember, error)
	Unassigned(ctx context.Context, supervisorID string) ([]models.TeamMember, error)
	Stats(ctx context.Context, supervisorID string, today time.Time) (models.TeamStats, error)
}

type CatalogReader interface {
	Operators(ctx context.Context, activeOnly bool) ([]models.Operator, error)
	Plans(ctx context.Context) ([]models.Plan, error)
	Agencies(ctx context.Context, activeOnly bool) ([]models.Agency, error)
	ReferralSources(ctx context.Context) ([]models.ReferralSource, error)
	States(ctx context.Context) ([]models.State, error)
	Cities(ctx context.Context, stateID uuid.UUID) ([]models.City, error)
	Districts(ctx context.Context, cityID uuid.UUID) ([]models.District, error)
}

type AgendaSource interface {
	ForUser(ctx context.Context, userID string) (agenda.Agenda, error)
	ForSupervisor(ctx context.Context, supervisorID string) (agenda.Agenda, error)
	ForAll(ctx context.Context) (agenda.Agenda, error)
	CurrentSlot() agenda.SlotState
}

// Pinger is a dependency reported by /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps is everything the HTTP layer needs. Readers serve pages; every write goes through Actions.
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Gate        *middleware.Gate
	Actions     *actions.Actions
	Agenda      AgendaSource
	Leads       LeadReader
	Sales       SaleReader
	Users       UserReader
	Team        TeamReader
	Catalog     CatalogReader
	Cache       cache.Cache
	Revalidator *cache.Revalidator
	Health      map[string]Pinger
	Renderer    *Renderer
}

// base carries the helpers every handler struct shares.
type base struct {
	Deps
}

func (b *base) session(r *http.Request) *access.Session {
	return middleware.SessionFrom(r.Context())
}

func (b *base) render(w http.ResponseWriter, r *http.Request, page string, data map[string]interface{}) {
	b.Renderer.Render(w, r, http.StatusOK, page, data)
}

func (b *base) renderStatus(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]interface{}) {
	b.Renderer.Render(w, r, status, page, data)
}

func (b *base) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	b.Logger.Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
	b.renderStatus(w, r, http.StatusInternalServerError, "error.html", map[string]interface{}{
		"Title":   "Error",
		"Message": "Ocurrió un error inesperado. Inténtalo nuevamente.",
	})
}

func (b *base) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	b.renderStatus(w, r, http.StatusNotFound, "error.html", map[string]interface{}{
		"Title":   "No encontrado",
		"Message": msg,
	})
}

func (b *base) today() time.Time {
	return time.Now().In(b.Config.Location())
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := forms.ParseID(chi.URLParam(r, "id"))
	return id, err == nil
}

// flash maps the query flags set by post-redirect-get to a message.
func flash(r *http.Request) string {
	q := r.URL.Query()
	switch {
	case q.Get("saved") == "1":
		return "Cambios guardados"
	case q.Get("created") == "1":
		return "Registro creado"
	case q.Get("deleted") == "1":
		return "Registro eliminado"
	}
	return ""
}

// formData merges a failed Result into the page data so the form re-renders with its errors.
func formData(data map[string]interface{}, r *http.Request, res actions.Result) map[string]interface{} {
	data["Error"] = res.Error
	data["FieldErrors"] = res.FieldErrors()
	data["Form"] = r.PostForm
	return data
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode JSON response", zap.Error(err))
	}
}

func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
