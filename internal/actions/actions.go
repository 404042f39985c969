// Package actions holds every authorized mutation. Each action takes the acting session
// explicitly and reports its outcome as a Result instead of an error.
package actions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"winsales/internal/forms"
	"winsales/internal/metrics"
	"winsales/internal/models"
	"winsales/internal/notify"
	"winsales/internal/util"
)

const (
	MsgUnauthorized = "No autorizado"
	MsgEmptyPatch   = "No hay campos para actualizar"
	MsgInvalidForm  = "Revisa los campos marcados"
)

// Result is what handlers render after a mutation.
type Result struct {
	Success bool
	ID      string
	Error   string
	Fields  forms.Errors
}

func ok(id string) Result {
	return Result{Success: true, ID: id}
}

func fail(msg string) Result {
	return Result{Error: msg}
}

// FieldErrors returns field -> message for templates.
func (r Result) FieldErrors() map[string]string {
	return r.Fields.Map()
}

type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	OwnerOf(ctx context.Context, id uuid.UUID) (string, error)
	Create(ctx context.Context, in models.LeadInput) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, patch models.LeadPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SaleStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	OwnerOf(ctx context.Context, id uuid.UUID) (string, error)
	CreateFromLead(ctx context.Context, in models.SaleInput) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, patch models.SalePatch) error
	Review(ctx context.Context, id uuid.UUID, patch models.BackofficePatch, reviewerID string) error
}

type TeamStore interface {
	Assign(ctx context.Context, supervisorID, advisorID string) error
	Remove(ctx context.Context, supervisorID, advisorID string) error
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	PasswordHash(ctx context.Context, userID string) (string, error)
	Create(ctx context.Context, name, email, role, passwordHash string) (string, error)
	SetRole(ctx context.Context, id, role string) error
	SetBanned(ctx context.Context, id string, banned bool, reason string) error
	Update(ctx context.Context, id, name, email string, agencyID uuid.NullUUID) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type CatalogStore interface {
	CreateOperator(ctx context.Context, name, code, logoURL string) (uuid.UUID, error)
	UpdateOperator(ctx context.Context, id uuid.UUID, name, code, logoURL string) error
	SetOperatorActive(ctx context.Context, id uuid.UUID, active bool) error
	CreateAgency(ctx context.Context, name, city, address string) (uuid.UUID, error)
	UpdateAgency(ctx context.Context, id uuid.UUID, name, city, address string) error
	SetAgencyActive(ctx context.Context, id uuid.UUID, active bool) error
}

type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

type Deps struct {
	Leads       LeadStore
	Sales       SaleStore
	Team        TeamStore
	Users       UserStore
	Catalog     CatalogStore
	Revalidator Revalidator
	Notifier    notify.Notifier
	Logger      *zap.Logger
	Location    *time.Location
}

type Actions struct {
	leads    LeadStore
	sales    SaleStore
	team     TeamStore
	users    UserStore
	catalog  CatalogStore
	reval    Revalidator
	notifier notify.Notifier
	log      *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

type noRevalidation struct{}

func (noRevalidation) Revalidate(context.Context, ...string) {}

func New(d Deps) *Actions {
	a := &Actions{
		leads:    d.Leads,
		sales:    d.Sales,
		team:     d.Team,
		users:    d.Users,
		catalog:  d.Catalog,
		reval:    d.Revalidator,
		notifier: d.Notifier,
		log:      d.Logger,
		loc:      d.Location,
		now:      time.Now,
	}
	if a.reval == nil {
		a.reval = noRevalidation{}
	}
	if a.notifier == nil {
		a.notifier = notify.Noop{}
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.loc == nil {
		a.loc = time.Local
	}
	return a
}

func (a *Actions) today() time.Time {
	return util.StartOfDay(a.now(), a.loc)
}

// internal logs an unexpected store error and returns the user-facing message.
func (a *Actions) internal(action string, err error, msg string, fields ...zap.Field) Result {
	metrics.RecordActionError(action)
	a.log.Error(action+" failed", append(fields, zap.Error(err))...)
	return fail(msg)
}

func invalid(err error) Result {
	var fe forms.Errors
	if errors.As(err, &fe) {
		return Result{Error: MsgInvalidForm, Fields: fe}
	}
	return fail(MsgInvalidForm)
}

func (a *Actions) notify(ctx context.Context, e notify.Event) {
	e.OccurredAt = a.now()
	if err := a.notifier.Notify(ctx, e); err != nil {
		a.log.Warn("event not delivered", zap.String("event", string(e.Type)), zap.Error(err))
	}
}
