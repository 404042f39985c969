package actions

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/forms"
	"winsales/internal/metrics"
	"winsales/internal/models"
	"winsales/internal/notify"
)

const (
	MsgSaleNotFound    = "Venta no encontrada"
	MsgSaleEditDenied  = "No tienes permiso para editar esta venta"
	MsgSaleCreateError = "Error al crear la venta"
	MsgSaleUpdateError = "Error al actualizar la venta"
	MsgLeadConverted   = "El lead ya fue convertido"
)

var salePaths = []string{"/dashboard", "/dashboard/sales", "/dashboard/leads", "/dashboard/agenda", "/dashboard/backoffice", "/dashboard/supervisor"}

// CreateSale converts a lead into a sale. The sale belongs to the lead's owner, and the
// lead flips to converted in the same transaction.
func (a *Actions) CreateSale(ctx context.Context, s *access.Session, values url.Values) Result {
	if s == nil {
		return fail(MsgUnauthorized)
	}

	in, err := forms.ParseSaleForm(values, a.loc)
	if err != nil {
		return invalid(err)
	}
	if !in.LeadID.Valid {
		return Result{Error: MsgInvalidForm, Fields: forms.Errors{{Field: "lead_id", Message: MsgLeadNotFound}}}
	}

	lead, err := a.leads.GetByID(ctx, in.LeadID.UUID)
	if errors.Is(err, models.ErrNotFound) {
		return fail(MsgLeadNotFound)
	}
	if err != nil {
		return a.internal("create_sale", err, MsgSaleCreateError, zap.Stringer("lead_id", in.LeadID.UUID))
	}
	if !access.CanMutate(lead.UserID, s) {
		return fail(MsgLeadEditDenied)
	}
	if lead.Status == models.LeadStatusConverted {
		return fail(MsgLeadConverted)
	}
	in.UserID = lead.UserID

	id, err := a.sales.CreateFromLead(ctx, in)
	switch {
	case errors.Is(err, models.ErrLeadConverted):
		return fail(MsgLeadConverted)
	case err != nil:
		return a.internal("create_sale", err, MsgSaleCreateError, zap.Stringer("lead_id", lead.ID))
	}

	metrics.RecordSaleCreated()
	a.reval.Revalidate(ctx, salePaths...)
	a.notify(ctx, notify.Event{
		Type:         notify.SaleCreated,
		SaleID:       id.String(),
		LeadID:       lead.ID.String(),
		CustomerName: in.FullName,
		AdvisorID:    lead.UserID,
		AdvisorName:  lead.UserName.String,
		ActorID:      s.UserID,
	})
	return ok(id.String())
}

func (a *Actions) UpdateSale(ctx context.Context, s *access.Session, id uuid.UUID, values url.Values) Result {
	if s == nil {
		return fail(MsgUnauthorized)
	}

	owner, err := a.sales.OwnerOf(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return fail(MsgSaleNotFound)
	}
	if err != nil {
		return a.internal("update_sale", err, MsgSaleUpdateError, zap.Stringer("sale_id", id))
	}
	if !access.CanMutate(owner, s) {
		return fail(MsgSaleEditDenied)
	}

	patch, err := forms.ParseSalePatch(values, a.loc)
	if err != nil {
		return invalid(err)
	}
	if patch.IsEmpty() {
		return fail(MsgEmptyPatch)
	}

	err = a.sales.Update(ctx, id, patch)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgSaleNotFound)
	case err != nil:
		return a.internal("update_sale", err, MsgSaleUpdateError, zap.Stringer("sale_id", id))
	}

	a.reval.Revalidate(ctx, salePaths...)
	return ok(id.String())
}

// ReviewSale applies backoffice validation fields. Only backoffice and admin may review.
func (a *Actions) ReviewSale(ctx context.Context, s *access.Session, id uuid.UUID, values url.Values) Result {
	if !s.HasRole(access.RoleBackoffice, access.RoleAdmin) {
		return fail(MsgUnauthorized)
	}

	patch, err := forms.ParseBackofficePatch(values, a.loc)
	if err != nil {
		return invalid(err)
	}
	if patch.IsEmpty() {
		return fail(MsgEmptyPatch)
	}

	err = a.sales.Review(ctx, id, patch, s.UserID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgSaleNotFound)
	case err != nil:
		return a.internal("review_sale", err, MsgSaleUpdateError, zap.Stringer("sale_id", id))
	}

	a.reval.Revalidate(ctx, salePaths...)

	if patch.RequestStatus.Set || patch.OrderStatus.Set {
		sale, err := a.sales.GetByID(ctx, id)
		if err != nil {
			a.log.Warn("reviewed sale not reloaded", zap.Stringer("sale_id", id), zap.Error(err))
			return ok(id.String())
		}
		metrics.RecordSaleReviewed(string(sale.RequestStatus))
		a.notify(ctx, notify.Event{
			Type:            notify.SaleReviewed,
			SaleID:          sale.ID.String(),
			LeadID:          nullUUIDString(sale.LeadID),
			CustomerName:    sale.FullName,
			AdvisorID:       sale.UserID,
			AdvisorName:     sale.UserName.String,
			AdvisorEmail:    sale.UserEmail.String,
			ActorID:         s.UserID,
			RequestStatus:   string(sale.RequestStatus),
			OrderStatus:     string(sale.OrderStatus),
			RejectionReason: sale.RejectionReason.String,
		})
	}
	return ok(id.String())
}

func nullUUIDString(id uuid.NullUUID) string {
	if !id.Valid {
		return ""
	}
	return id.UUID.String()
}
