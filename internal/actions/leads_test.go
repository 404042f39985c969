package actions

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"winsales/internal/models"
)

var winOperator = uuid.MustParse("22222222-2222-2222-2222-222222222222")

func leadForm() url.Values {
	return url.Values{"full_name": {"Ana Quispe"}, "phone": {"987654321"}, "operator_id": {winOperator.String()}}
}

func TestCreateLeadRequiresSession(t *testing.T) {
	f := newFixture()
	res := f.actions.CreateLead(context.Background(), nil, leadForm())
	assert.False(t, res.Success)
	assert.Equal(t, "No autorizado", res.Error)
	f.leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLeadValidation(t *testing.T) {
	f := newFixture()
	res := f.actions.CreateLead(context.Background(), advisor, url.Values{"full_name": {"Ana"}})
	assert.False(t, res.Success)
	assert.Equal(t, MsgInvalidForm, res.Error)
	assert.Contains(t, res.FieldErrors(), "phone")
	assert.Contains(t, res.FieldErrors(), "operator_id")
	assert.NotContains(t, res.FieldErrors(), "dni")
	assert.Empty(t, f.reval.paths)
}

func TestCreateLeadOwnedByActorAndDatedToday(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.leads.On("Create", mock.Anything, mock.MatchedBy(func(in models.LeadInput) bool {
		return in.UserID == "adv-1" && in.ContactDate.Format("2006-01-02") == "2026-03-10" &&
			in.OperatorID == uuid.NullUUID{UUID: winOperator, Valid: true} && in.DNI == ""
	})).Return(id, nil)

	res := f.actions.CreateLead(context.Background(), advisor, leadForm())

	assert.True(t, res.Success)
	assert.Equal(t, id.String(), res.ID)
	assert.Contains(t, f.reval.paths, "/dashboard/leads")
	f.leads.AssertExpectations(t)
}

func TestCreateLeadStoreError(t *testing.T) {
	f := newFixture()
	f.leads.On("Create", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("connection reset"))

	res := f.actions.CreateLead(context.Background(), advisor, leadForm())
	assert.Equal(t, "Error al crear el lead", res.Error)
}

func TestUpdateLeadByNonOwnerDoesNotWrite(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.leads.On("OwnerOf", mock.Anything, id).Return("adv-1", nil)

	res := f.actions.UpdateLead(context.Background(), otherAdv, id, url.Values{"notes": {"x"}})

	assert.False(t, res.Success)
	assert.Equal(t, "No tienes permiso para editar este lead", res.Error)
	f.leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.reval.paths)
}

func TestUpdateLeadNotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.leads.On("OwnerOf", mock.Anything, id).Return("", models.ErrNotFound)

	res := f.actions.UpdateLead(context.Background(), advisor, id, url.Values{"notes": {"x"}})
	assert.Equal(t, "Lead no encontrado", res.Error)
}

func TestUpdateLeadEmptyPatch(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.leads.On("OwnerOf", mock.Anything, id).Return("adv-1", nil)

	res := f.actions.UpdateLead(context.Background(), advisor, id, url.Values{"unknown": {"x"}})
	assert.Equal(t, "No hay campos para actualizar", res.Error)
	f.leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLeadOwnerAndAdmin(t *testing.T) {
	for _, actor := range []struct {
		name string
		f    func(*fixture, uuid.UUID) Result
	}{
		{"owner", func(f *fixture, id uuid.UUID) Result {
			return f.actions.UpdateLead(context.Background(), advisor, id, url.Values{"phone": {"911"}})
		}},
		{"admin", func(f *fixture, id uuid.UUID) Result {
			return f.actions.UpdateLead(context.Background(), admin, id, url.Values{"phone": {"911"}})
		}},
	} {
		t.Run(actor.name, func(t *testing.T) {
			f := newFixture()
			id := uuid.New()
			f.leads.On("OwnerOf", mock.Anything, id).Return("adv-1", nil)
			f.leads.On("Update", mock.Anything, id, mock.MatchedBy(func(p models.LeadPatch) bool {
				return p.Phone.Set && p.Phone.Value == "911" && !p.FullName.Set
			})).Return(nil)

			res := actor.f(f, id)
			assert.True(t, res.Success, res.Error)
			f.leads.AssertExpectations(t)
		})
	}
}

func TestAdminUpdateLeadRequiresAdmin(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	res := f.actions.AdminUpdateLead(context.Background(), advisor, id, url.Values{"phone": {"1"}})
	assert.Equal(t, "No autorizado", res.Error)

	f.leads.On("Update", mock.Anything, id, mock.Anything).Return(nil)
	res = f.actions.AdminUpdateLead(context.Background(), admin, id, url.Values{"phone": {"1"}})
	assert.True(t, res.Success)
	f.leads.AssertNotCalled(t, "OwnerOf", mock.Anything, mock.Anything)
}

func TestDeleteLead(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.leads.On("OwnerOf", mock.Anything, id).Return("adv-1", nil)

	res := f.actions.DeleteLead(context.Background(), otherAdv, id)
	assert.Equal(t, "No tienes permiso para eliminar este lead", res.Error)
	f.leads.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	f.leads.On("Delete", mock.Anything, id).Return(nil).Once()
	res = f.actions.DeleteLead(context.Background(), advisor, id)
	assert.True(t, res.Success)

	f.leads.On("Delete", mock.Anything, id).Return(errors.New("fk violation")).Once()
	res = f.actions.DeleteLead(context.Background(), advisor, id)
	assert.Equal(t, "Error al eliminar el lead", res.Error)
}
