package agenda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"winsales/internal/models"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestCurrentSlot(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		slot      TimeSlot
		work      bool
		minutes   int
		remaining string
	}{
		{"before opening", at(7, 59), "", false, 0, ""},
		{"opening", at(8, 0), SlotMorning, true, 240, "4h"},
		{"late morning", at(11, 45), SlotMorning, true, 15, "15min"},
		{"noon", at(12, 0), SlotAfternoon, true, 360, "6h"},
		{"mid afternoon", at(15, 30), SlotAfternoon, true, 150, "2h 30min"},
		{"evening at 19", at(19, 0), SlotEvening, true, 120, "2h"},
		{"evening at 19:10", at(19, 10), SlotEvening, true, 110, "1h 50min"},
		{"closing", at(21, 0), "", false, 0, ""},
		{"night", at(23, 30), "", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := CurrentSlot(tt.now)
			assert.Equal(t, tt.slot, st.Slot)
			assert.Equal(t, tt.work, st.IsWorkHours)
			assert.Equal(t, tt.minutes, st.RemainingMinutes)
			assert.Equal(t, tt.remaining, st.RemainingLabel)
		})
	}
}

func TestCurrentSlotIsRecomputedEachCall(t *testing.T) {
	first := CurrentSlot(at(11, 59))
	second := CurrentSlot(at(12, 1))
	assert.Equal(t, SlotMorning, first.Slot)
	assert.Equal(t, SlotAfternoon, second.Slot)
	assert.Equal(t, CurrentSlot(at(11, 59)), first, "same input gives same output")
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "", FormatRemaining(0))
	assert.Equal(t, "", FormatRemaining(-5))
	assert.Equal(t, "1min", FormatRemaining(1))
	assert.Equal(t, "1h", FormatRemaining(60))
	assert.Equal(t, "2h 15min", FormatRemaining(135))
}

type mockLeadLister struct {
	mock.Mock
}

func (m *mockLeadLister) ListPending(ctx context.Context, scope models.LeadScope, date time.Time) ([]models.Lead, error) {
	args := m.Called(ctx, scope, date)
	leads, _ := args.Get(0).([]models.Lead)
	return leads, args.Error(1)
}

func TestServiceForUser(t *testing.T) {
	lister := new(mockLeadLister)
	svc := NewService(lister, time.UTC)
	svc.now = func() time.Time { return today.Add(19 * time.Hour) }

	lister.On("ListPending", mock.Anything, models.ScopeUser("u1"), today).
		Return([]models.Lead{lead(1, ""), lead(0, "evening")}, nil)

	a, err := svc.ForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, a.Overdue, 1)
	assert.Len(t, a.Slots[SlotEvening], 1)
	assert.Equal(t, today, a.Date)
	assert.Equal(t, SlotEvening, svc.CurrentSlot().Slot)
	lister.AssertExpectations(t)
}

func TestServiceScopes(t *testing.T) {
	lister := new(mockLeadLister)
	svc := NewService(lister, time.UTC)
	svc.now = func() time.Time { return today }

	lister.On("ListPending", mock.Anything, models.ScopeTeam("sup"), today).Return(nil, nil)
	lister.On("ListPending", mock.Anything, models.ScopeAll, today).Return(nil, errors.New("boom"))

	a, err := svc.ForSupervisor(context.Background(), "sup")
	require.NoError(t, err)
	assert.Equal(t, 0, a.TotalCount)

	_, err = svc.ForAll(context.Background())
	assert.Error(t, err)
}
