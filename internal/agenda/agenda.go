// Package agenda decides which pending leads an advisor should call today:
// overdue ones first, then today's leads grouped by preferred time of day.
package agenda

import (
	"sort"
	"time"

	"winsales/internal/models"
	"winsales/internal/util"
)

type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
	SlotAny       TimeSlot = "any"
)

// SlotOrder is the display order of today's buckets.
var SlotOrder = []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening, SlotAny}

type SlotConfig struct {
	Label       string
	Description string
	Start       int
	End         int
}

var Slots = map[TimeSlot]SlotConfig{
	SlotMorning:   {Label: "Mañana", Description: "8:00 - 12:00", Start: 8, End: 12},
	SlotAfternoon: {Label: "Tarde", Description: "12:00 - 18:00", Start: 12, End: 18},
	SlotEvening:   {Label: "Noche", Description: "18:00 - 21:00", Start: 18, End: 21},
	SlotAny:       {Label: "Cualquier horario", Description: "Flexible", Start: 8, End: 21},
}

// ParseSlot maps a stored time preference to a bucket. Unset or unknown values mean "any".
func ParseSlot(s string) TimeSlot {
	switch TimeSlot(s) {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return TimeSlot(s)
	default:
		return SlotAny
	}
}

// ValidPreference reports whether s may be stored as a contact time preference.
func ValidPreference(s string) bool {
	_, ok := Slots[TimeSlot(s)]
	return ok
}

type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "critical"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyNormal   UrgencyLevel = "normal"
)

// Policy thresholds in days past the contact date.
const (
	CriticalAfterDays = 3
	HighAfterDays     = 1
)

func UrgencyFor(daysOverdue int) UrgencyLevel {
	switch {
	case daysOverdue >= CriticalAfterDays:
		return UrgencyCritical
	case daysOverdue >= HighAfterDays:
		return UrgencyHigh
	default:
		return UrgencyNormal
	}
}

func (u UrgencyLevel) Label() string {
	switch u {
	case UrgencyCritical:
		return "Urgente"
	case UrgencyHigh:
		return "Vencido"
	default:
		return ""
	}
}

// DaysOverdue is max(0, today - contactDate) in whole calendar days.
func DaysOverdue(today, contactDate time.Time) int {
	days := util.DaysBetween(contactDate, today)
	if days < 0 {
		return 0
	}
	return days
}

type Entry struct {
	Lead        models.Lead
	IsOverdue   bool
	DaysOverdue int
	Urgency     UrgencyLevel
}

type Agenda struct {
	Date       time.Time
	Overdue    []Entry
	Slots      map[TimeSlot][]Entry
	TotalCount int
}

// SlotEntries returns today's entries for slot in display order.
func (a Agenda) SlotEntries(slot TimeSlot) []Entry {
	return a.Slots[slot]
}

func (a Agenda) TodayCount() int {
	n := 0
	for _, entries := range a.Slots {
		n += len(entries)
	}
	return n
}

// Build partitions pending leads relative to today. Leads dated after today or already
// converted are skipped.
func Build(today time.Time, leads []models.Lead) Agenda {
	a := Agenda{
		Date:  today,
		Slots: make(map[TimeSlot][]Entry, len(SlotOrder)),
	}
	for _, slot := range SlotOrder {
		a.Slots[slot] = []Entry{}
	}

	for _, lead := range leads {
		if lead.Status == models.LeadStatusConverted {
			continue
		}
		diff := util.DaysBetween(lead.ContactDate, today)
		if diff < 0 {
			continue
		}

		entry := Entry{
			Lead:        lead,
			IsOverdue:   diff > 0,
			DaysOverdue: diff,
			Urgency:     UrgencyFor(diff),
		}
		a.TotalCount++

		if entry.IsOverdue {
			a.Overdue = append(a.Overdue, entry)
			continue
		}
		slot := ParseSlot(lead.ContactTimePreference.String)
		a.Slots[slot] = append(a.Slots[slot], entry)
	}

	sort.SliceStable(a.Overdue, func(i, j int) bool {
		x, y := a.Overdue[i], a.Overdue[j]
		if x.DaysOverdue != y.DaysOverdue {
			return x.DaysOverdue > y.DaysOverdue
		}
		if !x.Lead.ContactDate.Equal(y.Lead.ContactDate) {
			return x.Lead.ContactDate.Before(y.Lead.ContactDate)
		}
		return x.Lead.CreatedAt.Before(y.Lead.CreatedAt)
	})

	return a
}
