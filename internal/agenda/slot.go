package agenda

import (
	"fmt"
	"time"
)

// SlotState describes where the wall clock sits in the working day.
type SlotState struct {
	Slot             TimeSlot      `json:"slot,omitempty"`
	Label            string        `json:"label,omitempty"`
	IsWorkHours      bool          `json:"isWorkHours"`
	Remaining        time.Duration `json:"-"`
	RemainingMinutes int           `json:"remainingMinutes"`
	RemainingLabel   string        `json:"timeRemaining"`
}

// CurrentSlot is a pure function of now; callers poll it rather than caching the result.
func CurrentSlot(now time.Time) SlotState {
	hour := now.Hour()
	for _, slot := range []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening} {
		cfg := Slots[slot]
		if hour < cfg.Start || hour >= cfg.End {
			continue
		}
		minutes := (cfg.End-hour)*60 - now.Minute()
		st := SlotState{
			Slot:        slot,
			Label:       cfg.Label,
			IsWorkHours: true,
		}
		if minutes > 0 {
			st.RemainingMinutes = minutes
			st.Remaining = time.Duration(minutes) * time.Minute
			st.RemainingLabel = FormatRemaining(minutes)
		}
		return st
	}
	return SlotState{}
}

// FormatRemaining renders minutes as "2h 15min", "2h" or "15min". Non-positive input renders "".
func FormatRemaining(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dmin", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dmin", m)
	}
}
