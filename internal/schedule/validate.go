package schedule

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	KindFormat   ErrorKind = "format"
	KindOrder    ErrorKind = "order"
	KindOverlap  ErrorKind = "overlap"
	KindTooMany  ErrorKind = "too_many"
	KindDuration ErrorKind = "duration"
)

// DayError is the verdict for one day's slot list.
type DayError struct {
	Kind ErrorKind
}

func (e *DayError) Error() string {
	return "invalid day slots: " + string(e.Kind)
}

// ValidateDaySlots checks one day's intervals. Checks run in a fixed
// sequence and stop at the first failure:
//
//  1. format: both sides non-empty, parseable "HH:MM"
//  2. order: from strictly before to
//  3. overlap: no two slots share time (touching is fine)
//
// An empty list is always valid; the day is simply closed.
func ValidateDaySlots(slots []TimeSlot) *DayError {
	for _, s := range slots {
		if !parseClock(s.From) || !parseClock(s.To) {
			return &DayError{Kind: KindFormat}
		}
	}
	for _, s := range slots {
		if s.From >= s.To {
			return &DayError{Kind: KindOrder}
		}
	}
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if overlaps(slots[i], slots[j]) {
				return &DayError{Kind: KindOverlap}
			}
		}
	}
	return nil
}

// ValidateDayCount checks the optional per-day slot cap. A max of zero or
// less means unlimited.
func ValidateDayCount(slots []TimeSlot, max int) *DayError {
	if max > 0 && len(slots) > max {
		return &DayError{Kind: KindTooMany}
	}
	return nil
}

// ValidateDuration reports whether minutes is a usable reservation
// duration. The minimum is injected by the caller; anything below one
// falls back to the default minimum of 1.
func ValidateDuration(minutes, min int) bool {
	if min < 1 {
		min = 1
	}
	return minutes >= min
}
