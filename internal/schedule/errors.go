package schedule

import "encoding/json"

// Messages maps validation failure kinds to display strings. The table is
// injected so the presentation layer can localize it.
type Messages struct {
	Format   string
	Order    string
	Overlap  string
	TooMany  string
	Duration string
}

// DefaultMessages returns the built-in English message table.
func DefaultMessages() Messages {
	return Messages{
		Format:   "both start and end times are required in HH:MM format",
		Order:    "start time must be before end time",
		Overlap:  "time slots must not overlap",
		TooMany:  "too many time slots for one day",
		Duration: "reservation duration must be at least the minimum",
	}
}

// ForKind resolves the message for a failure kind.
func (m Messages) ForKind(kind ErrorKind) string {
	switch kind {
	case KindFormat:
		return m.Format
	case KindOrder:
		return m.Order
	case KindOverlap:
		return m.Overlap
	case KindTooMany:
		return m.TooMany
	case KindDuration:
		return m.Duration
	}
	return ""
}

// ErrorState accumulates display-ready validation errors for one edit
// session. Keys are present only while an error exists: clearing the last
// day error drops the whole slots bucket, so "are there any errors" checks
// work on presence alone.
type ErrorState struct {
	Duration string
	Slots    map[Weekday]string
}

// NewErrorState returns an empty accumulator.
func NewErrorState() *ErrorState {
	return &ErrorState{}
}

// SetDayError records a message for day. Empty messages clear instead.
func (e *ErrorState) SetDayError(day Weekday, msg string) {
	if msg == "" {
		e.ClearDayError(day)
		return
	}
	if e.Slots == nil {
		e.Slots = make(map[Weekday]string)
	}
	e.Slots[day] = msg
}

// ClearDayError removes day's entry; the bucket itself goes away with the
// last entry.
func (e *ErrorState) ClearDayError(day Weekday) {
	delete(e.Slots, day)
	if len(e.Slots) == 0 {
		e.Slots = nil
	}
}

// SetDurationError records the duration message.
func (e *ErrorState) SetDurationError(msg string) {
	e.Duration = msg
}

// ClearDurationError removes the duration message.
func (e *ErrorState) ClearDurationError() {
	e.Duration = ""
}

// ClearAll resets to the empty state.
func (e *ErrorState) ClearAll() {
	e.Duration = ""
	e.Slots = nil
}

// HasErrors reports whether anything is currently recorded.
func (e *ErrorState) HasErrors() bool {
	return e.Duration != "" || len(e.Slots) > 0
}

// ApplyDayVerdict syncs day's entry with an engine verdict: nil clears,
// a failure stores the mapped message.
func (e *ErrorState) ApplyDayVerdict(day Weekday, verdict *DayError, msgs Messages) {
	if verdict == nil {
		e.ClearDayError(day)
		return
	}
	e.SetDayError(day, msgs.ForKind(verdict.Kind))
}

// ApplyDurationVerdict syncs the duration entry with a pass/fail verdict.
func (e *ErrorState) ApplyDurationVerdict(ok bool, msgs Messages) {
	if ok {
		e.ClearDurationError()
		return
	}
	e.SetDurationError(msgs.Duration)
}

// MarshalJSON projects the state as {"duration": ..., "slots": {...}} with
// absent keys omitted entirely.
func (e *ErrorState) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 2)
	if e.Duration != "" {
		out["duration"] = e.Duration
	}
	if len(e.Slots) > 0 {
		out["slots"] = e.Slots
	}
	return json.Marshal(out)
}
