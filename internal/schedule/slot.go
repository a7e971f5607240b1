package schedule

import (
	"encoding/json"
	"fmt"
)

// TimeSlot is a single open interval within one day. From and To are
// zero-padded "HH:MM" local-time strings; there is no date, no timezone
// and no cross-midnight wraparound.
type TimeSlot struct {
	From string
	To   string
}

// DefaultSlot is appended when a new slot is added to a day.
var DefaultSlot = TimeSlot{From: "09:00", To: "17:00"}

// MarshalJSON encodes the slot in its wire form, a 2-element string array.
func (s TimeSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{s.From, s.To})
}

// UnmarshalJSON decodes the ["from","to"] wire form.
func (s *TimeSlot) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("time slot must be a 2-element array, got %d", len(pair))
	}
	s.From, s.To = pair[0], pair[1]
	return nil
}

// parseClock checks that s is a zero-padded 24-hour "HH:MM" string.
// Zero padding matters: it is what makes lexicographic comparison of
// clock strings agree with chronological order.
func parseClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	return hour < 24 && minute < 60
}

// overlaps reports whether two intervals share any time. Touching
// intervals (one ends exactly when the other starts) do not overlap,
// so back-to-back slots are allowed.
func overlaps(a, b TimeSlot) bool {
	return a.From < b.To && a.To > b.From
}
