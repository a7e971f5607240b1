package schedule

// WeekMap maps every weekday to its ordered list of open slots. All seven
// keys are always present; an empty list means the branch is closed that
// day. The map is treated as immutable value data: every editing function
// returns a fresh map and leaves its input untouched.
type WeekMap map[Weekday][]TimeSlot

// SlotField selects which side of a slot an update targets.
type SlotField string

const (
	SlotFrom SlotField = "from"
	SlotTo   SlotField = "to"
)

// NewWeekMap returns a map with all seven days present and empty.
func NewWeekMap() WeekMap {
	m := make(WeekMap, len(Days))
	for _, day := range Days {
		m[day] = []TimeSlot{}
	}
	return m
}

// Clone returns a deep copy of m. Missing day keys are restored as empty
// lists so callers always get a complete week back.
func Clone(m WeekMap) WeekMap {
	out := make(WeekMap, len(Days))
	for _, day := range Days {
		out[day] = cloneSlots(m[day])
	}
	return out
}

func cloneSlots(slots []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, len(slots))
	copy(out, slots)
	return out
}

// AddSlot appends slot to day's list and returns the updated week.
func AddSlot(m WeekMap, day Weekday, slot TimeSlot) WeekMap {
	out := Clone(m)
	out[day] = append(out[day], slot)
	return out
}

// RemoveSlot drops the slot at index from day's list. An out-of-range
// index is a no-op: stale indices can race with concurrent edits, so
// "nothing to remove" is not an error.
func RemoveSlot(m WeekMap, day Weekday, index int) WeekMap {
	out := Clone(m)
	slots := out[day]
	if index < 0 || index >= len(slots) {
		return out
	}
	out[day] = append(slots[:index], slots[index+1:]...)
	return out
}

// UpdateSlot sets the from or to side of the slot at index in day. A
// missing slot or unknown field is a no-op, same policy as RemoveSlot.
func UpdateSlot(m WeekMap, day Weekday, index int, field SlotField, value string) WeekMap {
	out := Clone(m)
	slots := out[day]
	if index < 0 || index >= len(slots) {
		return out
	}
	switch field {
	case SlotFrom:
		slots[index].From = value
	case SlotTo:
		slots[index].To = value
	}
	return out
}

// CopyToAllDays replaces every day's list (including source's own) with an
// independent copy of source's list. Each day gets its own backing array,
// so mutating one day afterwards never leaks into another.
func CopyToAllDays(m WeekMap, source Weekday) WeekMap {
	out := make(WeekMap, len(Days))
	for _, day := range Days {
		out[day] = cloneSlots(m[source])
	}
	return out
}

// Equal reports deep structural equality of two weeks.
func Equal(a, b WeekMap) bool {
	for _, day := range Days {
		as, bs := a[day], b[day]
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
	}
	return true
}
