package schedule

import "testing"

func sampleWeek() WeekMap {
	m := NewWeekMap()
	m[Saturday] = []TimeSlot{{From: "09:00", To: "12:00"}, {From: "13:00", To: "17:00"}}
	m[Monday] = []TimeSlot{{From: "10:00", To: "14:00"}}
	return m
}

func TestNewWeekMapHasAllDays(t *testing.T) {
	m := NewWeekMap()
	if len(m) != 7 {
		t.Fatalf("expected 7 days, got %d", len(m))
	}
	for _, day := range Days {
		slots, ok := m[day]
		if !ok {
			t.Errorf("day %s missing", day)
		}
		if len(slots) != 0 {
			t.Errorf("day %s not empty", day)
		}
	}
}

func TestAddSlot(t *testing.T) {
	before := sampleWeek()
	after := AddSlot(before, Sunday, DefaultSlot)

	if len(after[Sunday]) != 1 {
		t.Fatalf("expected 1 slot on sunday, got %d", len(after[Sunday]))
	}
	if after[Sunday][0] != DefaultSlot {
		t.Errorf("unexpected slot: %v", after[Sunday][0])
	}
	if len(before[Sunday]) != 0 {
		t.Error("input map was mutated")
	}
	if !Equal(before, sampleWeek()) {
		t.Error("input map changed structurally")
	}
}

func TestRemoveSlot(t *testing.T) {
	tests := []struct {
		name      string
		day       Weekday
		index     int
		wantCount int
	}{
		{"first slot", Saturday, 0, 1},
		{"second slot", Saturday, 1, 1},
		{"negative index is no-op", Saturday, -1, 2},
		{"past end is no-op", Saturday, 2, 2},
		{"empty day is no-op", Friday, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := sampleWeek()
			after := RemoveSlot(before, tt.day, tt.index)

			if len(after[tt.day]) != tt.wantCount {
				t.Errorf("expected %d slots, got %d", tt.wantCount, len(after[tt.day]))
			}
			if !Equal(before, sampleWeek()) {
				t.Error("input map was mutated")
			}
		})
	}
}

func TestRemoveSlotKeepsRemaining(t *testing.T) {
	after := RemoveSlot(sampleWeek(), Saturday, 0)
	want := TimeSlot{From: "13:00", To: "17:00"}
	if after[Saturday][0] != want {
		t.Errorf("expected %v to remain, got %v", want, after[Saturday][0])
	}
}

func TestUpdateSlot(t *testing.T) {
	tests := []struct {
		name  string
		day   Weekday
		index int
		field SlotField
		value string
		want  TimeSlot
		noop  bool
	}{
		{"update from", Monday, 0, SlotFrom, "08:30", TimeSlot{"08:30", "14:00"}, false},
		{"update to", Monday, 0, SlotTo, "15:00", TimeSlot{"10:00", "15:00"}, false},
		{"missing index is no-op", Monday, 3, SlotFrom, "08:30", TimeSlot{}, true},
		{"empty day is no-op", Tuesday, 0, SlotTo, "15:00", TimeSlot{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := sampleWeek()
			after := UpdateSlot(before, tt.day, tt.index, tt.field, tt.value)

			if tt.noop {
				if !Equal(before, after) {
					t.Error("expected no-op, map changed")
				}
			} else if after[tt.day][tt.index] != tt.want {
				t.Errorf("expected %v, got %v", tt.want, after[tt.day][tt.index])
			}
			if !Equal(before, sampleWeek()) {
				t.Error("input map was mutated")
			}
		})
	}
}

func TestCopyToAllDays(t *testing.T) {
	before := sampleWeek()
	after := CopyToAllDays(before, Saturday)

	for _, day := range Days {
		if len(after[day]) != 2 {
			t.Errorf("day %s: expected 2 slots, got %d", day, len(after[day]))
		}
	}
	if len(before[Monday]) != 1 {
		t.Error("input map was mutated")
	}
}

func TestCopyToAllDaysIndependence(t *testing.T) {
	after := CopyToAllDays(sampleWeek(), Saturday)

	// Writing through one day's slice must not show up on any other day.
	after[Monday][0].From = "00:00"
	after[Monday] = append(after[Monday], TimeSlot{From: "20:00", To: "21:00"})

	if after[Tuesday][0].From == "00:00" {
		t.Error("tuesday shares monday's backing array")
	}
	if after[Saturday][0].From == "00:00" {
		t.Error("saturday shares monday's backing array")
	}
	if len(after[Tuesday]) != 2 || len(after[Saturday]) != 2 {
		t.Error("appending to monday changed another day's length")
	}
}

func TestCopyToAllDaysEmptySource(t *testing.T) {
	after := CopyToAllDays(sampleWeek(), Friday)
	for _, day := range Days {
		if len(after[day]) != 0 {
			t.Errorf("day %s: expected closed, got %d slots", day, len(after[day]))
		}
	}
}

func TestCloneRestoresMissingDays(t *testing.T) {
	partial := WeekMap{Saturday: []TimeSlot{{From: "09:00", To: "10:00"}}}
	full := Clone(partial)
	if len(full) != 7 {
		t.Fatalf("expected 7 days after clone, got %d", len(full))
	}
	if full[Sunday] == nil {
		t.Error("missing day not restored as empty list")
	}
}
