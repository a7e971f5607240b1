// Package schedule implements the weekly reservation-hours rule engine:
// pure edits over a per-day slot map plus validation of a day's intervals.
package schedule

// Weekday identifies one day of the reservation week.
type Weekday string

const (
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

// Days lists all weekdays in display order. The week starts on Saturday;
// iteration and copy-to-all-days fan-out follow this order.
var Days = [7]Weekday{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}

// ValidDay reports whether d is one of the seven known weekdays.
func ValidDay(d Weekday) bool {
	for _, day := range Days {
		if day == d {
			return true
		}
	}
	return false
}
