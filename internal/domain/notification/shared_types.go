package notification

// Category tells the presenter how alarming an alert is.
type Category string

const (
	CategoryUpcoming Category = "upcoming"
	CategoryMissed   Category = "missed"
)

// Boundary selects which stage timestamp a reminder refers to.
type Boundary string

const (
	BoundaryEnd   Boundary = "end"
	BoundaryStart Boundary = "start"
)

// Window is the reminder rule that matched a boundary.
type Window string

const (
	WindowOnDay     Window = "on_day"     // boundary falls on today's calendar date
	WindowTomorrow  Window = "tomorrow"   // boundary falls on tomorrow's calendar date
	WindowSevenDays Window = "seven_days" // boundary falls on the calendar date 7 days out
	WindowMissed    Window = "missed"     // end boundary already passed
)

// Category returns the alert category produced by the window.
func (w Window) Category() Category {
	if w == WindowMissed {
		return CategoryMissed
	}
	return CategoryUpcoming
}
