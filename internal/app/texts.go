package app

import (
	"fmt"

	"deadline_notifier/internal/domain/notification"
)

func alertText(w notification.Window, b notification.Boundary, eventTitle, stageName string) (title, body string) {
	if b == notification.BoundaryStart {
		switch w {
		case notification.WindowOnDay:
			return "⏰ Starts Today: " + stageName, fmt.Sprintf("%s - Stage %q opens today!", eventTitle, stageName)
		case notification.WindowTomorrow:
			return "📅 Starts Tomorrow: " + stageName, fmt.Sprintf("%s - Stage %q opens tomorrow!", eventTitle, stageName)
		case notification.WindowSevenDays:
			return "🗓️ Starting Soon: " + stageName, fmt.Sprintf("%s - Stage %q opens in 7 days!", eventTitle, stageName)
		}
	}

	switch w {
	case notification.WindowOnDay:
		return "⏰ Deadline Today: " + stageName, fmt.Sprintf("%s - Stage %q is due today!", eventTitle, stageName)
	case notification.WindowTomorrow:
		return "📅 Deadline Tomorrow: " + stageName, fmt.Sprintf("%s - Stage %q is due tomorrow!", eventTitle, stageName)
	case notification.WindowSevenDays:
		return "🗓️ Upcoming: " + stageName, fmt.Sprintf("%s - Stage %q is due in 7 days!", eventTitle, stageName)
	case notification.WindowMissed:
		return "❌ Missed Deadline: " + stageName, fmt.Sprintf("%s - Stage %q deadline has passed!", eventTitle, stageName)
	}
	return stageName, eventTitle
}
