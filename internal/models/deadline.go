package models

import (
	"fmt"
	"time"
)

// UrgentWindow is how far ahead of now a deadline counts as urgent.
const UrgentWindow = 24 * time.Hour

// IsUrgent reports whether the task is still open and its deadline, taken as
// midnight of the deadline date in now's location, falls in (now, now+24h].
func IsUrgent(task Task, now time.Time) bool {
	if task.Completed {
		return false
	}
	due := task.Deadline.Midnight(now.Location())
	if due.IsZero() {
		return false
	}
	return due.After(now) && !due.After(now.Add(UrgentWindow))
}

// RelativeLabel describes date relative to the calendar date of now:
// "Today", "Tomorrow", "Yesterday", "In N days" up to a week ahead,
// "N days ago" for the past, or "Jan 2, 2006" beyond a week ahead.
func RelativeLabel(date Date, now time.Time) string {
	days, err := DateOf(now).DaysUntil(date)
	if err != nil {
		return string(date)
	}

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 1 && days <= 7:
		return fmt.Sprintf("In %d days", days)
	case days < -1:
		return fmt.Sprintf("%d days ago", -days)
	}

	return date.Midnight(time.UTC).Format("Jan 2, 2006")
}
