package reminders

import "github.com/sandeepkv93/choresd/internal/model"

const (
	DefaultCap    = 5
	DefaultBaseID = 100
	dueSoonBody   = "Due soon"
)

type Notification struct {
	ID     int
	TaskID string
	Title  string
	Body   string
}

type PlanResult struct {
	Notifications []Notification
	Skipped       int
}

// Plan turns due tasks into at most limit notifications, in the order given.
// IDs are baseID+1, baseID+2 and so on, so a later run replaces the earlier
// notification in the same slot. Tasks past the limit are only counted.
func Plan(tasks []model.Task, today model.Date, limit, baseID int) PlanResult {
	if limit <= 0 {
		limit = DefaultCap
	}
	n := min(len(tasks), limit)
	res := PlanResult{
		Notifications: make([]Notification, 0, n),
		Skipped:       len(tasks) - n,
	}
	for i, task := range tasks[:n] {
		res.Notifications = append(res.Notifications, Notification{
			ID:     baseID + i + 1,
			TaskID: task.ID,
			Title:  task.Name,
			Body:   body(task.Urgency(today)),
		})
	}
	return res
}

func body(u model.Urgency) string {
	switch u.Kind {
	case model.Overdue, model.DueToday:
		return u.Status()
	default:
		return dueSoonBody
	}
}
