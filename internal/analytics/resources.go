package analytics

import "insightpm/internal/domain"

// Band labels a user's utilization on the resource view.
type Band string

const (
	BandOverloaded    Band = "Overloaded"
	BandHeavy         Band = "Heavy"
	BandOptimal       Band = "Optimal"
	BandUnderutilized Band = "Underutilized"
	BandUnavailable   Band = "Unavailable"
)

// UserLoad is one card of the resource view.
type UserLoad struct {
	User        domain.User   `json:"user"`
	OpenHours   float64       `json:"open_hours"`
	Capacity    float64       `json:"capacity"`
	Utilization float64       `json:"utilization"`
	Band        Band          `json:"band"`
	Tasks       []domain.Task `json:"tasks"`
}

// Capacity returns the hours a user can take over windowDays.
func Capacity(u domain.User, windowDays int) float64 {
	if u.DailyCapacityHours <= 0 || windowDays <= 0 {
		return 0
	}
	return u.DailyCapacityHours * float64(windowDays)
}

// OpenHours sums the estimates of the user's tasks that are not Done.
func OpenHours(u domain.User, tasks []domain.Task) float64 {
	var sum float64
	for _, t := range openTasksFor(u, tasks) {
		sum += t.EstimatedTime
	}
	return sum
}

// Utilization is OpenHours over a five day capacity.
func Utilization(u domain.User, tasks []domain.Task) float64 {
	return UtilizationOver(u, tasks, DefaultPlanningWindowDays)
}

// UtilizationOver is Utilization with an explicit planning window. No open
// work or no capacity yields 0.
func UtilizationOver(u domain.User, tasks []domain.Task, windowDays int) float64 {
	capacity := Capacity(u, windowDays)
	open := OpenHours(u, tasks)
	if open == 0 || capacity == 0 {
		return 0
	}
	return open / capacity
}

// BandFor labels a utilization ratio. Zero capacity is always Unavailable.
func BandFor(utilization, capacity float64) Band {
	switch {
	case capacity <= 0:
		return BandUnavailable
	case utilization > 1.0:
		return BandOverloaded
	case utilization > 0.8:
		return BandHeavy
	case utilization < 0.4:
		return BandUnderutilized
	default:
		return BandOptimal
	}
}

// UserLoads builds the resource view for every user in order.
func UserLoads(users []domain.User, tasks []domain.Task, windowDays int) []UserLoad {
	if windowDays <= 0 {
		windowDays = DefaultPlanningWindowDays
	}
	loads := make([]UserLoad, 0, len(users))
	for _, u := range users {
		capacity := Capacity(u, windowDays)
		utilization := UtilizationOver(u, tasks, windowDays)
		loads = append(loads, UserLoad{
			User:        u,
			OpenHours:   OpenHours(u, tasks),
			Capacity:    capacity,
			Utilization: utilization,
			Band:        BandFor(utilization, capacity),
			Tasks:       openTasksFor(u, tasks),
		})
	}
	return loads
}

func openTasksFor(u domain.User, tasks []domain.Task) []domain.Task {
	open := []domain.Task{}
	for _, t := range tasks {
		if t.AssigneeID == u.ID && !t.IsDone() {
			open = append(open, t)
		}
	}
	return open
}
