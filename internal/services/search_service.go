package services

import (
	"sort"
	"strings"

	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/store"
)

// searchServiceImpl implements the SearchService interface
type searchServiceImpl struct {
	store *store.EntityStore
}

// NewSearchService creates a new SearchService instance
func NewSearchService(deps Dependencies) SearchService {
	deps = deps.withDefaults()
	return &searchServiceImpl{store: deps.Store}
}

// ParseSortOrder parses a sort name; "" and "board" keep board order.
func ParseSortOrder(name string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "board":
		return SortByBoard, nil
	case string(SortByDueDate), "due":
		return SortByDueDate, nil
	case string(SortByPriority):
		return SortByPriority, nil
	case string(SortByTitle):
		return SortByTitle, nil
	}
	return SortByBoard, errors.NewInvalidInputError("sort", name, "must be one of board, due_date, priority, title")
}

var priorityRank = map[domain.Priority]int{
	domain.PriorityCritical: 0,
	domain.PriorityHigh:     1,
	domain.PriorityMedium:   2,
	domain.PriorityLow:      3,
}

// SearchTasks returns the mirrored tasks matching criteria.Filter, ordered
// and truncated as requested.
func (s *searchServiceImpl) SearchTasks(criteria SearchCriteria) []domain.Task {
	var matched []domain.Task
	for _, t := range s.store.Tasks.All() {
		if criteria.Filter.Matches(t) {
			matched = append(matched, t)
		}
	}

	s.sortTasks(matched, criteria.Sort)

	if criteria.Limit > 0 && len(matched) > criteria.Limit {
		matched = matched[:criteria.Limit]
	}
	return matched
}

// sortTasks orders tasks in place. Ties keep store order.
func (s *searchServiceImpl) sortTasks(tasks []domain.Task, order SortOrder) {
	switch order {
	case SortByDueDate:
		// Tasks without a due date go last.
		sort.SliceStable(tasks, func(i, j int) bool {
			a, b := tasks[i].DueDate, tasks[j].DueDate
			if a == "" || b == "" {
				return a != "" && b == ""
			}
			return a < b
		})
	case SortByPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			return rank(tasks[i].Priority) < rank(tasks[j].Priority)
		})
	case SortByTitle:
		sort.SliceStable(tasks, func(i, j int) bool {
			return strings.ToLower(tasks[i].Title) < strings.ToLower(tasks[j].Title)
		})
	}
}

func rank(p domain.Priority) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// SearchTimeEntries returns entries for a task and/or user, newest date
// first. Empty arguments match everything.
func (s *searchServiceImpl) SearchTimeEntries(taskID, userID string) []TimeEntryWithTask {
	titles := make(map[string]string)
	for _, t := range s.store.Tasks.All() {
		titles[t.ID] = t.Title
	}

	var out []TimeEntryWithTask
	for _, e := range s.store.TimeEntries.All() {
		if taskID != "" && e.TaskID != taskID {
			continue
		}
		if userID != "" && e.UserID != userID {
			continue
		}
		out = append(out, TimeEntryWithTask{Entry: e, TaskTitle: titles[e.TaskID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entry.Date > out[j].Entry.Date })
	return out
}
