package analytics

import "insightpm/internal/domain"

// Column is one lane of the kanban board.
type Column struct {
	Status domain.TaskStatus `json:"status"`
	Title  string            `json:"title"`
	Tasks  []domain.Task     `json:"tasks"`
}

var columnTitles = map[domain.TaskStatus]string{
	domain.StatusTodo:       "To Do",
	domain.StatusInProgress: "In Progress",
	domain.StatusReview:     "In Review",
	domain.StatusDone:       "Done",
}

// Board groups tasks into the four status columns. Tasks with an unknown
// status are not shown.
func Board(tasks []domain.Task) []Column {
	statuses := domain.Statuses()
	columns := make([]Column, len(statuses))
	index := make(map[domain.TaskStatus]int, len(statuses))
	for i, s := range statuses {
		index[s] = i
		columns[i] = Column{Status: s, Title: columnTitles[s], Tasks: []domain.Task{}}
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			columns[i].Tasks = append(columns[i].Tasks, t)
		}
	}
	return columns
}
