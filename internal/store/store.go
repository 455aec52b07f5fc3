// Package store holds the in-memory mirrors of the remote collections. It is
// rebuilt on every session start and cleared on logout.
package store

import (
	"sync"

	"insightpm/internal/domain"
	"insightpm/internal/remote"
)

// ChangeKind describes a patch applied to a collection.
type ChangeKind string

const (
	ChangeReplaced ChangeKind = "replaced"
	ChangeInserted ChangeKind = "inserted"
	ChangeUpdated  ChangeKind = "updated"
	ChangeRemoved  ChangeKind = "removed"
)

// Change is delivered to subscribers after every patch.
type Change struct {
	Table remote.Table
	Kind  ChangeKind
	ID    string
}

// EntityStore mirrors tasks, projects, users and time entries.
type EntityStore struct {
	Tasks       *Collection[domain.Task]
	Projects    *Collection[domain.Project]
	Users       *Collection[domain.User]
	TimeEntries *Collection[domain.TimeEntry]

	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(Change)
}

// New creates an empty EntityStore.
func New() *EntityStore {
	s := &EntityStore{subscribers: make(map[int]func(Change))}
	s.Tasks = newCollection(
		func(t domain.Task) string { return t.ID },
		domain.Task.Clone,
		s.notifier(remote.TableTasks))
	s.Projects = newCollection(
		func(p domain.Project) string { return p.ID },
		nil,
		s.notifier(remote.TableProjects))
	s.Users = newCollection(
		func(u domain.User) string { return u.ID },
		nil,
		s.notifier(remote.TableUsers))
	s.TimeEntries = newCollection(
		func(e domain.TimeEntry) string { return e.ID },
		nil,
		s.notifier(remote.TableTimeEntries))
	return s
}

// Clear empties every collection.
func (s *EntityStore) Clear() {
	s.Tasks.Clear()
	s.Projects.Clear()
	s.Users.Clear()
	s.TimeEntries.Clear()
}

// Snapshot is a point-in-time copy of every collection.
type Snapshot struct {
	Tasks       []domain.Task
	Projects    []domain.Project
	Users       []domain.User
	TimeEntries []domain.TimeEntry
}

// Snapshot copies the current contents. Each collection is copied
// atomically; the four copies are not taken under one lock.
func (s *EntityStore) Snapshot() Snapshot {
	return Snapshot{
		Tasks:       s.Tasks.All(),
		Projects:    s.Projects.All(),
		Users:       s.Users.All(),
		TimeEntries: s.TimeEntries.All(),
	}
}

// Subscribe registers fn for every change and returns its removal function.
// fn runs on the goroutine that applied the patch.
func (s *EntityStore) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *EntityStore) notifier(table remote.Table) func(ChangeKind, string) {
	return func(kind ChangeKind, id string) {
		s.mu.RLock()
		subs := make([]func(Change), 0, len(s.subscribers))
		for _, fn := range s.subscribers {
			subs = append(subs, fn)
		}
		s.mu.RUnlock()

		change := Change{Table: table, Kind: kind, ID: id}
		for _, fn := range subs {
			fn(change)
		}
	}
}
