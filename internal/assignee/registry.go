/*
Package assignee
File: registry.go
Description:
    Named groupings of favorite schematics ("assignees": the crafter, a
    guild mate, a customer). The union of all favorites is the set of
    schematics the alert engine tracks.

    Several entry points (HTTP handlers, the pulse loop, the store) read and
    mutate the registry, so every access holds the registry's single lock.
    Critical sections are short and never block.
*/

package assignee

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnknownAssignee   = errors.New("unknown assignee")
	ErrDuplicateAssignee = errors.New("assignee already exists")
	ErrEmptyName         = errors.New("assignee name is empty")
)

// Assignee is a snapshot of one named favorites list.
type Assignee struct {
	Name      string `json:"name"`
	Favorites []int  `json:"favorites"`
}

type entry struct {
	name      string
	favorites []int
}

// Registry holds every assignee and their favorites.
type Registry struct {
	mu        sync.Mutex
	assignees []*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) find(name string) (int, *entry) {
	for i, a := range r.assignees {
		if strings.EqualFold(a.name, name) {
			return i, a
		}
	}
	return -1, nil
}

// Add creates a new, empty assignee.
func (r *Registry) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, a := r.find(name); a != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateAssignee, name)
	}
	r.assignees = append(r.assignees, &entry{name: name})
	sort.SliceStable(r.assignees, func(i, j int) bool {
		return strings.ToLower(r.assignees[i].name) < strings.ToLower(r.assignees[j].name)
	})
	return nil
}

// Remove deletes an assignee and their favorites.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, a := r.find(name)
	if a == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAssignee, name)
	}
	r.assignees = append(r.assignees[:i], r.assignees[i+1:]...)
	return nil
}

// AddFavorite adds schematic id to name's favorites. Adding twice is a no-op.
func (r *Registry) AddFavorite(name string, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, a := r.find(name)
	if a == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAssignee, name)
	}
	for _, f := range a.favorites {
		if f == id {
			return nil
		}
	}
	a.favorites = append(a.favorites, id)
	return nil
}

// RemoveFavorite drops schematic id from name's favorites.
func (r *Registry) RemoveFavorite(name string, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, a := r.find(name)
	if a == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAssignee, name)
	}
	for i, f := range a.favorites {
		if f == id {
			a.favorites = append(a.favorites[:i], a.favorites[i+1:]...)
			return nil
		}
	}
	return nil
}

// Favorites returns a copy of name's favorites.
func (r *Registry) Favorites(name string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, a := r.find(name)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAssignee, name)
	}
	return append([]int(nil), a.favorites...), nil
}

// AllFavorites is the union of every assignee's favorites, first seen first.
func (r *Registry) AllFavorites() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int]bool)
	var out []int
	for _, a := range r.assignees {
		for _, f := range a.favorites {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// Names lists assignees in display order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.assignees))
	for i, a := range r.assignees {
		out[i] = a.name
	}
	return out
}

// Snapshot copies the whole registry, for persistence and the API.
func (r *Registry) Snapshot() []Assignee {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Assignee, len(r.assignees))
	for i, a := range r.assignees {
		out[i] = Assignee{Name: a.name, Favorites: append([]int(nil), a.favorites...)}
	}
	return out
}

// Restore replaces the registry contents with list.
func (r *Registry) Restore(list []Assignee) {
	fresh := make([]*entry, 0, len(list))
	for _, a := range list {
		fresh = append(fresh, &entry{name: a.Name, favorites: append([]int(nil), a.Favorites...)})
	}
	r.mu.Lock()
	r.assignees = fresh
	r.mu.Unlock()
}
