package memory

import (
	"context"
	"sync"
)

// DirectoryUser is a seed entry for the in-memory directory.
type DirectoryUser struct {
	UserID int64
	Active bool
	Roles  []string
}

// DirectoryStore is an in-memory role/grant directory for tests and dev.
type DirectoryStore struct {
	mu     sync.RWMutex
	grants map[string][]string        // group -> roles granting it
	users  map[int64]DirectoryUser
}

func NewDirectoryStore() *DirectoryStore {
	return &DirectoryStore{
		grants: make(map[string][]string),
		users:  make(map[int64]DirectoryUser),
	}
}

// Grant records that role grants the given visibility group.
func (s *DirectoryStore) Grant(role, group string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[group] = append(s.grants[group], role)
}

// AddUser registers (or replaces) a directory user.
func (s *DirectoryStore) AddUser(u DirectoryUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
}

func (s *DirectoryStore) RolesGranting(_ context.Context, group string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := s.grants[group]
	out := make([]string, len(roles))
	copy(out, roles)
	return out, nil
}

func (s *DirectoryStore) ActiveUserIDsWithRoles(_ context.Context, roles []string) ([]int64, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[r] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	for _, u := range s.users {
		if !u.Active {
			continue
		}
		for _, r := range u.Roles {
			if _, ok := want[r]; ok {
				ids = append(ids, u.UserID)
				break
			}
		}
	}
	return ids, nil
}
