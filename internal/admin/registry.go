// Package admin manages the privileged-user set backing administrative
// commands.
package admin

import (
	"log/slog"

	"github.com/molubot/molubot/internal/store"
)

type document struct {
	Admins []string `json:"admins"`
}

func newDocument() *document {
	return &document{Admins: []string{}}
}

// Registry is the set of admin user identifiers, persisted as a single JSON
// document.
type Registry struct {
	file *store.JSONFile
}

// New creates a registry backed by the document at path.
func New(path string) *Registry {
	return &Registry{file: store.NewJSONFile(path)}
}

// IsAdmin reports whether userID is in the admin set. An unreadable store
// means "not admin" — authorization fails closed, it never fails open on a
// storage fault.
func (r *Registry) IsAdmin(userID string) bool {
	doc := newDocument()
	if err := r.file.Load(doc); err != nil {
		slog.Warn("admin check failed, treating as non-admin", "user", userID, "error", err)
		return false
	}
	return contains(doc.Admins, userID)
}

// List returns the admin identifiers in stored order.
func (r *Registry) List() ([]string, error) {
	doc := newDocument()
	if err := r.file.Load(doc); err != nil {
		return nil, err
	}
	out := make([]string, len(doc.Admins))
	copy(out, doc.Admins)
	return out, nil
}

// Add appends userID to the admin set. Returns store.ErrExists if already
// present.
func (r *Registry) Add(userID string) error {
	doc := newDocument()
	return r.file.Update(doc, func() error {
		if contains(doc.Admins, userID) {
			return store.ErrExists
		}
		doc.Admins = append(doc.Admins, userID)
		return nil
	})
}

// Remove deletes target from the admin set. The requester must themselves be
// an admin (store.ErrNotAuthorized otherwise — checked before the target's
// existence); a missing target returns store.ErrNotFound. Removing the last
// admin is permitted; seeds are restored at next startup.
func (r *Registry) Remove(target, requester string) error {
	doc := newDocument()
	return r.file.Update(doc, func() error {
		if !contains(doc.Admins, requester) {
			return store.ErrNotAuthorized
		}
		idx := -1
		for i, id := range doc.Admins {
			if id == target {
				idx = i
				break
			}
		}
		if idx < 0 {
			return store.ErrNotFound
		}
		doc.Admins = append(doc.Admins[:idx], doc.Admins[idx+1:]...)
		return nil
	})
}

// EnsureSeeds adds any seed identifier not already present. Idempotent:
// calling it any number of times leaves the set identical to calling it once.
func (r *Registry) EnsureSeeds(seeds []string) error {
	if len(seeds) == 0 {
		return nil
	}
	doc := newDocument()
	return r.file.Update(doc, func() error {
		for _, seed := range seeds {
			if !contains(doc.Admins, seed) {
				doc.Admins = append(doc.Admins, seed)
			}
		}
		return nil
	})
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
