// Package bookmark implements the keyword→URL registries (guide and site
// bookmarks) with a pluggable write-authorization policy.
package bookmark

import (
	"sort"
	"time"

	"github.com/molubot/molubot/internal/store"
)

// Entry is one stored bookmark.
type Entry struct {
	URL       string    `json:"url"`
	Owner     string    `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Policy decides whether a user may save or delete bookmarks in this store.
// A nil policy allows everyone. Guide bookmarks use the admin registry's
// predicate; site bookmarks use nil.
type Policy func(userID string) bool

type document map[string]Entry

// Store is a keyword-unique bookmark registry over a single JSON document.
// At most one live entry exists per keyword; re-saving overwrites.
type Store struct {
	file   *store.JSONFile
	policy Policy
	now    func() time.Time
}

// New creates a bookmark store backed by the document at path, gated by
// policy for mutations.
func New(path string, policy Policy) *Store {
	return &Store{
		file:   store.NewJSONFile(path),
		policy: policy,
		now:    time.Now,
	}
}

func (s *Store) allowed(userID string) bool {
	return s.policy == nil || s.policy(userID)
}

// Save upserts a bookmark. The returned flag reports whether an existing
// keyword was overwritten, so callers can word the confirmation accordingly.
// Returns store.ErrNotAuthorized if the policy rejects owner.
func (s *Store) Save(keyword, url, owner string) (isUpdate bool, err error) {
	if !s.allowed(owner) {
		return false, store.ErrNotAuthorized
	}
	doc := document{}
	err = s.file.Update(&doc, func() error {
		_, isUpdate = doc[keyword]
		doc[keyword] = Entry{URL: url, Owner: owner, UpdatedAt: s.now()}
		return nil
	})
	return isUpdate, err
}

// Get looks up a bookmark. A missing keyword is a valid outcome, reported via
// the boolean; the error is reserved for storage faults.
func (s *Store) Get(keyword string) (Entry, bool, error) {
	doc := document{}
	if err := s.file.Load(&doc); err != nil {
		return Entry{}, false, err
	}
	e, ok := doc[keyword]
	return e, ok, nil
}

// Delete removes a bookmark. Returns store.ErrNotFound if the keyword is
// absent and store.ErrNotAuthorized if the policy rejects requester.
func (s *Store) Delete(keyword, requester string) error {
	if !s.allowed(requester) {
		return store.ErrNotAuthorized
	}
	doc := document{}
	return s.file.Update(&doc, func() error {
		if _, ok := doc[keyword]; !ok {
			return store.ErrNotFound
		}
		delete(doc, keyword)
		return nil
	})
}

// Item is one row of a bookmark listing.
type Item struct {
	Keyword string
	URL     string
}

// List returns all bookmarks sorted by keyword.
func (s *Store) List() ([]Item, error) {
	doc := document{}
	if err := s.file.Load(&doc); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(doc))
	for kw, e := range doc {
		items = append(items, Item{Keyword: kw, URL: e.URL})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Keyword < items[j].Keyword })
	return items, nil
}
