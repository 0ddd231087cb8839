// Package grocery defines the grocery list domain model: items, account
// credentials, and the application state snapshot folded from events.
package grocery

import (
	"slices"

	"github.com/google/uuid"
)

// Item is a single entry on the grocery list. Identity is ID; Name and
// Completed are mutable.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Credentials authorize remote sync. They are passed to the remote store as-is.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AppState is an immutable snapshot of the list and the optional signed-in
// account. Items keep insertion order and ids are unique.
//
// Treat values as read-only: every With* method returns a new snapshot and
// never touches the receiver's backing arrays.
type AppState struct {
	Items       []Item       `json:"items"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

// SignedIn reports whether the snapshot carries credentials. Only signed-in
// snapshots license remote sync side effects.
func (s AppState) SignedIn() bool {
	return s.Credentials != nil
}

// ItemByID returns the item with the given id.
func (s AppState) ItemByID(id string) (Item, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Item{}, false
	}
	return s.Items[i], true
}

// Equal reports value equality of two snapshots, including item order.
func (s AppState) Equal(other AppState) bool {
	if !slices.Equal(s.Items, other.Items) {
		return false
	}
	switch {
	case s.Credentials == nil && other.Credentials == nil:
		return true
	case s.Credentials == nil || other.Credentials == nil:
		return false
	default:
		return *s.Credentials == *other.Credentials
	}
}

// WithItem appends item. The caller guarantees the id is not already present.
func (s AppState) WithItem(item Item) AppState {
	items := make([]Item, 0, len(s.Items)+1)
	items = append(items, s.Items...)
	s.Items = append(items, item)
	return s
}

// WithUpdatedItem applies fn to the item with the given id. Items with other
// ids are copied unchanged.
func (s AppState) WithUpdatedItem(id string, fn func(Item) Item) AppState {
	items := make([]Item, len(s.Items))
	for i, item := range s.Items {
		if item.ID == id {
			item = fn(item)
		}
		items[i] = item
	}
	s.Items = items
	return s
}

// WithoutItem drops the item with the given id, preserving the order of the rest.
func (s AppState) WithoutItem(id string) AppState {
	items := make([]Item, 0, len(s.Items))
	for _, item := range s.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	s.Items = items
	return s
}

// WithItems replaces the item list.
func (s AppState) WithItems(items []Item) AppState {
	s.Items = items
	return s
}

// WithCredentials attaches a copy of creds.
func (s AppState) WithCredentials(creds Credentials) AppState {
	s.Credentials = &creds
	return s
}

// WithoutCredentials signs the snapshot out.
func (s AppState) WithoutCredentials() AppState {
	s.Credentials = nil
	return s
}

func (s AppState) indexOf(id string) int {
	return slices.IndexFunc(s.Items, func(item Item) bool { return item.ID == id })
}

// DefaultState is the snapshot used when nothing has been persisted yet:
// three seed items and no account.
func DefaultState() AppState {
	return AppState{
		Items: []Item{
			{ID: NewID(), Name: "1 packages of tomato puree", Completed: false},
			{ID: NewID(), Name: "4 yellow onions", Completed: true},
			{ID: NewID(), Name: "2 dl cream", Completed: false},
		},
	}
}

// NewID returns a fresh client-side item id.
func NewID() string {
	return uuid.NewString()
}
