// Package event defines the closed set of events exchanged between the view,
// the event bus, the reducer, and the sync projector.
//
// Every event implements [Event]; the unexported marker method keeps the set
// closed to this package so a type switch over the concrete types is the
// complete dispatch table.
package event

import (
	"encoding/json"

	"github.com/colonyops/shoplist/internal/core/grocery"
)

// Kind is the wire discriminator carried in the "eventType" field.
type Kind string

const (
	KindAddItem            Kind = "addItem"
	KindCompleteItem       Kind = "completeItem"
	KindUpdateItem         Kind = "updateItem"
	KindDeleteItem         Kind = "deleteItem"
	KindEmptyList          Kind = "emptyList"
	KindSignUp             Kind = "signUp"
	KindSignIn             Kind = "signIn"
	KindSignedUp           Kind = "signedUp"
	KindSignedIn           Kind = "signedIn"
	KindSignOut            Kind = "signOut"
	KindRemoteAddItem      Kind = "remoteAddItem"
	KindSignInStatusChange Kind = "signInStatusChange"
)

// Kinds lists every recognized kind in declaration order.
var Kinds = []Kind{
	KindAddItem,
	KindCompleteItem,
	KindUpdateItem,
	KindDeleteItem,
	KindEmptyList,
	KindSignUp,
	KindSignIn,
	KindSignedUp,
	KindSignedIn,
	KindSignOut,
	KindRemoteAddItem,
	KindSignInStatusChange,
}

// Event is an immutable tagged record.
type Event interface {
	Kind() Kind
	isEvent()
}

// AddItem appends a new open item with a client-generated id.
type AddItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CompleteItem toggles an item. Completed holds the value the view displayed
// before the toggle; the reducer stores its negation.
type CompleteItem struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

// UpdateItem renames an item.
type UpdateItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DeleteItem removes an item.
type DeleteItem struct {
	ID string `json:"id"`
}

// EmptyList clears every item.
type EmptyList struct{}

// SignUp asks the projector to create a remote account.
type SignUp struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn asks the projector to authenticate against the remote store.
type SignIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignedUp reports a successful remote sign-up.
type SignedUp struct {
	Credentials grocery.Credentials `json:"credentials"`
}

// SignedIn reports a successful sign-in together with the account's remote
// items, downloaded before the event was emitted.
type SignedIn struct {
	Credentials grocery.Credentials `json:"credentials"`
	Downloaded  []RemoteAddItem     `json:"downloaded,omitempty"`
}

// SignOut drops the account from the state.
type SignOut struct{}

// RemoteAddItem carries one item downloaded from the remote store.
type RemoteAddItem struct {
	grocery.Item
}

// MarshalJSON tags the item with its event type so entries nested in
// [SignedIn] keep the same shape as a standalone remoteAddItem event.
func (e RemoteAddItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Kind `json:"eventType"`
		grocery.Item
	}{Type: KindRemoteAddItem, Item: e.Item})
}

// SignInStatusChange reports a failed sign-up or sign-in.
type SignInStatusChange struct {
	SignUpError bool `json:"signUpError,omitempty"`
	SignInError bool `json:"signInError,omitempty"`
}

// Unknown wraps a raw event whose eventType is not recognized.
type Unknown struct {
	Type string
	Raw  []byte
}

func (AddItem) Kind() Kind            { return KindAddItem }
func (CompleteItem) Kind() Kind       { return KindCompleteItem }
func (UpdateItem) Kind() Kind         { return KindUpdateItem }
func (DeleteItem) Kind() Kind         { return KindDeleteItem }
func (EmptyList) Kind() Kind          { return KindEmptyList }
func (SignUp) Kind() Kind             { return KindSignUp }
func (SignIn) Kind() Kind             { return KindSignIn }
func (SignedUp) Kind() Kind           { return KindSignedUp }
func (SignedIn) Kind() Kind           { return KindSignedIn }
func (SignOut) Kind() Kind            { return KindSignOut }
func (RemoteAddItem) Kind() Kind      { return KindRemoteAddItem }
func (SignInStatusChange) Kind() Kind { return KindSignInStatusChange }
func (u Unknown) Kind() Kind          { return Kind(u.Type) }

func (AddItem) isEvent()            {}
func (CompleteItem) isEvent()       {}
func (UpdateItem) isEvent()         {}
func (DeleteItem) isEvent()         {}
func (EmptyList) isEvent()          {}
func (SignUp) isEvent()             {}
func (SignIn) isEvent()             {}
func (SignedUp) isEvent()           {}
func (SignedIn) isEvent()           {}
func (SignOut) isEvent()            {}
func (RemoteAddItem) isEvent()      {}
func (SignInStatusChange) isEvent() {}
func (Unknown) isEvent()            {}

// ItemID returns the id of the item an item-level event targets.
func ItemID(ev Event) (string, bool) {
	switch e := ev.(type) {
	case AddItem:
		return e.ID, true
	case CompleteItem:
		return e.ID, true
	case UpdateItem:
		return e.ID, true
	case DeleteItem:
		return e.ID, true
	case RemoteAddItem:
		return e.ID, true
	default:
		return "", false
	}
}
