package event

import (
	"encoding/json"
	"fmt"
)

const typeField = "eventType"

// Decode parses a raw view event of the form {"eventType": "...", ...}.
// Unrecognized types decode to [Unknown] rather than failing.
func Decode(data []byte) (Event, error) {
	var header struct {
		Type *string `json:"eventType"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if header.Type == nil {
		return nil, fmt.Errorf("decode event: missing %s", typeField)
	}

	var ev Event
	var err error

	switch Kind(*header.Type) {
	case KindAddItem:
		ev, err = decodeAs[AddItem](data)
	case KindCompleteItem:
		ev, err = decodeAs[CompleteItem](data)
	case KindUpdateItem:
		ev, err = decodeAs[UpdateItem](data)
	case KindDeleteItem:
		ev, err = decodeAs[DeleteItem](data)
	case KindEmptyList:
		ev = EmptyList{}
	case KindSignUp:
		ev, err = decodeAs[SignUp](data)
	case KindSignIn:
		ev, err = decodeAs[SignIn](data)
	case KindSignedUp:
		ev, err = decodeAs[SignedUp](data)
	case KindSignedIn:
		ev, err = decodeAs[SignedIn](data)
	case KindSignOut:
		ev = SignOut{}
	case KindRemoteAddItem:
		ev, err = decodeAs[RemoteAddItem](data)
	case KindSignInStatusChange:
		ev, err = decodeAs[SignInStatusChange](data)
	default:
		raw := make([]byte, len(data))
		copy(raw, data)
		ev = Unknown{Type: *header.Type, Raw: raw}
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s event: %w", *header.Type, err)
	}
	return ev, nil
}

func decodeAs[T Event](data []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode renders ev in the flat wire form accepted by [Decode].
func Encode(ev Event) ([]byte, error) {
	if u, ok := ev.(Unknown); ok {
		if len(u.Raw) > 0 {
			return u.Raw, nil
		}
		return json.Marshal(map[string]string{typeField: u.Type})
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Kind(), err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Kind(), err)
	}

	kind, _ := json.Marshal(string(ev.Kind()))
	fields[typeField] = kind

	return json.Marshal(fields)
}
