package grocery

import (
	"encoding/json"
	"fmt"
)

// Encode serializes a snapshot for the local snapshot slot.
func Encode(s AppState) ([]byte, error) {
	if s.Items == nil {
		s.Items = []Item{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses a serialized snapshot. A document without an items list is
// rejected so that foreign data in the slot is not mistaken for an empty list.
func Decode(data []byte) (AppState, error) {
	var raw struct {
		Items       *[]Item      `json:"items"`
		Credentials *Credentials `json:"credentials"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return AppState{}, fmt.Errorf("decode state: %w", err)
	}
	if raw.Items == nil {
		return AppState{}, fmt.Errorf("decode state: missing items")
	}

	seen := make(map[string]struct{}, len(*raw.Items))
	for _, item := range *raw.Items {
		if _, dup := seen[item.ID]; dup {
			return AppState{}, fmt.Errorf("decode state: duplicate item id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return AppState{Items: *raw.Items, Credentials: raw.Credentials}, nil
}
