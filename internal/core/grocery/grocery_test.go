package grocery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultState(t *testing.T) {
	s := DefaultState()

	require.Len(t, s.Items, 3)
	assert.False(t, s.SignedIn())

	assert.Equal(t, "1 packages of tomato puree", s.Items[0].Name)
	assert.False(t, s.Items[0].Completed)
	assert.Equal(t, "4 yellow onions", s.Items[1].Name)
	assert.True(t, s.Items[1].Completed)
	assert.Equal(t, "2 dl cream", s.Items[2].Name)
	assert.False(t, s.Items[2].Completed)

	ids := map[string]bool{}
	for _, item := range s.Items {
		assert.NotEmpty(t, item.ID)
		ids[item.ID] = true
	}
	assert.Len(t, ids, 3, "seed ids must be unique")
}

func TestAppState_WithItem_doesNotAliasReceiver(t *testing.T) {
	base := AppState{Items: make([]Item, 1, 4)}
	base.Items[0] = Item{ID: "a", Name: "apples"}

	left := base.WithItem(Item{ID: "b", Name: "bread"})
	right := base.WithItem(Item{ID: "c", Name: "cheese"})

	require.Len(t, left.Items, 2)
	require.Len(t, right.Items, 2)
	assert.Equal(t, "b", left.Items[1].ID)
	assert.Equal(t, "c", right.Items[1].ID)
	assert.Len(t, base.Items, 1)
}

func TestAppState_WithUpdatedItem(t *testing.T) {
	base := AppState{Items: []Item{{ID: "a", Name: "apples"}, {ID: "b", Name: "bread"}}}

	got := base.WithUpdatedItem("b", func(it Item) Item {
		it.Name = "brioche"
		return it
	})

	assert.Equal(t, "brioche", got.Items[1].Name)
	assert.Equal(t, "bread", base.Items[1].Name)
	assert.Equal(t, "apples", got.Items[0].Name)
}

func TestAppState_WithoutItem_preservesOrder(t *testing.T) {
	base := AppState{Items: []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	got := base.WithoutItem("b")

	require.Len(t, got.Items, 2)
	assert.Equal(t, "a", got.Items[0].ID)
	assert.Equal(t, "c", got.Items[1].ID)
	assert.Len(t, base.Items, 3)
}

func TestAppState_Credentials(t *testing.T) {
	creds := Credentials{Email: "a@example.com", Password: "pw"}

	in := AppState{}.WithCredentials(creds)
	require.True(t, in.SignedIn())
	assert.Equal(t, creds, *in.Credentials)

	out := in.WithoutCredentials()
	assert.False(t, out.SignedIn())
	assert.True(t, in.SignedIn(), "receiver must keep its credentials")
}

func TestAppState_Equal(t *testing.T) {
	creds := Credentials{Email: "a@example.com", Password: "pw"}
	a := AppState{Items: []Item{{ID: "1", Name: "milk"}}}

	tests := []struct {
		name  string
		other AppState
		want  bool
	}{
		{"identical", AppState{Items: []Item{{ID: "1", Name: "milk"}}}, true},
		{"renamed", AppState{Items: []Item{{ID: "1", Name: "oat milk"}}}, false},
		{"completed", AppState{Items: []Item{{ID: "1", Name: "milk", Completed: true}}}, false},
		{"signed in", a.WithCredentials(creds), false},
		{"empty", AppState{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Equal(tt.other))
		})
	}

	assert.True(t, a.WithCredentials(creds).Equal(a.WithCredentials(creds)))
}

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state AppState
	}{
		{
			name:  "signed out",
			state: AppState{Items: []Item{{ID: "1", Name: "milk"}, {ID: "2", Name: "eggs", Completed: true}}},
		},
		{
			name: "signed in",
			state: AppState{Items: []Item{{ID: "1", Name: "milk"}}}.
				WithCredentials(Credentials{Email: "a@example.com", Password: "pw"}),
		},
		{
			name:  "empty list",
			state: AppState{Items: []Item{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.state)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)

			assert.Equal(t, tt.state.Items, got.Items)
			assert.Equal(t, tt.state.SignedIn(), got.SignedIn())
			assert.True(t, tt.state.Equal(got))
		})
	}
}

func TestEncode_nilItemsWritesEmptyList(t *testing.T) {
	data, err := Encode(AppState{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(data))
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"not json", `{items:`, "decode state"},
		{"missing items", `{"credentials":null}`, "missing items"},
		{"wrong type", `{"items":"milk"}`, "decode state"},
		{"duplicate ids", `{"items":[{"id":"1"},{"id":"1"}]}`, "duplicate item id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
