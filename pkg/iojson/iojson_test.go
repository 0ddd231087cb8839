package iojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]int{"n": 1}))
	assert.JSONEq(t, `{"n":1}`, out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWith_MarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]any{"ch": make(chan int)}))
	assert.Empty(t, out.String())

	var e Error
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &e))
	assert.Contains(t, e.Message, "error marshaling")
	assert.Contains(t, e.Data["json_error"], "unsupported type")
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteError(&buf, "invalid event input", map[string]any{"error": "missing eventType"}))

	var e Error
	require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
	assert.Equal(t, "invalid event input", e.Message)
	assert.Equal(t, "missing eventType", e.Data["error"])
}

func TestMarshalError(t *testing.T) {
	got := MarshalError(`bad "quote"`, map[string]any{"line": 3})

	var e Error
	require.NoError(t, json.Unmarshal([]byte(got), &e))
	assert.Equal(t, `bad "quote"`, e.Message)
	assert.EqualValues(t, 3, e.Data["line"])
}

func TestFileReader_ReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))

	fr := &FileReader[map[string]int]{fileFlagValue: path}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, got)
}

func TestFileReader_Each(t *testing.T) {
	fr := &FileReader[json.RawMessage]{stdin: strings.NewReader("{\"n\":1}\n{\"n\":2}\n\n{\"n\":3}")}

	var got []string
	err := fr.Each(func(raw json.RawMessage) error {
		got = append(got, string(raw))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`, `{"n":3}`}, got)
}

func TestFileReader_EachStopsOnCallbackError(t *testing.T) {
	fr := &FileReader[json.RawMessage]{stdin: strings.NewReader(`{} {} {}`)}
	stop := errors.New("stop")

	calls := 0
	err := fr.Each(func(json.RawMessage) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestFileReader_EachDecodeError(t *testing.T) {
	fr := &FileReader[json.RawMessage]{stdin: strings.NewReader("{}\n{oops")}

	err := fr.Each(func(json.RawMessage) error { return nil })
	assert.ErrorContains(t, err, "value 2")
}

func TestFileReader_MissingFile(t *testing.T) {
	fr := &FileReader[json.RawMessage]{fileFlagValue: filepath.Join(t.TempDir(), "nope.json")}
	_, err := fr.Read()
	assert.ErrorContains(t, err, "open file")
}
