package httpfs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/shoplist/internal/core/fsio"
	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/remote/remotetest"
)

const (
	email    = "ada@example.com"
	password = "hunter2"
)

// newServer exposes a remotetest.Remote over the httpfs wire protocol.
func newServer(t *testing.T, fake *remotetest.Remote) *httptest.Server {
	t.Helper()

	writeErr := func(w http.ResponseWriter, err error) {
		if errors.Is(err, fsio.ErrUnauthorized) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/event", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := fake.SignUp(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("password")); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	r.Post("/signin", func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		token, err := fake.SignIn(r.Context(), req.Email, req.Password, req.RememberMe)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(signInResponse{Token: string(token)})
	})

	r.Route("/files", func(r chi.Router) {
		r.Get("/items", func(w http.ResponseWriter, r *http.Request) {
			user, pass, _ := r.BasicAuth()
			items, err := fake.DownloadFileList(r.Context(), user, pass)
			if err != nil {
				writeErr(w, err)
				return
			}
			_ = json.NewEncoder(w).Encode(items)
		})

		r.Put("/*", func(w http.ResponseWriter, r *http.Request) {
			user, pass, _ := r.BasicAuth()
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := fake.UploadFile(r.Context(), user, pass, chi.URLParam(r, "*"), body); err != nil {
				writeErr(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Delete("/*", func(w http.ResponseWriter, r *http.Request) {
			user, pass, _ := r.BasicAuth()
			if err := fake.DeleteFile(r.Context(), user, pass, chi.URLParam(r, "*")); err != nil {
				writeErr(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, fake *remotetest.Remote) *Client {
	t.Helper()
	srv := newServer(t, fake)
	c, err := New(srv.URL+"/", zerolog.Nop(), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com", zerolog.Nop())
	assert.Error(t, err)

	_, err = New("::not a url", zerolog.Nop())
	assert.Error(t, err)
}

func TestClient_SignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	fake := remotetest.New()
	c := newClient(t, fake)

	require.NoError(t, c.SignUp(ctx, email, password))

	token, err := c.SignIn(ctx, email, password, true)
	require.NoError(t, err)
	assert.Equal(t, fsio.Token("token-"+email), token)
}

func TestClient_SignUpConflict(t *testing.T) {
	fake := remotetest.New()
	fake.AddAccount(email, password)
	c := newClient(t, fake)

	err := c.SignUp(context.Background(), email, password)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Code)
	assert.NotErrorIs(t, err, fsio.ErrUnauthorized)
}

func TestClient_SignInUnauthorized(t *testing.T) {
	fake := remotetest.New()
	fake.AddAccount(email, password)
	c := newClient(t, fake)

	_, err := c.SignIn(context.Background(), email, "nope", false)
	assert.ErrorIs(t, err, fsio.ErrUnauthorized)
}

func TestClient_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	fake := remotetest.New()
	fake.AddAccount(email, password)
	c := newClient(t, fake)

	for _, item := range []grocery.Item{{ID: "a", Name: "milk"}, {ID: "b", Name: "eggs", Completed: true}} {
		data, err := json.Marshal(item)
		require.NoError(t, err)
		require.NoError(t, c.UploadFile(ctx, email, password, fsio.ItemPath(item.ID), data))
	}
	assert.Equal(t, []string{"items/a", "items/b"}, fake.Files(email))

	items, err := c.DownloadFileList(ctx, email, password)
	require.NoError(t, err)
	assert.Equal(t, []grocery.Item{{ID: "a", Name: "milk"}, {ID: "b", Name: "eggs", Completed: true}}, items)

	require.NoError(t, c.DeleteFile(ctx, email, password, fsio.ItemPath("a")))
	assert.Equal(t, []string{"items/b"}, fake.Files(email))

	require.NoError(t, c.DeleteFile(ctx, email, password, fsio.ItemsPath))
	assert.Empty(t, fake.Files(email))
}

func TestClient_FileCallsRequireAuth(t *testing.T) {
	fake := remotetest.New()
	fake.AddAccount(email, password)
	c := newClient(t, fake)

	err := c.UploadFile(context.Background(), email, "wrong", "items/a", []byte(`{}`))
	assert.ErrorIs(t, err, fsio.ErrUnauthorized)

	_, err = c.DownloadFileList(context.Background(), "someone@else", password)
	assert.ErrorIs(t, err, fsio.ErrUnauthorized)
}

func TestClient_ServerErrorCarriesBody(t *testing.T) {
	fake := remotetest.New()
	fake.AddAccount(email, password)
	fake.Fail(fsio.OpDelete, remotetest.ErrInjected)
	c := newClient(t, fake)

	err := c.DeleteFile(context.Background(), email, password, fsio.ItemsPath)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Contains(t, se.Body, "injected failure")
}

func TestClient_DrivesProjector(t *testing.T) {
	ctx := context.Background()
	fake := remotetest.New()
	fake.AddAccount(email, password, grocery.Item{ID: "seed", Name: "bread"})
	p := fsio.New(newClient(t, fake), zerolog.Nop())

	var events []any
	for ev := range p.SignIn(ctx, email, password) {
		events = append(events, ev)
	}
	require.Len(t, events, 1)

	st := grocery.AppState{Items: []grocery.Item{{ID: "x", Name: "jam"}}}.
		WithCredentials(grocery.Credentials{Email: email, Password: password})
	require.NoError(t, p.SaveNewUserState(ctx, st).Wait(ctx))

	assert.Equal(t, []string{"items/seed", "items/x"}, fake.Files(email))
}

func TestFilePath(t *testing.T) {
	assert.Equal(t, "/files/items", filePath("items"))
	assert.Equal(t, "/files/items/a%20b", filePath("/items/a b/"))
}
