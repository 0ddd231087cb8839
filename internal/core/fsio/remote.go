package fsio

import (
	"context"
	"errors"

	"github.com/colonyops/shoplist/internal/core/grocery"
)

// ItemsPath is the remote path holding the account's item files. Deleting it
// clears the whole list.
const ItemsPath = "items"

// ItemPath returns the remote path of a single item file.
func ItemPath(id string) string {
	return ItemsPath + "/" + id
}

// ErrUnauthorized is returned by a Remote when credentials are rejected.
var ErrUnauthorized = errors.New("remote: unauthorized")

// Token is the opaque value returned by a successful sign-in. Credentials are
// still sent with every call; the token is not used for authorization.
type Token string

// Remote is the per-item file store the projector syncs to. Every call is
// authorized by email and password.
type Remote interface {
	// SignUp creates an account.
	SignUp(ctx context.Context, email, password string) error
	// SignIn verifies the credentials.
	SignIn(ctx context.Context, email, password string, rememberMe bool) (Token, error)
	// UploadFile writes content at path, replacing any existing file.
	UploadFile(ctx context.Context, email, password, path string, content []byte) error
	// DeleteFile removes path and anything below it.
	DeleteFile(ctx context.Context, email, password, path string) error
	// DownloadFileList returns every item file stored for the account.
	DownloadFileList(ctx context.Context, email, password string) ([]grocery.Item, error)
}

// ErrOffline is returned by [Offline] for every call.
var ErrOffline = errors.New("remote: no remote store configured")

// Offline is the Remote used when no remote store is configured. Signed-out
// use never reaches it; sign-up and sign-in fail with [ErrOffline].
type Offline struct{}

func (Offline) SignUp(context.Context, string, string) error { return ErrOffline }

func (Offline) SignIn(context.Context, string, string, bool) (Token, error) { return "", ErrOffline }

func (Offline) UploadFile(context.Context, string, string, string, []byte) error { return ErrOffline }

func (Offline) DeleteFile(context.Context, string, string, string) error { return ErrOffline }

func (Offline) DownloadFileList(context.Context, string, string) ([]grocery.Item, error) {
	return nil, ErrOffline
}
