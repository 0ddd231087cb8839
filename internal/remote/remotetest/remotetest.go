// Package remotetest provides an in-memory remote file store for tests.
package remotetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/colonyops/shoplist/internal/core/fsio"
	"github.com/colonyops/shoplist/internal/core/grocery"
)

// ErrInjected is returned by calls configured to fail with [Remote.Fail] or
// [Remote.FailPath].
var ErrInjected = errors.New("remotetest: injected failure")

// Call records a single request made against the fake.
type Call struct {
	Op    fsio.Op
	Email string
	Path  string
}

// Remote is a thread-safe fake implementing [fsio.Remote]. Each account owns
// a flat map of path to file content.
type Remote struct {
	mu       sync.Mutex
	accounts map[string]string
	files    map[string]map[string][]byte
	calls    []Call
	fail     map[fsio.Op]error
	failPath map[opPath]error
	gate     map[fsio.Op]chan struct{}
}

type opPath struct {
	op   fsio.Op
	path string
}

var _ fsio.Remote = (*Remote)(nil)

// New returns an empty fake with no accounts.
func New() *Remote {
	return &Remote{
		accounts: map[string]string{},
		files:    map[string]map[string][]byte{},
		fail:     map[fsio.Op]error{},
		failPath: map[opPath]error{},
		gate:     map[fsio.Op]chan struct{}{},
	}
}

// AddAccount registers an account and optionally seeds its items.
func (r *Remote) AddAccount(email, password string, items ...grocery.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[email] = password
	files := map[string][]byte{}
	for _, item := range items {
		data, _ := json.Marshal(item)
		files[fsio.ItemPath(item.ID)] = data
	}
	r.files[email] = files
}

// Fail makes every subsequent call of op return err. A nil err clears it.
func (r *Remote) Fail(op fsio.Op, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil {
		delete(r.fail, op)
		return
	}
	r.fail[op] = err
}

// FailPath makes calls of op against path return err, leaving other paths
// untouched. A nil err clears it.
func (r *Remote) FailPath(op fsio.Op, path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := opPath{op: op, path: path}
	if err == nil {
		delete(r.failPath, key)
		return
	}
	r.failPath[key] = err
}

// Hold blocks calls of op until the returned release func is called.
func (r *Remote) Hold(op fsio.Op) (release func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan struct{})
	r.gate[op] = ch

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.gate, op)
			r.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns a copy of the call log.
func (r *Remote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsFor returns the logged calls of a single op.
func (r *Remote) CallsFor(op fsio.Op) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Files returns the sorted file paths stored for email.
func (r *Remote) Files(email string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make([]string, 0, len(r.files[email]))
	for p := range r.files[email] {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// File returns the content stored at path for email.
func (r *Remote) File(email, path string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.files[email][path]
	return data, ok
}

func (r *Remote) enter(ctx context.Context, op fsio.Op, email, path string) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Op: op, Email: email, Path: path})
	gate := r.gate[op]
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failPath[opPath{op: op, path: path}]; ok {
		return err
	}
	return r.fail[op]
}

func (r *Remote) authorize(email, password string) error {
	pw, ok := r.accounts[email]
	if !ok || pw != password {
		return fsio.ErrUnauthorized
	}
	return nil
}

func (r *Remote) SignUp(ctx context.Context, email, password string) error {
	if err := r.enter(ctx, fsio.OpSignUp, email, ""); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[email]; ok {
		return fmt.Errorf("account %s already exists", email)
	}
	r.accounts[email] = password
	r.files[email] = map[string][]byte{}
	return nil
}

func (r *Remote) SignIn(ctx context.Context, email, password string, _ bool) (fsio.Token, error) {
	if err := r.enter(ctx, fsio.OpSignIn, email, ""); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(email, password); err != nil {
		return "", err
	}
	return fsio.Token("token-" + email), nil
}

func (r *Remote) UploadFile(ctx context.Context, email, password, path string, content []byte) error {
	if err := r.enter(ctx, fsio.OpUpload, email, path); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(email, password); err != nil {
		return err
	}
	r.files[email][path] = append([]byte(nil), content...)
	return nil
}

func (r *Remote) DeleteFile(ctx context.Context, email, password, path string) error {
	if err := r.enter(ctx, fsio.OpDelete, email, path); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(email, password); err != nil {
		return err
	}
	for p := range r.files[email] {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(r.files[email], p)
		}
	}
	return nil
}

func (r *Remote) DownloadFileList(ctx context.Context, email, password string) ([]grocery.Item, error) {
	if err := r.enter(ctx, fsio.OpDownload, email, fsio.ItemsPath); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(email, password); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(r.files[email]))
	for p := range r.files[email] {
		if strings.HasPrefix(p, fsio.ItemsPath+"/") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	items := make([]grocery.Item, 0, len(paths))
	for _, p := range paths {
		var item grocery.Item
		if err := json.Unmarshal(r.files[email][p], &item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		items = append(items, item)
	}
	return items, nil
}
