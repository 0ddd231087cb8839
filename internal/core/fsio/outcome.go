package fsio

import "context"

// Outcome is the result of a best-effort remote write. The write runs to
// completion whether or not anyone looks at the Outcome; callers are free to
// drop it.
type Outcome struct {
	done chan struct{}
	err  error
}

func newOutcome() *Outcome {
	return &Outcome{done: make(chan struct{})}
}

func resolved(err error) *Outcome {
	o := newOutcome()
	o.resolve(err)
	return o
}

func (o *Outcome) resolve(err error) {
	o.err = err
	close(o.done)
}

// Done is closed once the write has finished.
func (o *Outcome) Done() <-chan struct{} {
	return o.done
}

// Err returns the write error. It is nil until Done is closed.
func (o *Outcome) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait blocks until the write finishes or ctx is done.
func (o *Outcome) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
