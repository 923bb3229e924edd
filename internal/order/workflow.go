// Package order implements the order-submission workflow: validate the cart
// and draft, build the wire payload, submit it, and settle the client state
// on the outcome.
package order

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/tavola-client/internal/cart"
	"github.com/xenking/tavola-client/internal/history"
	"github.com/xenking/tavola-client/internal/session"
)

var (
	// ErrSubmitInFlight guards against re-entrant double submission while a
	// request is on the wire.
	ErrSubmitInFlight = errors.New("an order submission is already in progress")
	// ErrStaleSubmission is returned when the session changed identity while
	// the request was in flight; the response is discarded.
	ErrStaleSubmission = errors.New("session changed during submission, order state discarded")
)

// ValidationError is a client-side precondition failure. It never reaches
// the network.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// State is the workflow's position in its submission lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the view of the session store the workflow needs.
type Session interface {
	Authenticated() bool
	Identity() *session.Identity
	Epoch() uint64
}

// Doer executes an API call and returns the raw response body.
type Doer interface {
	Do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error)
}

// Workflow drives a cart and draft through Idle -> Validating -> Submitting
// -> Succeeded | Failed. It is single-writer like the rest of the client
// state: Submit is called from the UI event goroutine only.
type Workflow struct {
	session Session
	cart    *cart.Cart
	gateway Doer
	lg      *zap.Logger

	draft Draft
	state State
}

// NewWorkflow creates a Workflow over the given session, cart, and gateway.
// The draft starts prefilled from the current identity.
func NewWorkflow(sess Session, c *cart.Cart, gateway Doer, lg *zap.Logger) *Workflow {
	w := &Workflow{
		session: sess,
		cart:    c,
		gateway: gateway,
		lg:      lg,
	}
	w.draft.Prefill(sess.Identity())
	return w
}

// Draft exposes the mutable draft for the form layer.
func (w *Workflow) Draft() *Draft {
	return &w.draft
}

// State returns the workflow's current state.
func (w *Workflow) State() State {
	return w.state
}

// Submit validates and submits the current cart as an order.
//
// On success the cart is cleared, the draft reset, and the created order
// returned so the view can switch to the order history. On any failure the
// cart is preserved so the user can retry without re-entering items.
func (w *Workflow) Submit(ctx context.Context) (*history.Record, error) {
	if w.state == StateSubmitting {
		return nil, ErrSubmitInFlight
	}

	w.state = StateValidating
	if err := w.validate(); err != nil {
		// Failed is not terminal: the next Submit restarts the cycle once
		// the user has corrected the draft or cart.
		w.state = StateFailed
		return nil, err
	}

	payload := encodePayload(w.draft, w.cart.Lines(), w.cart.Total(), w.session.Identity())

	w.state = StateSubmitting
	epoch := w.session.Epoch()

	data, err := w.gateway.Do(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		// Errors are surfaced even when they themselves invalidated the
		// session (an expired-session 401 bumps the epoch via the
		// gateway's forced logout).
		w.state = StateFailed
		w.lg.Warn("Order submission failed", zap.Error(err))
		return nil, err
	}

	// The session may have changed identity while the request was in
	// flight (logout, forced invalidation). A successful result no longer
	// belongs to the current session: discard it and leave the cart alone.
	if w.session.Epoch() != epoch {
		w.state = StateIdle
		return nil, ErrStaleSubmission
	}

	created, err := history.DecodeOne(data)
	if err != nil {
		w.state = StateFailed
		return nil, errors.Wrap(err, "decode created order")
	}

	w.state = StateSucceeded
	w.cart.Clear()
	w.draft.Reset(w.session.Identity())
	w.lg.Info("Order placed", zap.Int64("order_id", created.ID))
	return &created, nil
}

func (w *Workflow) validate() error {
	if !w.session.Authenticated() {
		return &ValidationError{Reason: "please log in to place an order"}
	}
	if w.cart.Empty() {
		return &ValidationError{Reason: "your cart is empty"}
	}
	if strings.TrimSpace(w.draft.CustomerName) == "" {
		return &ValidationError{Reason: "please enter your name"}
	}
	if strings.TrimSpace(w.draft.CustomerPhone) == "" {
		return &ValidationError{Reason: "please enter your phone number"}
	}
	return nil
}
