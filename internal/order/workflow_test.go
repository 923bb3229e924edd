package order

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/tavola-client/internal/api"
	"github.com/xenking/tavola-client/internal/cart"
	"github.com/xenking/tavola-client/internal/menu"
	"github.com/xenking/tavola-client/internal/session"
)

type mockSession struct {
	identity *session.Identity
	epoch    uint64
}

func (m *mockSession) Authenticated() bool         { return m.identity != nil }
func (m *mockSession) Identity() *session.Identity { return m.identity }
func (m *mockSession) Epoch() uint64               { return m.epoch }

type mockGateway struct {
	response []byte
	err      error
	calls    int
	method   string
	endpoint string
	body     []byte
	onDo     func()
}

func (m *mockGateway) Do(_ context.Context, method, endpoint string, body []byte) ([]byte, error) {
	m.calls++
	m.method = method
	m.endpoint = endpoint
	m.body = body
	if m.onDo != nil {
		m.onDo()
	}
	return m.response, m.err
}

func jane() *session.Identity {
	return &session.Identity{ID: 42, Email: "a@b.com", FullName: "Jane", Phone: "5551234567", Role: "CUSTOMER"}
}

func pizza() menu.Item {
	return menu.Item{ID: 1, Name: "Pizza", Price: decimal.RequireFromString("9.5"), Category: "pizza", Available: true}
}

func TestSubmit_Unauthenticated(t *testing.T) {
	c := cart.New()
	c.Add(pizza())
	gw := &mockGateway{}
	w := NewWorkflow(&mockSession{}, c, gw, zap.NewNop())

	_, err := w.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, gw.calls, "validation failures must not reach the network")
	assert.Equal(t, StateFailed, w.State())
}

func TestSubmit_EmptyCart(t *testing.T) {
	gw := &mockGateway{}
	w := NewWorkflow(&mockSession{identity: jane()}, cart.New(), gw, zap.NewNop())

	_, err := w.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "your cart is empty", verr.Reason)
	assert.Zero(t, gw.calls)
}

func TestSubmit_BlankNameAndPhone(t *testing.T) {
	c := cart.New()
	c.Add(pizza())
	gw := &mockGateway{}
	w := NewWorkflow(&mockSession{identity: &session.Identity{ID: 1}}, c, gw, zap.NewNop())

	// Identity carries no name/phone, so the draft prefilled empty.
	_, err := w.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "please enter your name", verr.Reason)

	w.Draft().CustomerName = "   " // whitespace is not a name
	_, err = w.Submit(context.Background())
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "please enter your name", verr.Reason)

	w.Draft().CustomerName = "Jane"
	_, err = w.Submit(context.Background())
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "please enter your phone number", verr.Reason)

	assert.Zero(t, gw.calls)
}

func TestSubmit_PickupOrderSucceeds(t *testing.T) {
	c := cart.New()
	item := pizza()
	c.Add(item)
	c.Add(item)

	gw := &mockGateway{response: []byte(`{"id":101,"status":"pending","createdAt":"2025-06-15T12:30:45Z","totalAmount":19.00}`)}
	w := NewWorkflow(&mockSession{identity: jane()}, c, gw, zap.NewNop())
	w.Draft().DeliveryAddress = ""
	w.Draft().SpecialInstructions = "ring the bell"

	created, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(101), created.ID)
	assert.Equal(t, StateSucceeded, w.State())

	assert.Equal(t, http.MethodPost, gw.method)
	assert.Equal(t, "/orders", gw.endpoint)
	assert.JSONEq(t, `{
		"customerName": "Jane",
		"customerPhone": "5551234567",
		"deliveryAddress": "",
		"specialInstructions": "ring the bell",
		"totalAmount": 19,
		"items": [{"menuItemId": 1, "menuItemName": "Pizza", "quantity": 2, "price": 9.5}],
		"status": "PENDING",
		"user": {"id": 42}
	}`, string(gw.body))

	// Success clears the cart and resets the draft from the identity.
	assert.True(t, c.Empty())
	assert.Equal(t, "Jane", w.Draft().CustomerName)
	assert.Equal(t, "5551234567", w.Draft().CustomerPhone)
	assert.Empty(t, w.Draft().DeliveryAddress)
	assert.Empty(t, w.Draft().SpecialInstructions)
}

func TestSubmit_FailurePreservesCart(t *testing.T) {
	c := cart.New()
	c.Add(pizza())

	gw := &mockGateway{err: &api.Error{Status: 500, Message: "kitchen on fire"}}
	w := NewWorkflow(&mockSession{identity: jane()}, c, gw, zap.NewNop())

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "kitchen on fire", err.Error())
	assert.Equal(t, StateFailed, w.State())

	// The user can retry without re-entering items.
	assert.Equal(t, 1, c.ItemCount())
	assert.Equal(t, "Jane", w.Draft().CustomerName)
}

func TestSubmit_SessionExpiredPreservesCart(t *testing.T) {
	c := cart.New()
	c.Add(pizza())

	gw := &mockGateway{err: api.ErrSessionExpired}
	w := NewWorkflow(&mockSession{identity: jane()}, c, gw, zap.NewNop())

	_, err := w.Submit(context.Background())
	require.ErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, 1, c.ItemCount())
}

func TestSubmit_ExpiredSessionSurfacedOverStaleness(t *testing.T) {
	c := cart.New()
	c.Add(pizza())

	// A 401 makes the gateway force a logout, which bumps the session
	// epoch before Submit sees the error. The expiry must still win over
	// the staleness check so the user learns why the order failed.
	sess := &mockSession{identity: jane()}
	gw := &mockGateway{err: api.ErrSessionExpired}
	gw.onDo = func() {
		sess.identity = nil
		sess.epoch++
	}
	w := NewWorkflow(sess, c, gw, zap.NewNop())

	_, err := w.Submit(context.Background())
	require.ErrorIs(t, err, api.ErrSessionExpired)
	assert.NotErrorIs(t, err, ErrStaleSubmission)
	assert.Equal(t, StateFailed, w.State())
	assert.Equal(t, 1, c.ItemCount())
}

func TestSubmit_DoubleSubmissionGuard(t *testing.T) {
	c := cart.New()
	c.Add(pizza())

	sess := &mockSession{identity: jane()}
	gw := &mockGateway{response: []byte(`{"id":1}`)}
	w := NewWorkflow(sess, c, gw, zap.NewNop())

	var reentrant error
	gw.onDo = func() {
		// A second submit while the first is on the wire must be refused.
		_, reentrant = w.Submit(context.Background())
	}

	_, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.ErrorIs(t, reentrant, ErrSubmitInFlight)
	assert.Equal(t, 1, gw.calls)
}

func TestSubmit_StaleSessionDiscardsResult(t *testing.T) {
	c := cart.New()
	c.Add(pizza())

	sess := &mockSession{identity: jane()}
	gw := &mockGateway{response: []byte(`{"id":1}`)}
	w := NewWorkflow(sess, c, gw, zap.NewNop())

	// Session identity changes while the request is in flight.
	gw.onDo = func() { sess.epoch++ }

	_, err := w.Submit(context.Background())
	require.ErrorIs(t, err, ErrStaleSubmission)
	assert.Equal(t, StateIdle, w.State())

	// The stale response must not have cleared the cart.
	assert.Equal(t, 1, c.ItemCount())
}

func TestSubmit_MalformedCreateResponse(t *testing.T) {
	c := cart.New()
	c.Add(pizza())

	gw := &mockGateway{response: []byte(`not json`)}
	w := NewWorkflow(&mockSession{identity: jane()}, c, gw, zap.NewNop())

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode created order")
	assert.Equal(t, 1, c.ItemCount())
}

func TestNewWorkflow_PrefillsDraft(t *testing.T) {
	w := NewWorkflow(&mockSession{identity: jane()}, cart.New(), &mockGateway{}, zap.NewNop())

	assert.Equal(t, "Jane", w.Draft().CustomerName)
	assert.Equal(t, "5551234567", w.Draft().CustomerPhone)
	assert.Equal(t, StateIdle, w.State())
}

func TestDraft_PrefillKeepsUserEdits(t *testing.T) {
	d := Draft{CustomerName: "Custom Name"}
	d.Prefill(jane())

	assert.Equal(t, "Custom Name", d.CustomerName)
	assert.Equal(t, "5551234567", d.CustomerPhone)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestSubmit_TotalMatchesCart(t *testing.T) {
	c := cart.New()
	espresso := menu.Item{ID: 2, Name: "Espresso", Price: decimal.RequireFromString("2.50"), Available: true}
	c.Add(pizza())
	c.Add(espresso)
	require.NoError(t, c.UpdateQuantity(2, 3))

	gw := &mockGateway{response: []byte(`{"id":5}`)}
	w := NewWorkflow(&mockSession{identity: jane()}, c, gw, zap.NewNop())

	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	// 9.5 + 3*2.50 = 17
	assert.Contains(t, string(gw.body), `"totalAmount":17`)
}
