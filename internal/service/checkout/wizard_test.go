package checkout

import (
	"context"
	"errors"
	"testing"

	"omcis-store/internal/service/cart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkToPayment(t *testing.T, w *Wizard, c *cart.Cart) {
	t.Helper()
	require.NoError(t, w.Next(c))
	require.NoError(t, w.SetAddress(address))
	require.NoError(t, w.Next(c))
	require.Equal(t, StepPayment, w.Step())
}

func TestWizard_SummaryNeedsItems(t *testing.T) {
	w := NewWizard()
	assert.ErrorIs(t, w.Next(cart.New()), ErrEmptyCart)
	assert.Equal(t, StepSummary, w.Step())
}

func TestWizard_AddressNeedsRequiredFields(t *testing.T) {
	w := NewWizard()
	c := filledCart()
	require.NoError(t, w.Next(c))

	partial := address
	partial.City = ""
	require.NoError(t, w.SetAddress(partial))
	err := w.Next(c)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	var addrErr *AddressError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, []string{"city"}, addrErr.Missing)
	assert.Equal(t, StepAddress, w.Step())
}

func TestWizard_BackAndForth(t *testing.T) {
	w := NewWizard()
	c := filledCart()
	assert.ErrorIs(t, w.Back(), ErrStepNotAllowed)

	walkToPayment(t, w, c)
	assert.ErrorIs(t, w.Next(c), ErrStepNotAllowed, "payment only advances through Finish")
	require.NoError(t, w.Back())
	assert.Equal(t, StepAddress, w.Step())
	require.NoError(t, w.Back())
	assert.Equal(t, StepSummary, w.Step())
	assert.ErrorIs(t, w.SetAddress(address), ErrStepNotAllowed)
}

func TestWizard_FinishReachesConfirmation(t *testing.T) {
	store := &stubBatchWriter{}
	svc := New(store, nil)
	svc.newID = func() string { return "order-9" }
	w := NewWizard()
	c := filledCart()
	walkToPayment(t, w, c)

	id, err := w.Finish(context.Background(), svc, buyer, c)
	require.NoError(t, err)
	assert.Equal(t, "order-9", id)
	assert.Equal(t, StepConfirmation, w.Step())
	assert.Equal(t, "order-9", w.State().OrderID)
	assert.Equal(t, address, store.placed[0].ShippingAddress)

	assert.ErrorIs(t, w.Back(), ErrStepNotAllowed)
	w.Reset()
	assert.Equal(t, StepSummary, w.Step())
	assert.Empty(t, w.State().OrderID)
}

func TestWizard_FailedFinishStaysOnPayment(t *testing.T) {
	svc := New(&stubBatchWriter{err: errors.New("timeout")}, nil)
	w := NewWizard()
	c := filledCart()
	walkToPayment(t, w, c)

	_, err := w.Finish(context.Background(), svc, buyer, c)
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.Equal(t, StepPayment, w.Step())
	assert.False(t, c.IsEmpty())

	_, err = w.Finish(context.Background(), svc, nil, c)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, StepPayment, w.Step())
}

func TestWizard_FinishOutsidePayment(t *testing.T) {
	store := &stubBatchWriter{}
	_, err := NewWizard().Finish(context.Background(), New(store, nil), buyer, filledCart())
	assert.ErrorIs(t, err, ErrStepNotAllowed)
	assert.Equal(t, 0, store.calls)
}
