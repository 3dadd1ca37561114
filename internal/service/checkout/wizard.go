package checkout

import (
	"context"
	"errors"
	"strings"

	"omcis-store/internal/domain"
	"omcis-store/internal/service/cart"
)

type Step string

const (
	StepSummary      Step = "summary"
	StepAddress      Step = "address"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

var (
	ErrStepNotAllowed = errors.New("checkout step not allowed")
	ErrInvalidAddress = errors.New("invalid shipping address")
)

// AddressError lists the required address fields that are blank.
type AddressError struct {
	Missing []string
}

func (e *AddressError) Error() string {
	return "missing address fields: " + strings.Join(e.Missing, ", ")
}

func (e *AddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// Placer places an order for the cart.
type Placer interface {
	PlaceOrder(ctx context.Context, principal *domain.Principal, c *cart.Cart, addr domain.ShippingAddress) (string, error)
}

// Wizard walks summary → address → payment → confirmation. Confirmation is only
// reached through Finish.
type Wizard struct {
	step    Step
	address domain.ShippingAddress
	orderID string
}

func NewWizard() *Wizard {
	return &Wizard{step: StepSummary}
}

// State is what clients see of the wizard.
type State struct {
	Step    Step                   `json:"step"`
	Address domain.ShippingAddress `json:"address"`
	OrderID string                 `json:"orderId,omitempty"`
}

func (w *Wizard) State() State {
	return State{Step: w.step, Address: w.address, OrderID: w.orderID}
}

func (w *Wizard) Step() Step {
	return w.step
}

// Next advances one step. Leaving summary needs a non-empty cart and leaving address
// needs a complete address; payment only advances through Finish.
func (w *Wizard) Next(c *cart.Cart) error {
	switch w.step {
	case StepSummary:
		if c.IsEmpty() {
			return ErrEmptyCart
		}
		w.step = StepAddress
	case StepAddress:
		if missing := w.address.Missing(); len(missing) > 0 {
			return &AddressError{Missing: missing}
		}
		w.step = StepPayment
	default:
		return ErrStepNotAllowed
	}
	return nil
}

func (w *Wizard) Back() error {
	switch w.step {
	case StepAddress:
		w.step = StepSummary
	case StepPayment:
		w.step = StepAddress
	default:
		return ErrStepNotAllowed
	}
	return nil
}

// SetAddress stores the shipping address while on the address step.
func (w *Wizard) SetAddress(addr domain.ShippingAddress) error {
	if w.step != StepAddress {
		return ErrStepNotAllowed
	}
	w.address = addr
	return nil
}

// Finish places the order from the payment step. On error the wizard stays on payment.
func (w *Wizard) Finish(ctx context.Context, p Placer, principal *domain.Principal, c *cart.Cart) (string, error) {
	if w.step != StepPayment {
		return "", ErrStepNotAllowed
	}
	id, err := p.PlaceOrder(ctx, principal, c, w.address)
	if err != nil {
		return "", err
	}
	w.orderID = id
	w.step = StepConfirmation
	return id, nil
}

// Reset returns to summary. The address is kept for the next checkout.
func (w *Wizard) Reset() {
	w.step = StepSummary
	w.orderID = ""
}
