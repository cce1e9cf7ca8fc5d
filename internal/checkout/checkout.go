// Package checkout converts the cart plus an optional customer and a
// payment method into a single sale creation request.
package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/FabricioIaronka/store-manager/domain"
	"github.com/FabricioIaronka/store-manager/internal/cart"
	"github.com/FabricioIaronka/store-manager/internal/catalog"
	"github.com/FabricioIaronka/store-manager/internal/rest"
	"github.com/FabricioIaronka/store-manager/internal/session"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSubmitInFlight     = errors.New("a submission is already in progress")
	ErrInvalidPaymentType = errors.New("invalid payment type")
)

type Checkout struct {
	session *session.Session
	catalog *catalog.Catalog
	cart    *cart.Cart

	mu         sync.Mutex
	client     *domain.Client
	submitting bool
}

func New(sess *session.Session, cat *catalog.Catalog, crt *cart.Cart) *Checkout {
	return &Checkout{session: sess, catalog: cat, cart: crt}
}

func (c *Checkout) Cart() *cart.Cart { return c.cart }

// SelectClientByCPF attaches the customer with the given tax identifier
// to the in-progress sale.
func (c *Checkout) SelectClientByCPF(ctx context.Context, cpf string) (*domain.Client, error) {
	client, err := c.catalog.ClientByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	return client, nil
}

// SelectedClient returns the attached customer, or nil for an anonymous
// sale.
func (c *Checkout) SelectedClient() *domain.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	cl := *c.client
	return &cl
}

func (c *Checkout) ClearClient() {
	c.mu.Lock()
	c.client = nil
	c.mu.Unlock()
}

// Submit sends the sale. Local precondition failures (empty cart, no
// session, submission already in flight) never reach the network. On
// success the cart and the selected customer are cleared and the
// product and sales caches invalidated; on failure everything is left
// intact so the user can adjust and retry.
func (c *Checkout) Submit(ctx context.Context, payment domain.PaymentType) error {
	if !payment.Valid() {
		return ErrInvalidPaymentType
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.submitting = true
	client := c.client
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	if c.cart.IsEmpty() {
		return ErrEmptyCart
	}
	if c.session.User() == nil {
		return rest.ErrNotAuthenticated
	}

	payload := domain.SaleCreate{PaymentType: payment}
	if client != nil {
		id := client.ID
		payload.ClientID = &id
	}
	for _, line := range c.cart.Lines() {
		payload.Items = append(payload.Items, domain.SaleItemCreate{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}

	if err := c.catalog.CreateSale(ctx, payload); err != nil {
		return err
	}

	c.cart.Clear()
	c.ClearClient()
	return nil
}
