package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabricioIaronka/store-manager/domain"
	"github.com/FabricioIaronka/store-manager/internal/cart"
	"github.com/FabricioIaronka/store-manager/internal/catalog"
	"github.com/FabricioIaronka/store-manager/internal/rest"
	"github.com/FabricioIaronka/store-manager/internal/session"
	"github.com/FabricioIaronka/store-manager/internal/state"
)

type salesBackend struct {
	mu        sync.Mutex
	saleCalls int
	lastSale  domain.SaleCreate
	failSale  string
	saleDelay time.Duration
}

func (b *salesBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok", Path: "/"})
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.User{ID: 1, Name: "Fabricio", Email: "fab@example.com",
			Stores: []domain.Store{{ID: 2, Name: "Matriz"}}})
	})
	mux.HandleFunc("GET /clients/cpf/{cpf}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.Client{ID: 9, Name: "João", Surname: "da Silva", CPF: r.PathValue("cpf")})
	})
	mux.HandleFunc("POST /sales/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.saleCalls++
		delay, fail := b.saleDelay, b.failSale
		b.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		if fail != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": fail})
			return
		}
		var req domain.SaleCreate
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.lastSale = req
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	})

	return mux
}

func (b *salesBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saleCalls
}

type fixture struct {
	backend  *salesBackend
	session  *session.Session
	checkout *Checkout
}

func newFixture(t *testing.T, signedIn bool) *fixture {
	t.Helper()
	backend := &salesBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	api, err := rest.New(srv.URL, 5*time.Second)
	require.NoError(t, err)
	sess := session.New(api, &state.Memory{})
	api.SetStoreIDSource(sess.ActiveStoreID)

	if signedIn {
		_, err = sess.SignIn(context.Background(), "fab@example.com", "s3cret")
		require.NoError(t, err)
	}

	cat := catalog.New(api)
	return &fixture{
		backend:  backend,
		session:  sess,
		checkout: New(sess, cat, cart.New()),
	}
}

func TestSubmitSuccessClearsCartAndCustomer(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.checkout.Cart().Add(domain.Product{ID: 1, Name: "Teclado", Qnt: 10, Price: 150.99}, 2))
	_, err := f.checkout.SelectClientByCPF(ctx, "111.222.333-44")
	require.NoError(t, err)

	require.NoError(t, f.checkout.Submit(ctx, domain.PaymentPix))

	assert.True(t, f.checkout.Cart().IsEmpty())
	assert.Nil(t, f.checkout.SelectedClient())
	assert.Equal(t, 1, f.backend.calls())

	// Payload carries product and quantity but never a price; the
	// customer travels as an id.
	require.Len(t, f.backend.lastSale.Items, 1)
	assert.Equal(t, domain.SaleItemCreate{ProductID: 1, Quantity: 2}, f.backend.lastSale.Items[0])
	require.NotNil(t, f.backend.lastSale.ClientID)
	assert.Equal(t, int64(9), *f.backend.lastSale.ClientID)
	assert.Equal(t, domain.PaymentPix, f.backend.lastSale.PaymentType)
}

func TestSubmitFailureLeavesEverythingIntact(t *testing.T) {
	f := newFixture(t, true)
	f.backend.failSale = `insufficient stock for "Teclado": 1 available`
	ctx := context.Background()

	require.NoError(t, f.checkout.Cart().Add(domain.Product{ID: 1, Name: "Teclado", Qnt: 10, Price: 150.99}, 2))
	_, err := f.checkout.SelectClientByCPF(ctx, "111.222.333-44")
	require.NoError(t, err)
	before := f.checkout.Cart().Lines()

	err = f.checkout.Submit(ctx, domain.PaymentMoney)
	var apiErr *rest.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, f.backend.failSale, apiErr.Detail)

	assert.Equal(t, before, f.checkout.Cart().Lines())
	assert.NotNil(t, f.checkout.SelectedClient())
}

func TestSubmitEmptyCartFailsLocally(t *testing.T) {
	f := newFixture(t, true)
	err := f.checkout.Submit(context.Background(), domain.PaymentMoney)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.backend.calls())
}

func TestSubmitWithoutSessionFailsLocally(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, f.checkout.Cart().Add(domain.Product{ID: 1, Qnt: 10, Price: 1}, 1))

	err := f.checkout.Submit(context.Background(), domain.PaymentMoney)
	require.ErrorIs(t, err, rest.ErrNotAuthenticated)
	assert.Zero(t, f.backend.calls())
}

func TestSubmitRejectsUnknownPaymentType(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.checkout.Cart().Add(domain.Product{ID: 1, Qnt: 10, Price: 1}, 1))

	err := f.checkout.Submit(context.Background(), domain.PaymentType("CHECK"))
	require.ErrorIs(t, err, ErrInvalidPaymentType)
	assert.Zero(t, f.backend.calls())
}

func TestSubmitGuardsAgainstDoubleSubmission(t *testing.T) {
	f := newFixture(t, true)
	f.backend.saleDelay = 150 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, f.checkout.Cart().Add(domain.Product{ID: 1, Qnt: 10, Price: 1}, 1))

	done := make(chan error, 1)
	go func() { done <- f.checkout.Submit(ctx, domain.PaymentMoney) }()

	// Give the first submission time to reach the wire.
	time.Sleep(50 * time.Millisecond)
	err := f.checkout.Submit(ctx, domain.PaymentMoney)
	require.ErrorIs(t, err, ErrSubmitInFlight)

	require.NoError(t, <-done)
	assert.Equal(t, 1, f.backend.calls())
}
