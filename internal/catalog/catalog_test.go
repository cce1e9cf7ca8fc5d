package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabricioIaronka/store-manager/domain"
	"github.com/FabricioIaronka/store-manager/internal/rest"
)

// collectionBackend serves one product, one client and one sale and
// counts list fetches per collection.
type collectionBackend struct {
	mu       sync.Mutex
	gets     map[string]int
	delay    time.Duration
	failPost bool
}

func newCollectionBackend() *collectionBackend {
	return &collectionBackend{gets: map[string]int{}}
}

func (b *collectionBackend) fetches(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets[path]
}

func (b *collectionBackend) handler() http.Handler {
	mux := http.NewServeMux()

	list := func(path string, payload any) {
		mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
			if b.delay > 0 {
				time.Sleep(b.delay)
			}
			b.mu.Lock()
			b.gets[path]++
			b.mu.Unlock()
			json.NewEncoder(w).Encode(payload)
		})
	}
	list("/products/", []domain.Product{{ID: 1, Name: "Teclado", Qnt: 10, Price: 150.99}})
	list("/clients/", []domain.Client{{ID: 1, Name: "João", CPF: "111.222.333-44"}})
	list("/sales/", []domain.Sale{{ID: 1, TotalValue: 150.99, PaymentType: domain.PaymentPix}})

	mutate := func(pattern string) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			fail := b.failPost
			b.mu.Unlock()
			if fail {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"rejected"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{}`))
		})
	}
	mutate("POST /products/")
	mutate("PUT /products/{id}")
	mutate("DELETE /products/{id}")
	mutate("POST /clients/")
	mutate("POST /sales/")

	mux.HandleFunc("GET /clients/cpf/{cpf}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("cpf") != "111.222.333-44" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"no client found with this cpf"}`))
			return
		}
		json.NewEncoder(w).Encode(domain.Client{ID: 1, Name: "João", CPF: "111.222.333-44"})
	})

	return mux
}

func newCatalog(t *testing.T, srv *httptest.Server) *Catalog {
	t.Helper()
	api, err := rest.New(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return New(api)
}

func TestProductsAreServedFromCacheWithinStaleWindow(t *testing.T) {
	backend := newCollectionBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	cat := newCatalog(t, srv)
	ctx := context.Background()

	first, err := cat.Products(ctx)
	require.NoError(t, err)
	second, err := cat.Products(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.fetches("/products/"))
}

func TestClientsAreAlwaysRefetched(t *testing.T) {
	backend := newCollectionBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	cat := newCatalog(t, srv)
	ctx := context.Background()

	_, err := cat.Clients(ctx)
	require.NoError(t, err)
	_, err = cat.Clients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.fetches("/clients/"))
}

func TestInvalidateForcesRefetch(t *testing.T) {
	backend := newCollectionBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	cat := newCatalog(t, srv)
	ctx := context.Background()

	_, err := cat.Products(ctx)
	require.NoError(t, err)
	cat.InvalidateProducts()
	_, err = cat.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.fetches("/products/"))
}

func TestMutationsInvalidateTheirCollection(t *testing.T) {
	backend := newCollectionBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	cat := newCatalog(t, srv)
	ctx := context.Background()

	_, err := cat.Products(ctx)
	require.NoError(t, err)
	require.NoError(t, cat.CreateProduct(ctx, ProductInput{Name: "Mouse", Qnt: 5, Price: 80.50}))
	_, err = cat.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.fetches("/products/"))
}

func TestFailedMutationKeepsCacheValid(t *testing.T) {
	backend := newCollectionBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	cat := newCatalog(t, srv)
	ctx := context.Background()

	_, err := cat.Products(ctx)
	require.NoError(t, err)

	backend.mu.Lock()
	backend.failPost = true
	backend.mu.Unlock()
	err = cat.CreateProduct(ctx, ProductInput{Name: "Mouse", Qnt: 5, Price: 80.50})
	var apiErr *rest.APIError
	require.ErrorAs(t, err, &apiErr)

	_, err = cat.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.fetches("/products/"))
}

func TestCreateSaleInvalidatesSalesAndProducts(t *testing.T) {
	backend := newCollectionBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	cat := newCatalog(t, srv)
	ctx := context.Background()

	_, err := cat.Products(ctx)
	require.NoError(t, err)
	_, err = cat.Sales(ctx)
	require.NoError(t, err)

	require.NoError(t, cat.CreateSale(ctx, domain.SaleCreate{
		PaymentType: domain.PaymentMoney,
		Items:       []domain.SaleItemCreate{{ProductID: 1, Quantity: 1}},
	}))

	_, err = cat.Products(ctx)
	require.NoError(t, err)
	_, err = cat.Sales(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.fetches("/products/"))
	assert.Equal(t, 2, backend.fetches("/sales/"))
}

func TestClientByCPF(t *testing.T) {
	backend := newCollectionBackend()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	cat := newCatalog(t, srv)
	client, err := cat.ClientByCPF(context.Background(), "111.222.333-44")
	require.NoError(t, err)
	assert.Equal(t, "João", client.Name)

	_, err = cat.ClientByCPF(context.Background(), "999")
	var apiErr *rest.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestConcurrentReadsAreDeduplicated(t *testing.T) {
	backend := newCollectionBackend()
	backend.delay = 50 * time.Millisecond
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	cat := newCatalog(t, srv)
	ctx := context.Background()

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cat.Products(ctx); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Equal(t, 1, backend.fetches("/products/"))
}
