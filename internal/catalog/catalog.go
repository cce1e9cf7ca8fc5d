// Package catalog mirrors the server collections (products, clients,
// sales) as read-through caches. Mutations invalidate the affected
// collection on success; the cache is never patched in place.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/FabricioIaronka/store-manager/domain"
	"github.com/FabricioIaronka/store-manager/internal/rest"
)

// Staleness windows per collection. Clients are always refetched on
// access; products and sales tolerate a short window of staleness.
const (
	productsStaleAfter = 5 * time.Minute
	salesStaleAfter    = time.Minute
)

type Catalog struct {
	api      *rest.Client
	products *collection[domain.Product]
	clients  *collection[domain.Client]
	sales    *collection[domain.Sale]
}

func New(api *rest.Client) *Catalog {
	return &Catalog{
		api:      api,
		products: newCollection[domain.Product]("/products/", productsStaleAfter),
		clients:  newCollection[domain.Client]("/clients/", 0),
		sales:    newCollection[domain.Sale]("/sales/", salesStaleAfter),
	}
}

func (c *Catalog) Products(ctx context.Context) ([]domain.Product, error) {
	return c.products.get(ctx, c.api)
}

func (c *Catalog) Clients(ctx context.Context) ([]domain.Client, error) {
	return c.clients.get(ctx, c.api)
}

func (c *Catalog) Sales(ctx context.Context) ([]domain.Sale, error) {
	return c.sales.get(ctx, c.api)
}

func (c *Catalog) InvalidateProducts() { c.products.invalidate() }
func (c *Catalog) InvalidateClients()  { c.clients.invalidate() }
func (c *Catalog) InvalidateSales()    { c.sales.invalidate() }

// ProductInput carries the mutable fields of a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Qnt         int64   `json:"qnt"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (c *Catalog) CreateProduct(ctx context.Context, in ProductInput) error {
	if err := c.api.Post(ctx, "/products/", in, nil); err != nil {
		return err
	}
	c.products.invalidate()
	return nil
}

func (c *Catalog) UpdateProduct(ctx context.Context, id int64, in ProductInput) error {
	if err := c.api.Put(ctx, fmt.Sprintf("/products/%d", id), in, nil); err != nil {
		return err
	}
	c.products.invalidate()
	return nil
}

func (c *Catalog) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, fmt.Sprintf("/products/%d", id)); err != nil {
		return err
	}
	c.products.invalidate()
	return nil
}

// ClientInput carries the mutable fields of a customer record.
type ClientInput struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Number  string `json:"number"`
	Email   string `json:"email"`
	CPF     string `json:"cpf"`
}

func (c *Catalog) CreateClient(ctx context.Context, in ClientInput) error {
	if err := c.api.Post(ctx, "/clients/", in, nil); err != nil {
		return err
	}
	c.clients.invalidate()
	return nil
}

func (c *Catalog) UpdateClient(ctx context.Context, id int64, in ClientInput) error {
	if err := c.api.Put(ctx, fmt.Sprintf("/clients/%d", id), in, nil); err != nil {
		return err
	}
	c.clients.invalidate()
	return nil
}

func (c *Catalog) DeleteClient(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, fmt.Sprintf("/clients/%d", id)); err != nil {
		return err
	}
	c.clients.invalidate()
	return nil
}

// ClientByCPF resolves a customer by the unique tax identifier, used
// when attaching a customer to a sale. The lookup bypasses the cache.
func (c *Catalog) ClientByCPF(ctx context.Context, cpf string) (*domain.Client, error) {
	var client domain.Client
	if err := c.api.Get(ctx, "/clients/cpf/"+cpf, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// CreateSale submits a sale. On success the sales cache is invalidated
// (a new record exists) together with the products cache (stock levels
// changed server-side).
func (c *Catalog) CreateSale(ctx context.Context, in domain.SaleCreate) error {
	if err := c.api.Post(ctx, "/sales/", in, nil); err != nil {
		return err
	}
	c.sales.invalidate()
	c.products.invalidate()
	return nil
}
