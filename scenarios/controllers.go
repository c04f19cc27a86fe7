package scenarios

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/invoke"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/results"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/store"
)

type Product struct {
	ID    int
	Name  string
	Price float64
}

// NullReferenceError is returned when an operation needs a value that is missing.
type NullReferenceError struct {
	Message string
}

func (e *NullReferenceError) Error() string { return e.Message }

// InvalidOperationError is returned when an operation is not allowed in the current state.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string { return e.Message }

// Catalog is the product data source shared by the sample controllers.
type Catalog map[int]Product

func DefaultCatalog() Catalog {
	return Catalog{
		1: {ID: 1, Name: "Tea", Price: 3.5},
		2: {ID: 2, Name: "Coffee", Price: 4},
		3: {ID: 3, Name: "Cocoa", Price: 4.25},
	}
}

func (c Catalog) Sorted() []Product {
	ret := make([]Product, 0, len(c))
	for _, p := range c {
		ret = append(ret, p)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

// ProductsController is a sample controller. Cart entries are written to Session.
type ProductsController struct {
	Catalog Catalog
	Session *store.MapStore
}

func (c *ProductsController) Index() (interface{}, error) {
	return results.View{Model: c.Catalog.Sorted()}, nil
}

func (c *ProductsController) Details(id int) (interface{}, error) {
	p, ok := c.Catalog[id]
	if !ok {
		return results.NotFound(), nil
	}
	return results.OK{Value: p}, nil
}

func (c *ProductsController) Delete(id int) (interface{}, error) {
	if c.Catalog == nil {
		return nil, &NullReferenceError{Message: "boom"}
	}
	if _, ok := c.Catalog[id]; !ok {
		return nil, &InvalidOperationError{Message: fmt.Sprintf("product %d does not exist", id)}
	}
	delete(c.Catalog, id)
	return results.Redirect{URL: "/products"}, nil
}

// AddToCart stores each product under "cart:<id>" in the session.
func (c *ProductsController) AddToCart(ids ...int) (interface{}, error) {
	if c.Session == nil {
		return nil, &NullReferenceError{Message: "no session"}
	}
	for _, id := range ids {
		p, ok := c.Catalog[id]
		if !ok {
			return results.BadRequest(fmt.Sprintf("unknown product %d", id)), nil
		}
		c.Session.Set(fmt.Sprintf("cart:%d", id), p.Name)
	}
	return results.Redirect{URL: "/cart"}, nil
}

// Search finds products by name asynchronously.
func (c *ProductsController) Search(ctx context.Context, query string) (interface{}, error) {
	return invoke.Go(ctx, func(ctx context.Context) (interface{}, error) {
		select {
		case <-time.After(time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		var found []Product
		for _, p := range c.Catalog.Sorted() {
			if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
				found = append(found, p)
			}
		}
		return results.JSONOf(found), nil
	}), nil
}
