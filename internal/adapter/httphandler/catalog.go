package httphandler

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

//go:embed fixture/products.json
var defaultFixture []byte

// A Catalog is the in-memory product set served by [CatalogHandler].
type Catalog struct {
	products []Product
}

func NewCatalog(ps []Product) Catalog {
	return Catalog{products: slices.Clone(ps)}
}

func DefaultCatalog() Catalog {
	c, err := decodeCatalog(defaultFixture)
	if err != nil {
		panic(err) // broken embedded fixture
	}
	return c
}

func LoadCatalog(r io.Reader) (Catalog, error) {
	const op = "LoadCatalog"

	data, err := io.ReadAll(r)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", op, err)
	}

	c, err := decodeCatalog(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func decodeCatalog(data []byte) (Catalog, error) {
	var ps []Product
	if err := json.Unmarshal(data, &ps); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog fixture: %w", err)
	}
	return NewCatalog(ps), nil
}

// List returns the active products.
func (c Catalog) List() []ProductResponse {
	res := []ProductResponse{}
	for _, p := range c.products {
		if p.Active {
			res = append(res, p.toResponse())
		}
	}
	return res
}

// Get returns the active product with the given id.
func (c Catalog) Get(id int) (ProductResponse, bool) {
	for _, p := range c.products {
		if p.ProductID == id && p.Active {
			return p.toResponse(), true
		}
	}
	return ProductResponse{}, false
}

func (c Catalog) Len() int {
	return len(c.products)
}
