package productapi

import "github.com/niksmo/catalog-imgcheck/internal/core/domain"

const unnamed = "<unnamed>"

// A product holds the fields the validator reads from the API.
//
// A null or absent Images decodes to nil, an empty array to an empty slice.
type product struct {
	ProductID int      `json:"IdProducto"`
	Name      *string  `json:"NombreBase"`
	ImageURL  *string  `json:"URLImagen"`
	Images    []string `json:"Images"`
}

func (p product) toDomain() domain.Product {
	name := unnamed
	if p.Name != nil {
		name = *p.Name
	}
	return domain.Product{
		ID:       p.ProductID,
		Name:     name,
		ImageURL: p.ImageURL,
		Images:   p.Images,
	}
}

func toDomain(ps []product) []domain.Product {
	res := make([]domain.Product, len(ps))
	for i := range ps {
		res[i] = ps[i].toDomain()
	}
	return res
}
