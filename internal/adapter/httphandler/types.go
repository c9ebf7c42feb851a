package httphandler

import "strings"

type (
	// A Product is a catalog record as the backend stores it.
	Product struct {
		ProductID    int         `json:"IdProducto"`
		Name         string      `json:"NombreBase"`
		Description  *string     `json:"Descripcion"`
		CategoryID   int         `json:"IdCategoria"`
		CategoryName string      `json:"NombreCategoria"`
		PetType      string      `json:"TipoMascota"`
		ImageURL     *string     `json:"URLImagen"`
		Active       bool        `json:"Activo"`
		Variations   []Variation `json:"Variaciones"`
	}

	Variation struct {
		VariationID int     `json:"IdVariacion"`
		ProductID   int     `json:"IdProducto"`
		Weight      string  `json:"Peso"`
		Price       float64 `json:"Precio"`
		Stock       int     `json:"Stock"`
		Active      bool    `json:"Activa"`
	}

	// A ProductResponse is the API representation of [Product].
	ProductResponse struct {
		Product
		Images []string `json:"Images"`
	}
)

func (p Product) toResponse() ProductResponse {
	images := []string{}
	if p.ImageURL != nil && strings.TrimSpace(*p.ImageURL) != "" {
		images = append(images, *p.ImageURL)
	}

	variations := p.Variations
	if variations == nil {
		variations = []Variation{}
	}
	p.Variations = variations

	return ProductResponse{Product: p, Images: images}
}
