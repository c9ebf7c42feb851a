package domain

import "strings"

// A Product is the catalog record as returned by the product API.
//
// ImageURL is nil when the API sent null or omitted the field.
// Images is nil when the Images key was absent or null.
type Product struct {
	ID       int
	Name     string
	ImageURL *string
	Images   []string
}

// HasImageURL reports whether the stored image URL is non-blank.
func (p Product) HasImageURL() bool {
	return p.ImageURL != nil && strings.TrimSpace(*p.ImageURL) != ""
}

// ExpectedImages returns the list the backend derives from ImageURL.
func (p Product) ExpectedImages() []string {
	if !p.HasImageURL() {
		return []string{}
	}
	return []string{*p.ImageURL}
}

// FirstImage returns the first image URL or an empty string.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type Classification string

const (
	MissingField Classification = "MissingField"
	EmptyField   Classification = "EmptyField"
	Populated    Classification = "Populated"
)

// Failed reports whether the classification counts against the run.
func (c Classification) Failed() bool {
	return c == MissingField || c == EmptyField
}
