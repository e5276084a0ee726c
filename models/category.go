package models

import (
	"time"

	"bakery-menu-api/docstore"
)

// CategoriesPath is the root collection holding menu categories
const CategoriesPath = "categories"

// ProductsPath returns the sub-collection path for a category's products
func ProductsPath(categoryID string) string {
	return CategoriesPath + "/" + categoryID + "/products"
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"created_at"`
}

// DecodeCategory maps a raw document onto a Category. Defaults for
// missing fields: name "Unnamed Category", image "", timestamp zero
// (zero timestamps sort as oldest).
func DecodeCategory(d docstore.Doc) Category {
	return Category{
		ID:        d.ID,
		Name:      stringField(d.Data, "name", "Unnamed Category"),
		ImageURL:  stringField(d.Data, "imageUrl", ""),
		CreatedAt: d.CreatedAt,
	}
}

func stringField(data map[string]any, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
