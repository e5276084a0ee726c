package models

import (
	"time"

	"bakery-menu-api/docstore"
)

type Product struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	HalfPrice    *float64  `json:"halfPrice"`
	Serves       string    `json:"quantity,omitempty"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	ImageURLs    []string  `json:"imageUrls,omitempty"`
	IsVeg        bool      `json:"isVeg"`
	CreatedAt    time.Time `json:"created_at"`
}

// DecodeProduct maps a raw document onto a Product. Every default lives
// here: name "Unnamed Item", price 0, isVeg true, missing optional
// fields absent. A halfPrice of explicit null stays nil while a stored 0
// decodes to a pointer to 0, so "no half price" and "half price of zero"
// remain distinguishable. The image list falls back to the single
// thumbnail field when only that is set.
func DecodeProduct(categoryID string, d docstore.Doc) Product {
	p := Product{
		ID:          d.ID,
		CategoryID:  categoryID,
		Name:        stringField(d.Data, "name", "Unnamed Item"),
		Price:       numberField(d.Data, "price", 0),
		Serves:      stringField(d.Data, "quantity", ""),
		Description: stringField(d.Data, "description", ""),
		ImageURL:    stringField(d.Data, "imageUrl", ""),
		IsVeg:       boolField(d.Data, "isVeg", true),
		CreatedAt:   d.CreatedAt,
	}
	if v, ok := d.Data["halfPrice"]; ok && v != nil {
		if n, ok := v.(float64); ok {
			p.HalfPrice = &n
		}
	}
	if urls, ok := d.Data["imageUrls"].([]any); ok {
		for _, u := range urls {
			if s, ok := u.(string); ok && s != "" {
				p.ImageURLs = append(p.ImageURLs, s)
			}
		}
	}
	if len(p.ImageURLs) == 0 && p.ImageURL != "" {
		p.ImageURLs = []string{p.ImageURL}
	}
	return p
}

func numberField(data map[string]any, key string, fallback float64) float64 {
	if v, ok := data[key].(float64); ok {
		return v
	}
	return fallback
}

func boolField(data map[string]any, key string, fallback bool) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return fallback
}
