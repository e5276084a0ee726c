package handlers

import (
	"errors"
	"net/http"

	"bakery-menu-api/docstore"
	"bakery-menu-api/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetCategories returns all menu categories, newest first (public)
func GetCategories(c *gin.Context) {
	categories := Feed.Categories()
	c.JSON(http.StatusOK, gin.H{
		"count":      len(categories),
		"categories": categories,
	})
}

// GetCategoryProducts returns one category's products (public)
func GetCategoryProducts(c *gin.Context) {
	categoryID := c.Param("id")
	if _, err := Store.Get(models.CategoriesPath, categoryID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		zap.L().Error("categories: lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load category"})
		return
	}

	products := Feed.Products(categoryID)

	// Filter by veg preference
	switch c.Query("veg") {
	case "veg":
		products = filterVeg(products, true)
	case "nonveg":
		products = filterVeg(products, false)
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

func filterVeg(products []models.Product, veg bool) []models.Product {
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.IsVeg == veg {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// SearchProducts matches the flattened all-products index on name or
// description (public)
func SearchProducts(c *gin.Context) {
	results := Feed.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"count":    len(results),
		"products": results,
	})
}

// GetDeliveryCharge returns the current delivery charge setting (public)
func GetDeliveryCharge(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"amount": currentDeliveryCharge()})
}

func currentDeliveryCharge() int {
	doc, err := Store.Get(models.SettingsPath, models.DeliveryChargeDocID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			zap.L().Error("settings: delivery charge read failed", zap.Error(err))
		}
		return models.DefaultDeliveryCharge
	}
	return models.DecodeDeliveryCharge(doc)
}

// GetPageViews returns the total visit counter (public)
func GetPageViews(c *gin.Context) {
	doc, err := Store.Get(models.SettingsPath, models.PageViewsDocID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			zap.L().Error("settings: page views read failed", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"count": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": models.DecodePageViews(doc)})
}

// CountPageView increments the visit counter at most once per browser
// session, gated by a session cookie
func CountPageView(c *gin.Context) {
	if v, err := c.Cookie(viewedCookie); err == nil && v != "" {
		GetPageViews(c)
		return
	}
	if err := Store.Increment(models.SettingsPath, models.PageViewsDocID, "count", 1); err != nil {
		zap.L().Error("settings: page view increment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count visit"})
		return
	}
	c.SetCookie(viewedCookie, "true", 0, "/", "", false, true)
	GetPageViews(c)
}
