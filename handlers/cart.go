package handlers

import (
	"errors"
	"net/http"

	"bakery-menu-api/cart"
	"bakery-menu-api/docstore"
	"bakery-menu-api/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AddCartItemRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
	ProductID  string `json:"product_id" binding:"required"`
	Portion    string `json:"portion" binding:"omitempty,oneof=full half"`
	Quantity   int    `json:"quantity" binding:"omitempty,min=1"`
	Serves     string `json:"serves"`
}

// GetCart returns the caller's cart lines and running totals
func GetCart(c *gin.Context) {
	store := sessionCart(c)
	items := store.Items()
	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"count":    store.Count(),
		"subtotal": store.Subtotal(),
	})
}

// AddCartItem snapshots the product's current price and display fields
// into a cart line, merging with an existing (product, portion) line.
// This is the only place prices are captured: later product edits never
// change lines already added.
func AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Portion == "" {
		req.Portion = cart.PortionFull
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	doc, err := Store.Get(models.ProductsPath(req.CategoryID), req.ProductID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		zap.L().Error("cart: product lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}
	product := models.DecodeProduct(req.CategoryID, doc)

	price := product.Price
	if req.Portion == cart.PortionHalf {
		if product.HalfPrice == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product has no half portion"})
			return
		}
		price = *product.HalfPrice
	}

	serves := req.Serves
	if serves == "" {
		serves = product.Serves
	}
	imageURL := ""
	if len(product.ImageURLs) > 0 {
		imageURL = product.ImageURLs[0]
	}

	item := cart.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     price,
		Portion:   req.Portion,
		Quantity:  req.Quantity,
		Serves:    serves,
		IsVeg:     product.IsVeg,
		ImageURL:  imageURL,
	}
	store := sessionCart(c)
	if err := store.Add(item); err != nil {
		zap.L().Error("cart: add failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Added to cart",
		"items":   store.Items(),
		"count":   store.Count(),
	})
}

type AdjustCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Portion   string `json:"portion" binding:"required,oneof=full half"`
	Delta     int    `json:"delta" binding:"required"`
}

// AdjustCartItem changes a line's quantity by a signed delta
func AdjustCartItem(c *gin.Context) {
	var req AdjustCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store := sessionCart(c)
	if err := store.Adjust(req.ProductID, req.Portion, req.Delta); err != nil {
		zap.L().Error("cart: adjust failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": store.Items(), "count": store.Count()})
}

// RemoveCartItem removes one line, identified by product id and portion
func RemoveCartItem(c *gin.Context) {
	productID := c.Query("product_id")
	portion := c.Query("portion")
	if productID == "" || portion == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and portion are required"})
		return
	}
	store := sessionCart(c)
	if err := store.Remove(productID, portion); err != nil {
		zap.L().Error("cart: remove failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": store.Items(), "count": store.Count()})
}

// ClearCart empties the caller's cart
func ClearCart(c *gin.Context) {
	store := sessionCart(c)
	if err := store.Clear(); err != nil {
		zap.L().Error("cart: clear failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// GetCartTotal computes the order total for a mode: pickup is the bare
// subtotal, delivery adds the current delivery charge
func GetCartTotal(c *gin.Context) {
	mode := c.DefaultQuery("mode", "pickup")
	if mode != "pickup" && mode != "delivery" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be pickup or delivery"})
		return
	}
	store := sessionCart(c)
	charge := currentDeliveryCharge()
	resp := gin.H{
		"mode":     mode,
		"subtotal": store.Subtotal(),
		"total":    store.Total(mode, charge),
	}
	if mode == "delivery" {
		resp["delivery_charge"] = charge
	}
	c.JSON(http.StatusOK, resp)
}
