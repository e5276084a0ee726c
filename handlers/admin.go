package handlers

import (
	"errors"
	"net/http"
	"strings"

	"bakery-menu-api/config"
	"bakery-menu-api/docstore"
	"bakery-menu-api/images"
	"bakery-menu-api/middleware"
	"bakery-menu-api/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin checks the shared admin password and issues a session token
func AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(config.AdminPasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}
	token, err := middleware.GenerateAdminToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})
}

// ── Category management ─────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"required"`
}

// CreateCategory stores a new category. The name is normalized to
// title case; duplicates are allowed.
func CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := models.FormatName(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}
	id, err := Store.Add(models.CategoriesPath, map[string]any{
		"name":     name,
		"imageUrl": req.ImageURL,
	})
	if err != nil {
		zap.L().Error("admin: category create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "id": id, "name": name})
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

// UpdateCategory edits name and/or image; the name normalization applies
// on edit exactly as on create
func UpdateCategory(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields := map[string]any{}
	if req.Name != nil {
		name := models.FormatName(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category name cannot be empty"})
			return
		}
		fields["name"] = name
	}
	if req.ImageURL != nil {
		fields["imageUrl"] = *req.ImageURL
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if err := Store.Update(models.CategoriesPath, c.Param("id"), fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		zap.L().Error("admin: category update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

// DeleteCategory removes a category and its whole product sub-collection
// so no products are left orphaned
func DeleteCategory(c *gin.Context) {
	categoryID := c.Param("id")
	if err := Store.DeleteCollection(models.ProductsPath(categoryID)); err != nil {
		zap.L().Error("admin: product cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if err := Store.Delete(models.CategoriesPath, categoryID); err != nil {
		zap.L().Error("admin: category delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// ── Product management ──────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	HalfPrice   *float64 `json:"halfPrice"`
	Quantity    string   `json:"quantity"`
	Description string   `json:"description"`
	ImageURLs   []string `json:"imageUrls"`
	IsVeg       *bool    `json:"isVeg"`
}

// CreateProduct stores a product under a category. A blank secondary
// price is persisted as explicit null, never 0, so "no half price" and
// "half price of zero" stay distinguishable on read.
func CreateProduct(c *gin.Context) {
	categoryID := c.Param("id")
	if _, err := Store.Get(models.CategoriesPath, categoryID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		zap.L().Error("admin: category lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load category"})
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isVeg := true
	if req.IsVeg != nil {
		isVeg = *req.IsVeg
	}
	imageURL := ""
	if len(req.ImageURLs) > 0 {
		imageURL = req.ImageURLs[0]
	}
	var halfPrice any // explicit null when absent
	if req.HalfPrice != nil {
		halfPrice = *req.HalfPrice
	}

	data := map[string]any{
		"name":        strings.TrimSpace(req.Name),
		"price":       req.Price,
		"halfPrice":   halfPrice,
		"quantity":    req.Quantity,
		"description": strings.TrimSpace(req.Description),
		"imageUrls":   req.ImageURLs,
		"imageUrl":    imageURL,
		"isVeg":       isVeg,
	}
	id, err := Store.Add(models.ProductsPath(categoryID), data)
	if err != nil {
		zap.L().Error("admin: product create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "id": id})
}

// UpdateProduct edits product fields. Only known fields pass through,
// and a halfPrice sent as null reverts to the explicit-absent marker.
func UpdateProduct(c *gin.Context) {
	categoryID := c.Param("id")
	productID := c.Param("productId")

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed := map[string]bool{
		"name": true, "price": true, "halfPrice": true, "quantity": true,
		"description": true, "imageUrls": true, "imageUrl": true, "isVeg": true,
	}
	fields := map[string]any{}
	for k, v := range req {
		if allowed[k] {
			fields[k] = v
		}
	}
	if name, ok := fields["name"].(string); ok {
		fields["name"] = strings.TrimSpace(name)
	}
	if price, ok := fields["price"]; ok {
		n, isNum := price.(float64)
		if !isNum || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be greater than zero"})
			return
		}
	}
	if urls, ok := fields["imageUrls"].([]any); ok && len(urls) > 0 {
		if first, ok := urls[0].(string); ok {
			fields["imageUrl"] = first
		}
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := Store.Update(models.ProductsPath(categoryID), productID, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		zap.L().Error("admin: product update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct removes one product
func DeleteProduct(c *gin.Context) {
	if err := Store.Delete(models.ProductsPath(c.Param("id")), c.Param("productId")); err != nil {
		zap.L().Error("admin: product delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// ── Settings ────────────────────────────────────────────────────────────────

type SetDeliveryChargeRequest struct {
	Amount *int `json:"amount" binding:"required,gte=0"`
}

// SetDeliveryCharge writes the delivery charge singleton, last write wins
func SetDeliveryCharge(c *gin.Context) {
	var req SetDeliveryChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid amount (0 or more)"})
		return
	}
	err := Store.Set(models.SettingsPath, models.DeliveryChargeDocID, map[string]any{
		"amount": *req.Amount,
	})
	if err != nil {
		zap.L().Error("admin: delivery charge update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save delivery charge"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Delivery charge updated", "amount": *req.Amount})
}

// ── Image upload ────────────────────────────────────────────────────────────

// UploadImage normalizes an uploaded image into an inline data URL ready
// for embedding in a category or product document
func UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	normalized, err := images.Normalize(file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, images.ErrInvalidType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to process image"})
		return
	}
	c.JSON(http.StatusOK, normalized)
}
