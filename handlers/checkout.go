package handlers

import (
	"errors"
	"net/http"

	"bakery-menu-api/checkout"
	"bakery-menu-api/config"
	"bakery-menu-api/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Mode    string `json:"mode" binding:"required,oneof=pickup delivery"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// Checkout composes the cart into a WhatsApp message and returns the
// wa.me link for the client to open. The cart is cleared once the link
// is composed; whether the customer completes the WhatsApp send is not
// this handler's concern.
func Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := sessionCart(c)
	items := store.Items()
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	order := checkout.Order{
		Items:          items,
		Customer:       checkout.Customer{Name: req.Name, Phone: req.Phone},
		Mode:           req.Mode,
		Address:        req.Address,
		Notes:          req.Notes,
		DeliveryCharge: currentDeliveryCharge(),
	}
	waURL, err := checkout.OrderURL(config.WhatsAppNumber, order)
	if err != nil {
		if errors.Is(err, checkout.ErrMissingField) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter your name and phone number"})
			return
		}
		zap.L().Error("checkout: compose failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compose order"})
		return
	}

	if err := store.Clear(); err != nil {
		zap.L().Error("checkout: cart clear failed", zap.Error(err))
	}
	metrics.CheckoutCounter.Inc()

	c.JSON(http.StatusOK, gin.H{
		"message":      "Order composed",
		"whatsapp_url": waURL,
	})
}
