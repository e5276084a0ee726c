package models

import "bakery-menu-api/docstore"

// Settings singletons live under one collection with fixed document ids
const (
	SettingsPath          = "settings"
	DeliveryChargeDocID   = "deliveryCharge"
	PageViewsDocID        = "pageViews"
	DefaultDeliveryCharge = 50
)

// DecodeDeliveryCharge reads the delivery charge amount from the
// settings singleton, falling back to the default when unset
func DecodeDeliveryCharge(d docstore.Doc) int {
	if v, ok := d.Data["amount"].(float64); ok && v >= 0 {
		return int(v)
	}
	return DefaultDeliveryCharge
}

// DecodePageViews reads the monotonically increasing visit counter
func DecodePageViews(d docstore.Doc) int64 {
	if v, ok := d.Data["count"].(float64); ok {
		return int64(v)
	}
	return 0
}
