package models

import "github.com/shopspring/decimal"

// InsightsRequest is the body of POST /dashboard/insights.
type InsightsRequest struct {
	Question string `json:"question" validate:"max=500"`
}

// InsightsInput is the aggregate snapshot handed to the AI model.
type InsightsInput struct {
	ShopName string           `json:"shop_name"`
	Summary  DashboardSummary `json:"summary"`
	Weekly   []WeeklyPoint    `json:"weekly"`
	Top      []TopProduct     `json:"top_products"`
	Question string           `json:"question,omitempty"`
}

// StorefrontShop is the public view of a shop.
type StorefrontShop struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	HasWhatsApp bool    `json:"has_whatsapp"`
}

// StorefrontProduct is the public view of a product. It never carries the purchase price.
type StorefrontProduct struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     *string         `json:"category,omitempty"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ImageURL     *string         `json:"image_url,omitempty"`
	InStock      bool            `json:"in_stock"`
	OrderURL     string          `json:"order_url,omitempty"`
}
