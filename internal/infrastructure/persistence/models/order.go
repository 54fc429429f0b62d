package models

import (
	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	BaseModel
	OrderNumber   string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerName  string           `gorm:"type:varchar(200);not null"`
	CustomerEmail string           `gorm:"type:varchar(200);not null;default:''"`
	CustomerPhone string           `gorm:"type:varchar(50);not null;default:''"`
	Status        order.Status     `gorm:"type:varchar(20);not null;default:'pending'"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseEntity:    m.BaseModel.ToDomain(),
		OrderNumber:   m.OrderNumber,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		CustomerPhone: m.CustomerPhone,
		Status:        m.Status,
		Items:         make([]order.OrderItem, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = *m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the order row; items are converted separately.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.OrderNumber = o.OrderNumber
	m.CustomerName = o.CustomerName
	m.CustomerEmail = o.CustomerEmail
	m.CustomerPhone = o.CustomerPhone
	m.Status = o.Status
}

// OrderItemModel is the persistence model for an order item and its match record.
type OrderItemModel struct {
	BaseModel
	OrderID          uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_order_item_position,priority:1"`
	Position         int              `gorm:"not null;uniqueIndex:idx_order_item_position,priority:2"`
	ItemNumber       string           `gorm:"type:varchar(100);not null;default:''"`
	Description      string           `gorm:"type:text;not null;default:''"`
	Quantity         int              `gorm:"not null;default:1"`
	ImageURL         string           `gorm:"type:text;not null;default:''"`
	MatchedProductID *uuid.UUID       `gorm:"type:uuid;index"`
	MatchConfidence  *int
	MatchStatus      matching.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	MatchMethod      matching.Method  `gorm:"type:varchar(10);not null;default:''"`
	MatchReasoning   string           `gorm:"type:text;not null;default:''"`
	FinalPrice       *decimal.Decimal `gorm:"type:decimal(12,2)"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() *order.OrderItem {
	return &order.OrderItem{
		BaseEntity:       m.BaseModel.ToDomain(),
		OrderID:          m.OrderID,
		Position:         m.Position,
		ItemNumber:       m.ItemNumber,
		Description:      m.Description,
		Quantity:         m.Quantity,
		ImageURL:         m.ImageURL,
		MatchedProductID: m.MatchedProductID,
		MatchConfidence:  m.MatchConfidence,
		MatchStatus:      m.MatchStatus,
		MatchMethod:      m.MatchMethod,
		MatchReasoning:   m.MatchReasoning,
		FinalPrice:       m.FinalPrice,
	}
}

// FromDomain populates the persistence model from a domain OrderItem.
func (m *OrderItemModel) FromDomain(i *order.OrderItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.OrderID = i.OrderID
	m.Position = i.Position
	m.ItemNumber = i.ItemNumber
	m.Description = i.Description
	m.Quantity = i.Quantity
	m.ImageURL = i.ImageURL
	m.MatchedProductID = i.MatchedProductID
	m.MatchConfidence = i.MatchConfidence
	m.MatchStatus = i.MatchStatus
	m.MatchMethod = i.MatchMethod
	m.MatchReasoning = i.MatchReasoning
	m.FinalPrice = i.FinalPrice
}

// OrderItemModelFromDomain creates a new persistence model from a domain OrderItem.
func OrderItemModelFromDomain(i *order.OrderItem) *OrderItemModel {
	m := &OrderItemModel{}
	m.FromDomain(i)
	return m
}

// MatchColumns maps a match update onto order_items columns. Outcome columns
// are only included for automatic updates.
func MatchColumns(u order.MatchUpdate) map[string]any {
	cols := map[string]any{
		"matched_product_id": nil,
		"final_price":        nil,
		"match_status":       u.Status,
		"updated_at":         u.UpdatedAt,
	}
	if u.ProductID != nil {
		cols["matched_product_id"] = *u.ProductID
	}
	if u.FinalPrice != nil {
		cols["final_price"] = *u.FinalPrice
	}
	if u.Outcome != nil {
		cols["match_confidence"] = u.Outcome.Confidence
		cols["match_method"] = u.Outcome.Method
		cols["match_reasoning"] = u.Outcome.Reasoning
	}
	return cols
}
