package models

import (
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	Code           string          `gorm:"type:varchar(100);not null;index"`
	Description    string          `gorm:"type:text;not null;default:''"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	QuantityOnHand int             `gorm:"not null;default:0"`
	ImageURL       string          `gorm:"type:text;not null;default:''"`
	Active         bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:     m.BaseModel.ToDomain(),
		Code:           m.Code,
		Description:    m.Description,
		Price:          m.Price,
		QuantityOnHand: m.QuantityOnHand,
		ImageURL:       m.ImageURL,
		Active:         m.Active,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Code = p.Code
	m.Description = p.Description
	m.Price = p.Price
	m.QuantityOnHand = p.QuantityOnHand
	m.ImageURL = p.ImageURL
	m.Active = p.Active
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
