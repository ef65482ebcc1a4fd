package models

import "time"

// Sabor is a candy variant. Deactivated flavors stay referenced by old sales
// but drop out of listings.
type Sabor struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Nome          string    `gorm:"not null;index" json:"nome"`
	PrecoUnitario float64   `gorm:"not null" json:"precoUnitario"`
	Ativo         bool      `gorm:"not null" json:"ativo"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

func (Sabor) TableName() string { return "sabores" }
