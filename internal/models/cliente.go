package models

import "time"

// Cliente is a retail buyer, tracked by name only. Name uniqueness is
// case-insensitive and checked at write time (see handlers.ClienteHandler).
type Cliente struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nome      string    `gorm:"not null;index" json:"nome"`
	Vendas    []Venda   `gorm:"foreignKey:ClienteID" json:"vendas,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (Cliente) TableName() string { return "clientes" }
