package models

import "time"

// Venda is one delivery event to a client: a total quantity and amount plus
// the per-flavor breakdown. The line quantities are expected to sum to
// Quantidade; the create path trusts the caller on that.
type Venda struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	ClienteID  uint         `gorm:"not null;index" json:"clienteId"`
	Cliente    Cliente      `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	Quantidade int          `gorm:"not null" json:"quantidade"`
	Valor      float64      `gorm:"not null" json:"valor"`
	Data       time.Time    `gorm:"not null;index" json:"data"`
	Sabores    []VendaSabor `gorm:"foreignKey:VendaID" json:"sabores,omitempty"`
	CreatedAt  time.Time    `json:"-"`
	UpdatedAt  time.Time    `json:"-"`
}

func (Venda) TableName() string { return "vendas" }

// VendaSabor is the per-flavor quantity line inside one sale. Lines are
// replaced wholesale when the sale is updated and removed with it on delete.
type VendaSabor struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	VendaID    uint  `gorm:"not null;index" json:"vendaId"`
	Venda      Venda `gorm:"foreignKey:VendaID" json:"-"`
	SaborID    uint  `gorm:"not null;index" json:"saborId"`
	Sabor      Sabor `gorm:"foreignKey:SaborID" json:"sabor,omitempty"`
	Quantidade int   `gorm:"not null" json:"quantidade"`
}

func (VendaSabor) TableName() string { return "venda_sabores" }
