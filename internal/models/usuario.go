package models

import "time"

// Usuario is the operator account for the admin panel. The password hash is
// never serialized.
type Usuario struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nome      string    `gorm:"not null" json:"nome"`
	Email     string    `gorm:"unique;not null;index" json:"email"`
	Senha     string    `gorm:"not null" json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Usuario) TableName() string { return "usuarios" }

// UsuarioPublico is the identity shape returned by auth endpoints and
// attached to request context.
type UsuarioPublico struct {
	ID    uint   `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

func (u Usuario) Publico() UsuarioPublico {
	return UsuarioPublico{ID: u.ID, Nome: u.Nome, Email: u.Email}
}
