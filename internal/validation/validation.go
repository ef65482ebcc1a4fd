package validation

import "strings"

// Request payload guards. Each validator returns an empty string when the
// payload is acceptable, otherwise the user-facing message for a 400.

func NomeCliente(nome string) string {
	trimmed := strings.TrimSpace(nome)
	if trimmed == "" {
		return "Nome do cliente é obrigatório"
	}
	if len([]rune(trimmed)) < 3 {
		return "Nome deve ter pelo menos 3 caracteres"
	}
	if len([]rune(trimmed)) > 100 {
		return "Nome não pode ter mais de 100 caracteres"
	}
	return ""
}

func NovaVenda(clienteID uint, quantidade int) string {
	if clienteID == 0 || quantidade == 0 {
		return "Cliente e quantidade são obrigatórios"
	}
	if quantidade < 0 {
		return "Quantidade deve ser maior que zero"
	}
	return ""
}
