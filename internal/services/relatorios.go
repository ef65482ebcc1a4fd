package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/docesmaloca/doces-api/internal/models"
)

// Pure aggregation over already-fetched rows. Handlers fetch, these reduce.

// ResumoSabor is one flavor's share of a client's purchases. Vezes counts the
// sales the flavor appeared in; Porcentagem is rendered with one decimal.
type ResumoSabor struct {
	Nome        string `json:"nome"`
	Quantidade  int    `json:"quantidade"`
	Vezes       int    `json:"vezes"`
	Porcentagem string `json:"porcentagem"`
}

// SaboresPorCliente reduces a client's sales (with flavor lines and flavor
// names preloaded) into a ranked breakdown. Returns the grand total quantity
// and the flavors sorted by quantity descending, name ascending on ties.
// An empty input yields (0, empty slice) — no division happens.
func SaboresPorCliente(vendas []models.Venda) (int, []ResumoSabor) {
	type acum struct {
		quantidade int
		vezes      int
	}
	porSabor := map[string]*acum{}
	totalGeral := 0

	for _, venda := range vendas {
		for _, vs := range venda.Sabores {
			nome := vs.Sabor.Nome
			a, ok := porSabor[nome]
			if !ok {
				a = &acum{}
				porSabor[nome] = a
			}
			a.quantidade += vs.Quantidade
			a.vezes++
			totalGeral += vs.Quantidade
		}
	}

	sabores := make([]ResumoSabor, 0, len(porSabor))
	for nome, a := range porSabor {
		sabores = append(sabores, ResumoSabor{
			Nome:        nome,
			Quantidade:  a.quantidade,
			Vezes:       a.vezes,
			Porcentagem: porcentagem(a.quantidade, totalGeral),
		})
	}
	sort.Slice(sabores, func(i, j int) bool {
		if sabores[i].Quantidade != sabores[j].Quantidade {
			return sabores[i].Quantidade > sabores[j].Quantidade
		}
		return sabores[i].Nome < sabores[j].Nome
	})
	return totalGeral, sabores
}

// SaborRanking is one flavor entry inside a client's global-ranking summary.
type SaborRanking struct {
	Nome        string `json:"nome"`
	Quantidade  int    `json:"quantidade"`
	Porcentagem string `json:"porcentagem"`
}

// RankingCliente summarizes one client in the global flavor ranking.
type RankingCliente struct {
	Cliente            string         `json:"cliente"`
	TotalComprado      int            `json:"totalComprado"`
	SaborFavorito      string         `json:"saborFavorito"`
	QuantidadeFavorito int            `json:"quantidadeFavorito"`
	Sabores            []SaborRanking `json:"sabores"`
}

// RankingSabores builds the per-client flavor ranking from every sale line
// (with Venda.Cliente and Sabor preloaded). Clients with no sale lines do not
// appear at all. Result sorted by total purchased descending, client name
// ascending on ties.
func RankingSabores(linhas []models.VendaSabor) []RankingCliente {
	type porCliente struct {
		total   int
		sabores map[string]int
	}
	clientes := map[string]*porCliente{}

	for _, linha := range linhas {
		nomeCliente := linha.Venda.Cliente.Nome
		c, ok := clientes[nomeCliente]
		if !ok {
			c = &porCliente{sabores: map[string]int{}}
			clientes[nomeCliente] = c
		}
		c.sabores[linha.Sabor.Nome] += linha.Quantidade
		c.total += linha.Quantidade
	}

	resultado := make([]RankingCliente, 0, len(clientes))
	for nome, c := range clientes {
		sabores := make([]SaborRanking, 0, len(c.sabores))
		for saborNome, quantidade := range c.sabores {
			sabores = append(sabores, SaborRanking{
				Nome:        saborNome,
				Quantidade:  quantidade,
				Porcentagem: porcentagem(quantidade, c.total),
			})
		}
		sort.Slice(sabores, func(i, j int) bool {
			if sabores[i].Quantidade != sabores[j].Quantidade {
				return sabores[i].Quantidade > sabores[j].Quantidade
			}
			return sabores[i].Nome < sabores[j].Nome
		})
		entry := RankingCliente{
			Cliente:            nome,
			TotalComprado:      c.total,
			SaborFavorito:      "N/A",
			QuantidadeFavorito: 0,
			Sabores:            sabores,
		}
		if len(sabores) > 0 {
			entry.SaborFavorito = sabores[0].Nome
			entry.QuantidadeFavorito = sabores[0].Quantidade
		}
		resultado = append(resultado, entry)
	}
	sort.Slice(resultado, func(i, j int) bool {
		if resultado[i].TotalComprado != resultado[j].TotalComprado {
			return resultado[i].TotalComprado > resultado[j].TotalComprado
		}
		return resultado[i].Cliente < resultado[j].Cliente
	})
	return resultado
}

// TotaisVendas is the aggregate over a filtered set of sales. ValorTotal is a
// two-decimal string; Media is rounded to two decimals and 0 when empty.
type TotaisVendas struct {
	TotalGeral  int            `json:"totalGeral"`
	ValorTotal  string         `json:"valorTotal"`
	TotalVendas int            `json:"totalVendas"`
	PorCliente  map[string]int `json:"porCliente"`
	PorDia      map[string]int `json:"porDia"`
	Media       float64        `json:"media"`
}

// Totais reduces the given sales (with Cliente preloaded) into overall sums,
// per-client and per-day quantity maps, and the mean quantity per sale.
func Totais(vendas []models.Venda) TotaisVendas {
	t := TotaisVendas{
		PorCliente: map[string]int{},
		PorDia:     map[string]int{},
	}
	valorTotal := 0.0
	for _, v := range vendas {
		t.TotalGeral += v.Quantidade
		valorTotal += v.Valor
		t.PorCliente[v.Cliente.Nome] += v.Quantidade
		t.PorDia[v.Data.Format("02/01/2006")] += v.Quantidade
	}
	t.ValorTotal = fmt.Sprintf("%.2f", valorTotal)
	t.TotalVendas = len(vendas)
	if len(vendas) > 0 {
		t.Media = math.Round(float64(t.TotalGeral)/float64(len(vendas))*100) / 100
	}
	return t
}

// ResumoMensal is one month's slice of the yearly report.
type ResumoMensal struct {
	Mes             int    `json:"mes"`
	NomeMes         string `json:"nomeMes"`
	TotalVendas     int    `json:"totalVendas"`
	TotalQuantidade int    `json:"totalQuantidade"`
	ValorTotal      string `json:"valorTotal"`
}

// ResumirMes reduces one month's sales into its report entry.
func ResumirMes(mes int, vendas []models.Venda) ResumoMensal {
	r := ResumoMensal{Mes: mes, NomeMes: NomeMes(mes)}
	valorTotal := 0.0
	for _, v := range vendas {
		r.TotalQuantidade += v.Quantidade
		valorTotal += v.Valor
	}
	r.TotalVendas = len(vendas)
	r.ValorTotal = fmt.Sprintf("%.2f", valorTotal)
	return r
}

// JanelaMes returns the inclusive [first-day 00:00:00, last-day 23:59:59]
// bounds of a calendar month in local time, matching how sale dates are
// stored and queried.
func JanelaMes(ano, mes int) (time.Time, time.Time) {
	inicio := time.Date(ano, time.Month(mes), 1, 0, 0, 0, 0, time.Local)
	fim := inicio.AddDate(0, 1, 0).Add(-time.Second)
	return inicio, fim
}

var nomesMeses = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// NomeMes returns the pt-BR month name for 1..12.
func NomeMes(mes int) string {
	if mes < 1 || mes > 12 {
		return ""
	}
	return nomesMeses[mes-1]
}

// ChaveMes formats a sale date as the "month de year" bucket key used by the
// per-client statistics.
func ChaveMes(t time.Time) string {
	return fmt.Sprintf("%s de %d", NomeMes(int(t.Month())), t.Year())
}

// VendasPorMes buckets sale quantities by ChaveMes.
func VendasPorMes(vendas []models.Venda) map[string]int {
	porMes := map[string]int{}
	for _, v := range vendas {
		porMes[ChaveMes(v.Data)] += v.Quantidade
	}
	return porMes
}

// MediaQuantidade is the mean quantity per sale, two-decimal rounding,
// 0 when there are no sales.
func MediaQuantidade(totalQuantidade, totalVendas int) float64 {
	if totalVendas == 0 {
		return 0
	}
	return math.Round(float64(totalQuantidade)/float64(totalVendas)*100) / 100
}

func porcentagem(quantidade, total int) string {
	return fmt.Sprintf("%.1f", float64(quantidade)/float64(total)*100)
}
