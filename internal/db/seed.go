package db

import (
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/docesmaloca/doces-api/internal/models"
)

var seedSabores = []models.Sabor{
	{Nome: "Tradicional", PrecoUnitario: 5.5, Ativo: true},
	{Nome: "Doce de Leite", PrecoUnitario: 5.5, Ativo: true},
	{Nome: "Maracujá", PrecoUnitario: 5.5, Ativo: true},
	{Nome: "Prestígio", PrecoUnitario: 5.5, Ativo: true},
	{Nome: "Castanha", PrecoUnitario: 5.5, Ativo: true},
	{Nome: "Cupuaçu", PrecoUnitario: 5.5, Ativo: true},
}

var seedClientes = []string{
	"Cantina NIB",
	"Casa da Carne",
	"Conveniência Akitem",
	"Conveniência Torres Express",
	"Dicapute",
	"Empório Casa Moraes Centro",
	"Empório Casa Moraes Vieiralves",
	"Empório das Frutas",
	"Frank Pan",
	"Frutaria Adrianópolis",
	"Frutaria Laranjeiras",
	"Frutaria das Torres",
	"Frutaria Dom Pedro",
	"Frutaria João Valério",
	"Frutaria Ki Fruta",
	"Frutaria Nilton Lins",
	"Frutaria Oliveira",
	"Frutaria Shangrilá",
	"Galeria 264",
	"Hortifruti Dom Pedro",
	"Hortifruti Ouro Verde",
	"Hortifruti Planalto",
	"Hortifruti Ribeiro",
	"Mercadinho Bom Preço",
	"Mercadinho do Japonês",
	"Mercadinho Casas do Óleo",
	"Panificadora AP Costa",
	"Panificadora Barcelona",
	"Panificadora Bela Serpan",
	"Panificadora Coffee & Pão",
	"Panificadora Elisa",
	"Panificadora Lindopan",
	"Panificadora Parque Dez",
	"Panificadora Serpan Cidade Nova",
	"Parceiro da Fruta",
	"Restaurante Casa Branca",
	"Restaurante Coqueiro Verde P10",
	"Restaurante Coqueiro Verde PCA14",
	"Varejão das Frutas",
	"Venda Direta Para Clientes",
	"Angela",
}

// Seed populates a fresh database with the default operator account, the
// flavor catalog, the client list, and twenty randomized example sales.
// Idempotent: a database that already has clients is left untouched.
func Seed(db *gorm.DB) error {
	var existentes int64
	if err := db.Model(&models.Cliente{}).Count(&existentes).Error; err != nil {
		return err
	}
	if existentes > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	usuario := models.Usuario{Nome: "Administrador", Email: "admin@docesmaloca.com", Senha: string(hash)}
	if err := db.Where("email = ?", usuario.Email).FirstOrCreate(&usuario).Error; err != nil {
		return err
	}

	sabores := make([]models.Sabor, len(seedSabores))
	copy(sabores, seedSabores)
	if err := db.Create(&sabores).Error; err != nil {
		return err
	}

	clientes := make([]models.Cliente, 0, len(seedClientes))
	for _, nome := range seedClientes {
		clientes = append(clientes, models.Cliente{Nome: nome})
	}
	if err := db.Create(&clientes).Error; err != nil {
		return err
	}

	return seedVendas(db, clientes, sabores)
}

// seedVendas creates one example sale per day going back twenty days, each
// split across one to three distinct flavors whose quantities sum to the
// sale total.
func seedVendas(db *gorm.DB, clientes []models.Cliente, sabores []models.Sabor) error {
	hoje := time.Now()
	for i := 0; i < 20; i++ {
		data := hoje.AddDate(0, 0, -i)
		cliente := clientes[rand.Intn(len(clientes))]
		quantidadeTotal := rand.Intn(20) + 5

		venda := models.Venda{
			ClienteID:  cliente.ID,
			Quantidade: quantidadeTotal,
			Valor:      float64(quantidadeTotal) * 5.5,
			Data:       data,
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&venda).Error; err != nil {
				return err
			}
			numSabores := rand.Intn(3) + 1
			usados := map[uint]bool{}
			restante := quantidadeTotal
			for j := 0; j < numSabores && restante > 0; j++ {
				var sabor models.Sabor
				for {
					sabor = sabores[rand.Intn(len(sabores))]
					if !usados[sabor.ID] {
						break
					}
				}
				usados[sabor.ID] = true

				qtd := restante
				if j < numSabores-1 {
					qtd = rand.Intn(restante) + 1
				}
				linha := models.VendaSabor{VendaID: venda.ID, SaborID: sabor.ID, Quantidade: qtd}
				if err := tx.Create(&linha).Error; err != nil {
					return err
				}
				restante -= qtd
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
