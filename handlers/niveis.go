package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dualmtech/dualm-api/models"
)

// ListarNiveis devolve os níveis de acesso do tenant. Os níveis são
// semente da migração; criação livre fica de fora de propósito.
func ListarNiveis(c *fiber.Ctx) error {
	db, ok := bancoDoTenant(c)
	if !ok {
		return semBanco(c, "F11")
	}

	rows, err := db.Query(c.Context(),
		`SELECT id_nivel, nome FROM niveis ORDER BY id_nivel`)
	if err != nil {
		return respostaErro(c, 500, "F11", "Erro ao listar níveis")
	}
	defer rows.Close()

	niveis := []models.Nivel{}
	for rows.Next() {
		var n models.Nivel
		if err := rows.Scan(&n.IDNivel, &n.Nome); err != nil {
			return respostaErro(c, 500, "F11", "Erro ao ler níveis")
		}
		niveis = append(niveis, n)
	}
	if err := rows.Err(); err != nil {
		return respostaErro(c, 500, "F11", "Erro ao listar níveis")
	}
	return resposta(c, 200, "S11", fiber.Map{"niveis": niveis, "total": len(niveis)})
}
