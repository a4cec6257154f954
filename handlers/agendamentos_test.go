package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

// appAgendamentos monta um app mínimo com o pool falso já injetado em
// Locals, no lugar do middleware de tenant.
func appAgendamentos(mock pgxmock.PgxPoolIface) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("db", mock)
		c.Locals("dominio", "clinica")
		return c.Next()
	})
	app.Post("/agendamentos", CriarAgendamento)
	app.Post("/n8n/agendamentos", CriarAgendamentoN8N)
	return app
}

func postJSON(t *testing.T, app *fiber.App, caminho string, corpo any) (int, StandardResponse) {
	t.Helper()
	b, err := json.Marshal(corpo)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", caminho, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope StandardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

// dataFutura devolve uma data segura contra o portão de data passada.
func dataFutura() (string, time.Time) {
	dia := time.Now().AddDate(0, 0, 7)
	texto := dia.Format("2006-01-02")
	parsed, _ := time.Parse("2006-01-02", texto)
	return texto, parsed
}

func TestCriarAgendamentoDataInvalida(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	app := appAgendamentos(mock)
	status, envelope := postJSON(t, app, "/agendamentos", fiber.Map{
		"id_cliente":      10,
		"id_especialista": 20,
		"data":            "09-03-2026",
		"horario":         "09:00",
	})
	require.Equal(t, 400, status)
	require.Equal(t, "F20", envelope.Body.IntCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCriarAgendamentoParticular(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	texto, data := dataFutura()

	mock.ExpectQuery("SELECT e.aceita_convenio").
		WithArgs(20).
		WillReturnRows(pgxmock.
			NewRows([]string{"aceita_convenio", "tempo_consulta", "horario_atendimento", "convenios"}).
			AddRow(false, 30, "", []int{}))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(10, data, "09:00", "09:30").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(20, data, "09:00", "09:30").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT id_convenio FROM clientes").
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id_convenio"}).AddRow(nil))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(20, data, "09:00", "09:30").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(10, data, "09:00", "09:30").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO agendamentos").
		WithArgs(10, 20, data, "09:00", 30, (*int)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id_agendamento"}).AddRow(42))
	mock.ExpectCommit()

	app := appAgendamentos(mock)
	status, envelope := postJSON(t, app, "/agendamentos", fiber.Map{
		"id_cliente":      10,
		"id_especialista": 20,
		"data":            texto,
		"horario":         "09:00",
	})
	require.Equal(t, 201, status)
	require.Equal(t, "S20", envelope.Body.IntCode)
	require.Len(t, envelope.Body.Data, 1)

	resultado, ok := envelope.Body.Data[0].(map[string]interface{})
	require.True(t, ok, "data[0] = %T", envelope.Body.Data[0])
	require.Equal(t, true, resultado["aceito"])
	require.Equal(t, float64(42), resultado["id_agendamento"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCriarAgendamentoEspecialistaOcupado(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	texto, data := dataFutura()

	mock.ExpectQuery("SELECT e.aceita_convenio").
		WithArgs(20).
		WillReturnRows(pgxmock.
			NewRows([]string{"aceita_convenio", "tempo_consulta", "horario_atendimento", "convenios"}).
			AddRow(false, 30, "", []int{}))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(10, data, "09:00", "09:30").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(20, data, "09:00", "09:30").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	app := appAgendamentos(mock)
	status, envelope := postJSON(t, app, "/agendamentos", fiber.Map{
		"id_cliente":      10,
		"id_especialista": 20,
		"data":            texto,
		"horario":         "09:00",
	})
	require.Equal(t, 409, status)
	require.Equal(t, "F20", envelope.Body.IntCode)

	resultado, ok := envelope.Body.Data[0].(map[string]interface{})
	require.True(t, ok, "data[0] = %T", envelope.Body.Data[0])
	require.Equal(t, false, resultado["aceito"])
	require.Equal(t, "SPECIALIST_CONFLICT", resultado["motivo"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCriarAgendamentoN8NClienteInexistente(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id_cliente FROM clientes").
		WithArgs("111.222.333-44").
		WillReturnError(pgx.ErrNoRows)

	texto, _ := dataFutura()
	app := appAgendamentos(mock)
	status, envelope := postJSON(t, app, "/n8n/agendamentos", fiber.Map{
		"cpf":             "111.222.333-44",
		"id_especialista": 20,
		"data":            texto,
		"horario":         "09:00",
	})
	require.Equal(t, 404, status)
	require.Equal(t, "F20", envelope.Body.IntCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusDoMotivo(t *testing.T) {
	casos := []struct {
		motivo string
		quer   int
	}{
		{"CLIENT_NOT_FOUND", 404},
		{"SPECIALIST_NOT_FOUND", 404},
		{"PERSISTENCE_ERROR", 500},
		{"SPECIALIST_CONFLICT", 409},
		{"LIMITE_CONVENIO", 409},
		{"PAST_DATE", 409},
	}
	for _, c := range casos {
		t.Run(fmt.Sprintf("%s_%d", c.motivo, c.quer), func(t *testing.T) {
			require.Equal(t, c.quer, statusDoMotivo(c.motivo))
		})
	}
}
