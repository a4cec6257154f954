package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// BancoAgenda é o recorte de pgxpool.Pool que o repositório usa; o
// pgxmock implementa a mesma interface nos testes.
type BancoAgenda interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Nomes das constraints de exclusão criadas na migração inicial. O banco
// é a última linha de defesa contra corrida entre dois pedidos; quando
// ele recusa, o nome da constraint diz qual conflito aconteceu.
const (
	constraintEspecialista = "agendamentos_especialista_sem_sobreposicao"
	constraintCliente      = "agendamentos_cliente_sem_sobreposicao"
)

// RepositorioPG implementa Repositorio sobre o banco do tenant.
type RepositorioPG struct {
	db BancoAgenda
	// excetoID, quando positivo, remove o próprio agendamento das
	// checagens de ocupação. Usado na revalidação de updates.
	excetoID int
}

func NovoRepositorioPG(db BancoAgenda) *RepositorioPG {
	return &RepositorioPG{db: db}
}

// Excluindo devolve uma cópia do repositório que ignora o agendamento
// informado nas consultas de ocupação, para que um update não conflite
// consigo mesmo.
func (r *RepositorioPG) Excluindo(idAgendamento int) *RepositorioPG {
	copia := *r
	copia.excetoID = idAgendamento
	return &copia
}

func (r *RepositorioPG) EspecialistaOcupado(ctx context.Context, idEspecialista int, data time.Time, inicio, fim Hora) (bool, error) {
	return r.ocupado(ctx, "id_especialista", idEspecialista, data, inicio, fim)
}

func (r *RepositorioPG) ClienteOcupado(ctx context.Context, idCliente int, data time.Time, inicio, fim Hora) (bool, error) {
	return r.ocupado(ctx, "id_cliente", idCliente, data, inicio, fim)
}

// ocupado aplica a regra semiaberta direto no SQL: conflita quando
// horario < fim e horario+duracao > inicio.
func (r *RepositorioPG) ocupado(ctx context.Context, coluna string, id int, data time.Time, inicio, fim Hora) (bool, error) {
	consulta := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM agendamentos
			WHERE %s = $1 AND data = $2
			  AND horario < $4::time
			  AND (horario + make_interval(mins => duracao)) > $3::time`, coluna)
	args := []any{id, data, inicio.String(), fim.String()}
	if r.excetoID > 0 {
		consulta += " AND id_agendamento <> $5"
		args = append(args, r.excetoID)
	}
	consulta += ")"

	var ocupado bool
	if err := r.db.QueryRow(ctx, consulta, args...).Scan(&ocupado); err != nil {
		return false, fmt.Errorf("consultar ocupação por %s: %w", coluna, err)
	}
	return ocupado, nil
}

func (r *RepositorioPG) ContagemConvenio(ctx context.Context, idEspecialista, idConvenio int, data time.Time) (int, error) {
	var qtd int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM agendamentos
		WHERE id_especialista = $1 AND id_convenio = $2 AND data = $3`,
		idEspecialista, idConvenio, data).Scan(&qtd)
	if err != nil {
		return 0, fmt.Errorf("contar agendamentos do convênio: %w", err)
	}
	return qtd, nil
}

func (r *RepositorioPG) AgendamentosDoDia(ctx context.Context, idEspecialista int, data time.Time) ([]Intervalo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(horario, 'HH24:MI'), duracao
		FROM agendamentos
		WHERE id_especialista = $1 AND data = $2
		ORDER BY horario`,
		idEspecialista, data)
	if err != nil {
		return nil, fmt.Errorf("listar agendamentos do dia: %w", err)
	}
	defer rows.Close()

	var intervalos []Intervalo
	for rows.Next() {
		var horario string
		var duracao int
		if err := rows.Scan(&horario, &duracao); err != nil {
			return nil, fmt.Errorf("ler agendamento do dia: %w", err)
		}
		inicio, err := ParseHora(horario)
		if err != nil {
			return nil, fmt.Errorf("ler agendamento do dia: %w", err)
		}
		intervalos = append(intervalos, Intervalo{Inicio: inicio, Fim: inicio + Hora(duracao)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listar agendamentos do dia: %w", err)
	}
	return intervalos, nil
}

func (r *RepositorioPG) BuscarCliente(ctx context.Context, idCliente int) (InfoCliente, error) {
	var idConvenio *int
	err := r.db.QueryRow(ctx,
		`SELECT id_convenio FROM clientes WHERE id_cliente = $1`,
		idCliente).Scan(&idConvenio)
	if errors.Is(err, pgx.ErrNoRows) {
		return InfoCliente{}, ErrClienteNaoEncontrado
	}
	if err != nil {
		return InfoCliente{}, fmt.Errorf("buscar cliente %d: %w", idCliente, err)
	}
	if idConvenio == nil {
		return InfoCliente{}, nil
	}
	return InfoCliente{TemConvenio: true, IDConvenio: *idConvenio}, nil
}

func (r *RepositorioPG) BuscarEspecialista(ctx context.Context, idEspecialista int) (InfoEspecialista, error) {
	var info InfoEspecialista
	var grade string
	err := r.db.QueryRow(ctx, `
		SELECT e.aceita_convenio,
		       COALESCE(e.tempo_consulta, 0),
		       COALESCE(e.horario_atendimento::text, ''),
		       COALESCE(array_agg(ec.id_convenio) FILTER (WHERE ec.id_convenio IS NOT NULL), '{}')
		FROM especialistas e
		LEFT JOIN especialista_convenios ec ON ec.id_especialista = e.id_especialista
		WHERE e.id_especialista = $1
		GROUP BY e.id_especialista`,
		idEspecialista).Scan(&info.AceitaConvenio, &info.TempoConsulta, &grade, &info.Convenios)
	if errors.Is(err, pgx.ErrNoRows) {
		return InfoEspecialista{}, ErrEspecialistaNaoEncontrado
	}
	if err != nil {
		return InfoEspecialista{}, fmt.Errorf("buscar especialista %d: %w", idEspecialista, err)
	}
	if grade != "" {
		info.GradeAtendimento = []byte(grade)
	}
	return info, nil
}

func (r *RepositorioPG) BuscarPolitica(ctx context.Context, idEspecialista, idConvenio int) (PoliticaConvenio, error) {
	var pol PoliticaConvenio
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(max_consulta, 0), COALESCE(antecedencia, 0)
		FROM gerencia_agenda
		WHERE id_especialista = $1 AND id_convenio = $2`,
		idEspecialista, idConvenio).Scan(&pol.MaxConsulta, &pol.Antecedencia)
	if errors.Is(err, pgx.ErrNoRows) {
		// Sem linha de gerência: política zero, nada a restringir.
		return PoliticaConvenio{}, nil
	}
	if err != nil {
		return PoliticaConvenio{}, fmt.Errorf("buscar política (%d, %d): %w", idEspecialista, idConvenio, err)
	}
	return pol, nil
}

// Inserir refaz as checagens de conflito e grava na mesma transação.
// Mesmo assim dois commits podem se cruzar em pools distintos, então as
// constraints de exclusão ficam de backstop e a violação é traduzida de
// volta para o erro de conflito correspondente.
func (r *RepositorioPG) Inserir(ctx context.Context, novo NovoAgendamento) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("abrir transação: %w", err)
	}
	defer tx.Rollback(ctx)

	inicio := novo.Horario.String()
	fim := (novo.Horario + Hora(novo.Duracao)).String()

	var ocupado bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM agendamentos
			WHERE id_especialista = $1 AND data = $2
			  AND horario < $4::time
			  AND (horario + make_interval(mins => duracao)) > $3::time
		)`, novo.IDEspecialista, novo.Data, inicio, fim).Scan(&ocupado)
	if err != nil {
		return 0, fmt.Errorf("rechecar agenda do especialista: %w", err)
	}
	if ocupado {
		return 0, ErrConflitoEspecialista
	}

	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM agendamentos
			WHERE id_cliente = $1 AND data = $2
			  AND horario < $4::time
			  AND (horario + make_interval(mins => duracao)) > $3::time
		)`, novo.IDCliente, novo.Data, inicio, fim).Scan(&ocupado)
	if err != nil {
		return 0, fmt.Errorf("rechecar agenda do cliente: %w", err)
	}
	if ocupado {
		return 0, ErrConflitoCliente
	}

	var aviso *string
	if novo.Aviso != "" {
		aviso = &novo.Aviso
	}

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO agendamentos (id_cliente, id_especialista, data, horario, duracao, id_convenio, aviso)
		VALUES ($1, $2, $3, $4::time, $5, $6, $7)
		RETURNING id_agendamento`,
		novo.IDCliente, novo.IDEspecialista, novo.Data, inicio, novo.Duracao, novo.IDConvenio, aviso).Scan(&id)
	if err != nil {
		return 0, traduzirConflito(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("confirmar agendamento: %w", traduzirConflito(err))
	}
	return id, nil
}

// traduzirConflito converte violação de constraint de exclusão no erro
// de negócio equivalente; qualquer outro erro passa intacto.
func traduzirConflito(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code != "23505" && pgErr.Code != "23P01" {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintEspecialista:
		return ErrConflitoEspecialista
	case constraintCliente:
		return ErrConflitoCliente
	}
	return err
}
