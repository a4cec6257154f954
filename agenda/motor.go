package agenda

import (
	"context"
	"errors"
	"log"
	"time"
)

// Códigos de motivo devolvidos quando um pedido é recusado. São parte do
// contrato com o site e com o canal n8n: sempre resultado estruturado,
// nunca erro interno.
const (
	MotivoDataPassada             = "PAST_DATE"
	MotivoForaDoHorario           = "OUTSIDE_HOURS"
	MotivoClienteInexistente      = "CLIENT_NOT_FOUND"
	MotivoEspecialistaInexistente = "SPECIALIST_NOT_FOUND"
	MotivoClienteOcupado          = "CLIENT_CONFLICT"
	MotivoEspecialistaOcupado     = "SPECIALIST_CONFLICT"
	MotivoConvenioNaoAceito       = "PLAN_NOT_ACCEPTED"
	MotivoAntecedencia            = "ANTECEDENCIA_INSUFICIENTE"
	MotivoLimiteConvenio          = "LIMITE_CONVENIO"
	MotivoPersistencia            = "PERSISTENCE_ERROR"
)

// DuracaoPadraoMin cobre especialistas cadastrados sem tempo_consulta.
const DuracaoPadraoMin = 30

// InfoCliente é o resultado explícito da consulta ao cadastro: quando
// TemConvenio é falso, IDConvenio não tem significado.
type InfoCliente struct {
	TemConvenio bool
	IDConvenio  int
}

// InfoEspecialista reúne o que o motor precisa saber do especialista.
// GradeAtendimento é a coluna horario_atendimento crua (JSON).
type InfoEspecialista struct {
	AceitaConvenio   bool
	TempoConsulta    int
	GradeAtendimento []byte
	Convenios        []int
}

// PoliticaConvenio é a linha de gerencia_agenda para o par
// (especialista, convênio); ausência equivale à política zero.
type PoliticaConvenio struct {
	MaxConsulta  int
	Antecedencia int
}

// NovoAgendamento é o registro a persistir quando o pedido é aceito.
type NovoAgendamento struct {
	IDCliente      int
	IDEspecialista int
	Data           time.Time
	Horario        Hora
	Duracao        int
	IDConvenio     *int
	Aviso          string
}

// Repositorio é tudo que o motor exige do armazenamento do tenant.
// Inserir deve refazer as checagens de conflito e gravar dentro de uma
// única transação, devolvendo ErrConflitoEspecialista/ErrConflitoCliente
// quando um pedido concorrente ganhar a corrida.
type Repositorio interface {
	EspecialistaOcupado(ctx context.Context, idEspecialista int, data time.Time, inicio, fim Hora) (bool, error)
	ClienteOcupado(ctx context.Context, idCliente int, data time.Time, inicio, fim Hora) (bool, error)
	ContagemConvenio(ctx context.Context, idEspecialista, idConvenio int, data time.Time) (int, error)
	AgendamentosDoDia(ctx context.Context, idEspecialista int, data time.Time) ([]Intervalo, error)
	BuscarCliente(ctx context.Context, idCliente int) (InfoCliente, error)
	BuscarEspecialista(ctx context.Context, idEspecialista int) (InfoEspecialista, error)
	BuscarPolitica(ctx context.Context, idEspecialista, idConvenio int) (PoliticaConvenio, error)
	Inserir(ctx context.Context, novo NovoAgendamento) (int, error)
}

// Pedido é uma tentativa de agendamento já validada na borda HTTP.
type Pedido struct {
	IDCliente      int
	IDEspecialista int
	Data           time.Time
	Horario        Hora
	// IgnorarLimite força o commit mesmo com o limite diário do convênio
	// estourado. Só tem efeito quando o chamador recebeu antes uma
	// recusa LIMITE_CONVENIO com PodeIgnorar=true; fica registrado no
	// campo aviso da linha gravada.
	IgnorarLimite bool
}

// Resultado é a saída única do motor, aceite ou recusa.
type Resultado struct {
	Aceito        bool       `json:"aceito"`
	Motivo        string     `json:"motivo,omitempty"`
	Mensagem      string     `json:"mensagem"`
	Sugestoes     []Sugestao `json:"sugestoes,omitempty"`
	PodeIgnorar   bool       `json:"pode_ignorar,omitempty"`
	Limite        int        `json:"limite,omitempty"`
	QtdAtual      int        `json:"qtd_atual,omitempty"`
	// Aviso só vem preenchido quando o aceite estourou o limite diário
	// do convênio mediante ignorar_limite.
	Aviso         string     `json:"aviso,omitempty"`
	IDAgendamento int        `json:"id_agendamento,omitempty"`
}

// plano carrega o que a avaliação apurou e o commit precisa.
type plano struct {
	duracao    int
	idConvenio *int
	aviso      string
}

// Motor percorre os portões de admissão em sequência e interrompe na
// primeira recusa. Nenhum efeito persistente acontece antes do aceite.
type Motor struct {
	repo     Repositorio
	Sugestor *Sugestor
	// Agora existe para os testes fixarem o relógio.
	Agora func() time.Time
}

func NovoMotor(repo Repositorio) *Motor {
	return &Motor{
		repo:     repo,
		Sugestor: NovoSugestor(repo),
		Agora:    time.Now,
	}
}

// Agendar decide e, se o pedido passar em todos os portões, grava.
func (m *Motor) Agendar(ctx context.Context, p Pedido) Resultado {
	r, pl := m.avaliar(ctx, p)
	if !r.Aceito {
		return r
	}
	return m.gravar(ctx, p, pl)
}

// Validar roda os mesmos portões de Agendar sem gravar nada. Usado na
// revalidação opcional de updates.
func (m *Motor) Validar(ctx context.Context, p Pedido) Resultado {
	r, _ := m.avaliar(ctx, p)
	return r
}

// avaliar percorre a sequência de portões: data passada, grade de
// atendimento, conflito do cliente, conflito do especialista e, por fim,
// o ramo do convênio (antecedência e limite diário). Curto-circuita na
// primeira recusa.
func (m *Motor) avaliar(ctx context.Context, p Pedido) (Resultado, plano) {
	var pl plano
	hoje := DiaDe(m.Agora())
	data := DiaDe(p.Data)

	if data.Before(hoje) {
		return recusa(MotivoDataPassada, "A data solicitada já passou"), pl
	}

	esp, err := m.repo.BuscarEspecialista(ctx, p.IDEspecialista)
	if errors.Is(err, ErrEspecialistaNaoEncontrado) {
		return recusa(MotivoEspecialistaInexistente, "Especialista não encontrado"), pl
	}
	if err != nil {
		return m.falhaPersistencia("buscar especialista", err), pl
	}
	pl.duracao = esp.TempoConsulta
	if pl.duracao <= 0 {
		pl.duracao = DuracaoPadraoMin
	}

	inicio := p.Horario
	fim := inicio + Hora(pl.duracao)
	grade := MontarGrade(esp.GradeAtendimento, data)
	if !GradeContem(grade, inicio, fim) {
		return recusa(MotivoForaDoHorario, "Especialista não atende neste dia/horário"), pl
	}

	if ocupado, err := m.repo.ClienteOcupado(ctx, p.IDCliente, data, inicio, fim); err != nil {
		return m.falhaPersistencia("checar agenda do cliente", err), pl
	} else if ocupado {
		return recusa(MotivoClienteOcupado, "Cliente já possui agendamento neste horário"), pl
	}

	if ocupado, err := m.repo.EspecialistaOcupado(ctx, p.IDEspecialista, data, inicio, fim); err != nil {
		return m.falhaPersistencia("checar agenda do especialista", err), pl
	} else if ocupado {
		return recusa(MotivoEspecialistaOcupado, "Horário já ocupado para este especialista"), pl
	}

	cli, err := m.repo.BuscarCliente(ctx, p.IDCliente)
	if errors.Is(err, ErrClienteNaoEncontrado) {
		return recusa(MotivoClienteInexistente, "Cliente não encontrado"), pl
	}
	if err != nil {
		return m.falhaPersistencia("buscar cliente", err), pl
	}

	if !cli.TemConvenio {
		// Particular: sem limite diário nem antecedência, segue direto
		// para o commit com convênio nulo.
		return Resultado{Aceito: true}, pl
	}

	if !esp.AceitaConvenio || !contemConvenio(esp.Convenios, cli.IDConvenio) {
		return recusa(MotivoConvenioNaoAceito, "Especialista não aceita o convênio"), pl
	}

	pol, err := m.repo.BuscarPolitica(ctx, p.IDEspecialista, cli.IDConvenio)
	if err != nil {
		return m.falhaPersistencia("buscar política do convênio", err), pl
	}

	params := ParametrosSugestao{
		IDEspecialista: p.IDEspecialista,
		IDConvenio:     &cli.IDConvenio,
		Data:           data,
		Horario:        p.Horario,
		Duracao:        pl.duracao,
		Antecedencia:   pol.Antecedencia,
		MaxConsulta:    pol.MaxConsulta,
		Grade:          esp.GradeAtendimento,
	}

	// Antecedência conta em dias inteiros e a igualdade satisfaz a
	// regra (3 dias de antecedência aceitam exatamente D+3).
	if DiasEntre(hoje, data) < pol.Antecedencia {
		r := recusa(MotivoAntecedencia, "A data é menor que a antecedência mínima do convênio")
		r.Sugestoes = m.sugerir(ctx, params)
		return r, pl
	}

	qtd, err := m.repo.ContagemConvenio(ctx, p.IDEspecialista, cli.IDConvenio, data)
	if err != nil {
		return m.falhaPersistencia("contar agendamentos do convênio", err), pl
	}

	if pol.MaxConsulta > 0 && qtd >= pol.MaxConsulta {
		if !p.IgnorarLimite {
			// Recusa "branda": o chamador pode reenviar com
			// ignorar_limite para forçar o commit.
			r := recusa(MotivoLimiteConvenio, "Especialista não tem mais vagas para o convênio nesta data")
			r.PodeIgnorar = true
			r.Limite = pol.MaxConsulta
			r.QtdAtual = qtd
			r.Sugestoes = m.sugerir(ctx, params)
			return r, pl
		}
		pl.aviso = "limite diário do convênio excedido mediante confirmação do atendente"
	}

	pl.idConvenio = &cli.IDConvenio
	return Resultado{Aceito: true}, pl
}

func (m *Motor) gravar(ctx context.Context, p Pedido, pl plano) Resultado {
	id, err := m.repo.Inserir(ctx, NovoAgendamento{
		IDCliente:      p.IDCliente,
		IDEspecialista: p.IDEspecialista,
		Data:           DiaDe(p.Data),
		Horario:        p.Horario,
		Duracao:        pl.duracao,
		IDConvenio:     pl.idConvenio,
		Aviso:          pl.aviso,
	})
	switch {
	case errors.Is(err, ErrConflitoEspecialista):
		// Outro pedido ganhou a corrida entre a checagem e o commit.
		return recusa(MotivoEspecialistaOcupado, "Horário já ocupado para este especialista")
	case errors.Is(err, ErrConflitoCliente):
		return recusa(MotivoClienteOcupado, "Cliente já possui agendamento neste horário")
	case err != nil:
		return m.falhaPersistencia("gravar agendamento", err)
	}
	return Resultado{
		Aceito:        true,
		Mensagem:      "Agendamento realizado com sucesso",
		Aviso:         pl.aviso,
		IDAgendamento: id,
	}
}

func (m *Motor) sugerir(ctx context.Context, params ParametrosSugestao) []Sugestao {
	if m.Sugestor == nil {
		return nil
	}
	sugestoes, err := m.Sugestor.Sugerir(ctx, params)
	if err != nil {
		// Sugestão é cortesia: a recusa original segue sem elas.
		log.Printf("agenda: falha ao sugerir horários: %v", err)
		return nil
	}
	return sugestoes
}

func (m *Motor) falhaPersistencia(etapa string, err error) Resultado {
	log.Printf("agenda: erro de persistência ao %s: %v", etapa, err)
	return recusa(MotivoPersistencia, "Erro interno ao acessar a agenda")
}

func recusa(motivo, mensagem string) Resultado {
	return Resultado{Motivo: motivo, Mensagem: mensagem}
}

func contemConvenio(convenios []int, id int) bool {
	for _, c := range convenios {
		if c == id {
			return true
		}
	}
	return false
}
