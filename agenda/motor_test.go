package agenda

import (
	"context"
	"errors"
	"testing"
	"time"
)

// repoFalso devolve respostas fixas; ultimoInserido registra o que o
// motor mandou gravar.
type repoFalso struct {
	especialista        InfoEspecialista
	errEspecialista     error
	cliente             InfoCliente
	errCliente          error
	politica            PoliticaConvenio
	especialistaOcupado bool
	clienteOcupado      bool
	contagem            int
	ocupadosPorDia      map[string][]Intervalo
	errInserir          error
	ultimoInserido      *NovoAgendamento
}

func (r *repoFalso) EspecialistaOcupado(ctx context.Context, id int, data time.Time, inicio, fim Hora) (bool, error) {
	return r.especialistaOcupado, nil
}

func (r *repoFalso) ClienteOcupado(ctx context.Context, id int, data time.Time, inicio, fim Hora) (bool, error) {
	return r.clienteOcupado, nil
}

func (r *repoFalso) ContagemConvenio(ctx context.Context, idEspecialista, idConvenio int, data time.Time) (int, error) {
	return r.contagem, nil
}

func (r *repoFalso) AgendamentosDoDia(ctx context.Context, id int, data time.Time) ([]Intervalo, error) {
	return r.ocupadosPorDia[data.Format("2006-01-02")], nil
}

func (r *repoFalso) BuscarCliente(ctx context.Context, id int) (InfoCliente, error) {
	return r.cliente, r.errCliente
}

func (r *repoFalso) BuscarEspecialista(ctx context.Context, id int) (InfoEspecialista, error) {
	return r.especialista, r.errEspecialista
}

func (r *repoFalso) BuscarPolitica(ctx context.Context, idEspecialista, idConvenio int) (PoliticaConvenio, error) {
	return r.politica, nil
}

func (r *repoFalso) Inserir(ctx context.Context, novo NovoAgendamento) (int, error) {
	if r.errInserir != nil {
		return 0, r.errInserir
	}
	r.ultimoInserido = &novo
	return 42, nil
}

// Segunda-feira, 09:00. Todas as datas dos testes partem daqui.
var agoraTeste = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func novoRepoFalso() *repoFalso {
	return &repoFalso{
		especialista: InfoEspecialista{
			AceitaConvenio: true,
			TempoConsulta:  30,
			Convenios:      []int{1},
		},
		cliente: InfoCliente{TemConvenio: true, IDConvenio: 1},
	}
}

func novoMotorTeste(repo *repoFalso) *Motor {
	m := NovoMotor(repo)
	m.Agora = func() time.Time { return agoraTeste }
	m.Sugestor.Agora = m.Agora
	return m
}

func pedidoTeste() Pedido {
	return Pedido{
		IDCliente:      10,
		IDEspecialista: 20,
		Data:           agoraTeste.AddDate(0, 0, 7),
		Horario:        540,
	}
}

func TestAgendarDataPassada(t *testing.T) {
	m := novoMotorTeste(novoRepoFalso())
	p := pedidoTeste()
	p.Data = agoraTeste.AddDate(0, 0, -1)

	r := m.Agendar(context.Background(), p)
	if r.Aceito || r.Motivo != MotivoDataPassada {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoDataPassada)
	}
}

func TestAgendarHojeNaoEDataPassada(t *testing.T) {
	repo := novoRepoFalso()
	repo.cliente = InfoCliente{}
	m := novoMotorTeste(repo)
	p := pedidoTeste()
	p.Data = agoraTeste

	if r := m.Agendar(context.Background(), p); !r.Aceito {
		t.Fatalf("resultado = %+v, esperava aceite no próprio dia", r)
	}
}

func TestAgendarHojeComRelogioAOesteDeUTC(t *testing.T) {
	// Servidor em UTC-3: meia-noite local é depois da meia-noite UTC que
	// o parse da data do request produz. Hoje continua não sendo passado.
	brasilia := time.FixedZone("BRT", -3*60*60)
	repo := novoRepoFalso()
	repo.cliente = InfoCliente{}
	m := novoMotorTeste(repo)
	m.Agora = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, brasilia) }
	m.Sugestor.Agora = m.Agora

	p := pedidoTeste()
	p.Data = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if r := m.Agendar(context.Background(), p); !r.Aceito {
		t.Fatalf("resultado = %+v, esperava aceite no próprio dia", r)
	}
}

func TestAgendarAntecedenciaComRelogioAOesteDeUTC(t *testing.T) {
	brasilia := time.FixedZone("BRT", -3*60*60)
	repo := novoRepoFalso()
	repo.politica = PoliticaConvenio{Antecedencia: 3}
	m := novoMotorTeste(repo)
	m.Agora = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, brasilia) }
	m.Sugestor.Agora = m.Agora

	p := pedidoTeste()
	p.Data = time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	// D+3 com antecedência 3 satisfaz a fronteira inclusiva em qualquer
	// fuso do servidor.
	if r := m.Agendar(context.Background(), p); !r.Aceito {
		t.Fatalf("resultado = %+v, esperava aceite com exatamente 3 dias", r)
	}
}

func TestAgendarForaDoHorario(t *testing.T) {
	m := novoMotorTeste(novoRepoFalso())
	p := pedidoTeste()
	p.Horario = 420 // 07:00, antes da grade padrão

	r := m.Agendar(context.Background(), p)
	if r.Aceito || r.Motivo != MotivoForaDoHorario {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoForaDoHorario)
	}
}

func TestAgendarConsultaNaoPodeVazarJanela(t *testing.T) {
	repo := novoRepoFalso()
	repo.especialista.TempoConsulta = 60
	m := novoMotorTeste(repo)
	p := pedidoTeste()
	p.Horario = 690 // 11:30 + 60min vaza a janela da manhã

	r := m.Agendar(context.Background(), p)
	if r.Aceito || r.Motivo != MotivoForaDoHorario {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoForaDoHorario)
	}
}

func TestAgendarConflitos(t *testing.T) {
	repo := novoRepoFalso()
	repo.clienteOcupado = true
	m := novoMotorTeste(repo)

	r := m.Agendar(context.Background(), pedidoTeste())
	if r.Aceito || r.Motivo != MotivoClienteOcupado {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoClienteOcupado)
	}

	repo.clienteOcupado = false
	repo.especialistaOcupado = true
	r = m.Agendar(context.Background(), pedidoTeste())
	if r.Aceito || r.Motivo != MotivoEspecialistaOcupado {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoEspecialistaOcupado)
	}
}

func TestAgendarParticularGravaSemConvenio(t *testing.T) {
	repo := novoRepoFalso()
	repo.cliente = InfoCliente{}
	m := novoMotorTeste(repo)

	r := m.Agendar(context.Background(), pedidoTeste())
	if !r.Aceito || r.IDAgendamento != 42 {
		t.Fatalf("resultado = %+v, esperava aceite com id 42", r)
	}
	if repo.ultimoInserido == nil || repo.ultimoInserido.IDConvenio != nil {
		t.Fatalf("inserido = %+v, esperava convênio nulo", repo.ultimoInserido)
	}
	if repo.ultimoInserido.Duracao != 30 {
		t.Fatalf("duração gravada = %d, esperava 30", repo.ultimoInserido.Duracao)
	}
}

func TestAgendarConvenioNaoAceito(t *testing.T) {
	repo := novoRepoFalso()
	repo.cliente.IDConvenio = 99
	m := novoMotorTeste(repo)

	r := m.Agendar(context.Background(), pedidoTeste())
	if r.Aceito || r.Motivo != MotivoConvenioNaoAceito {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoConvenioNaoAceito)
	}

	repo.cliente.IDConvenio = 1
	repo.especialista.AceitaConvenio = false
	r = m.Agendar(context.Background(), pedidoTeste())
	if r.Aceito || r.Motivo != MotivoConvenioNaoAceito {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoConvenioNaoAceito)
	}
}

func TestAgendarAntecedenciaInsuficiente(t *testing.T) {
	repo := novoRepoFalso()
	repo.politica = PoliticaConvenio{Antecedencia: 5}
	m := novoMotorTeste(repo)
	p := pedidoTeste()
	p.Data = agoraTeste.AddDate(0, 0, 2)

	r := m.Agendar(context.Background(), p)
	if r.Aceito || r.Motivo != MotivoAntecedencia {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoAntecedencia)
	}
	if len(r.Sugestoes) == 0 {
		t.Fatal("recusa por antecedência deveria trazer sugestões")
	}
	// Nenhuma sugestão pode violar a própria antecedência.
	minima := agoraTeste.AddDate(0, 0, 5).Format("2006-01-02")
	for _, s := range r.Sugestoes {
		if s.Data < minima {
			t.Fatalf("sugestão %+v viola a antecedência mínima %s", s, minima)
		}
	}
	if repo.ultimoInserido != nil {
		t.Fatal("recusa não deveria gravar nada")
	}
}

func TestAgendarAntecedenciaNaFronteira(t *testing.T) {
	repo := novoRepoFalso()
	repo.politica = PoliticaConvenio{Antecedencia: 3}
	m := novoMotorTeste(repo)
	p := pedidoTeste()
	p.Data = agoraTeste.AddDate(0, 0, 3)

	if r := m.Agendar(context.Background(), p); !r.Aceito {
		t.Fatalf("resultado = %+v, esperava aceite com exatamente 3 dias", r)
	}
}

func TestAgendarLimiteConvenio(t *testing.T) {
	repo := novoRepoFalso()
	repo.politica = PoliticaConvenio{MaxConsulta: 2}
	repo.contagem = 2
	m := novoMotorTeste(repo)

	r := m.Agendar(context.Background(), pedidoTeste())
	if r.Aceito || r.Motivo != MotivoLimiteConvenio {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoLimiteConvenio)
	}
	if !r.PodeIgnorar || r.Limite != 2 || r.QtdAtual != 2 {
		t.Fatalf("resultado = %+v, esperava pode_ignorar com limite 2 e qtd 2", r)
	}
	if repo.ultimoInserido != nil {
		t.Fatal("recusa branda não deveria gravar nada")
	}
}

func TestAgendarLimiteIgnoradoGravaComAviso(t *testing.T) {
	repo := novoRepoFalso()
	repo.politica = PoliticaConvenio{MaxConsulta: 2}
	repo.contagem = 2
	m := novoMotorTeste(repo)
	p := pedidoTeste()
	p.IgnorarLimite = true

	r := m.Agendar(context.Background(), p)
	if !r.Aceito {
		t.Fatalf("resultado = %+v, esperava aceite forçado", r)
	}
	if repo.ultimoInserido == nil || repo.ultimoInserido.Aviso == "" {
		t.Fatalf("inserido = %+v, esperava aviso preenchido", repo.ultimoInserido)
	}
	if r.Aviso == "" {
		t.Fatalf("resultado = %+v, esperava aviso no resultado", r)
	}
}

func TestAgendarIgnorarLimiteSemEstouroNaoMarcaAviso(t *testing.T) {
	repo := novoRepoFalso()
	repo.politica = PoliticaConvenio{MaxConsulta: 2}
	repo.contagem = 1
	m := novoMotorTeste(repo)
	p := pedidoTeste()
	p.IgnorarLimite = true

	r := m.Agendar(context.Background(), p)
	if !r.Aceito {
		t.Fatalf("resultado = %+v, esperava aceite", r)
	}
	// Dentro da cota o ignorar_limite não tem efeito: nada de aviso na
	// linha nem no resultado.
	if repo.ultimoInserido == nil || repo.ultimoInserido.Aviso != "" {
		t.Fatalf("inserido = %+v, esperava sem aviso", repo.ultimoInserido)
	}
	if r.Aviso != "" {
		t.Fatalf("resultado = %+v, esperava sem aviso", r)
	}
}

func TestAgendarDentroDoLimiteGravaSemAviso(t *testing.T) {
	repo := novoRepoFalso()
	repo.politica = PoliticaConvenio{MaxConsulta: 2}
	repo.contagem = 1
	m := novoMotorTeste(repo)

	r := m.Agendar(context.Background(), pedidoTeste())
	if !r.Aceito {
		t.Fatalf("resultado = %+v, esperava aceite", r)
	}
	ins := repo.ultimoInserido
	if ins == nil || ins.Aviso != "" || ins.IDConvenio == nil || *ins.IDConvenio != 1 {
		t.Fatalf("inserido = %+v, esperava convênio 1 sem aviso", ins)
	}
}

func TestAgendarMaxConsultaZeroNaoLimita(t *testing.T) {
	repo := novoRepoFalso()
	repo.politica = PoliticaConvenio{MaxConsulta: 0}
	repo.contagem = 50
	m := novoMotorTeste(repo)

	if r := m.Agendar(context.Background(), pedidoTeste()); !r.Aceito {
		t.Fatalf("resultado = %+v, max_consulta zero não deveria limitar", r)
	}
}

func TestAgendarCorridaPerdidaNaGravacao(t *testing.T) {
	casos := []struct {
		err    error
		motivo string
	}{
		{ErrConflitoEspecialista, MotivoEspecialistaOcupado},
		{ErrConflitoCliente, MotivoClienteOcupado},
	}
	for _, c := range casos {
		repo := novoRepoFalso()
		repo.cliente = InfoCliente{}
		repo.errInserir = c.err
		m := novoMotorTeste(repo)

		r := m.Agendar(context.Background(), pedidoTeste())
		if r.Aceito || r.Motivo != c.motivo {
			t.Fatalf("erro %v: resultado = %+v, esperava recusa %s", c.err, r, c.motivo)
		}
	}
}

func TestAgendarCadastrosInexistentes(t *testing.T) {
	repo := novoRepoFalso()
	repo.errEspecialista = ErrEspecialistaNaoEncontrado
	m := novoMotorTeste(repo)

	r := m.Agendar(context.Background(), pedidoTeste())
	if r.Aceito || r.Motivo != MotivoEspecialistaInexistente {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoEspecialistaInexistente)
	}

	repo.errEspecialista = nil
	repo.errCliente = ErrClienteNaoEncontrado
	r = m.Agendar(context.Background(), pedidoTeste())
	if r.Aceito || r.Motivo != MotivoClienteInexistente {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoClienteInexistente)
	}
	if repo.ultimoInserido != nil {
		t.Fatal("recusa não deveria gravar nada")
	}
}

func TestAgendarErroDePersistencia(t *testing.T) {
	repo := novoRepoFalso()
	repo.errEspecialista = errors.New("conexão caiu")
	m := novoMotorTeste(repo)

	r := m.Agendar(context.Background(), pedidoTeste())
	if r.Aceito || r.Motivo != MotivoPersistencia {
		t.Fatalf("resultado = %+v, esperava recusa %s", r, MotivoPersistencia)
	}
}

func TestAgendarDuracaoPadrao(t *testing.T) {
	repo := novoRepoFalso()
	repo.cliente = InfoCliente{}
	repo.especialista.TempoConsulta = 0
	m := novoMotorTeste(repo)

	if r := m.Agendar(context.Background(), pedidoTeste()); !r.Aceito {
		t.Fatalf("resultado = %+v, esperava aceite", r)
	}
	if repo.ultimoInserido.Duracao != DuracaoPadraoMin {
		t.Fatalf("duração = %d, esperava %d", repo.ultimoInserido.Duracao, DuracaoPadraoMin)
	}
}

func TestValidarNaoGrava(t *testing.T) {
	repo := novoRepoFalso()
	repo.cliente = InfoCliente{}
	m := novoMotorTeste(repo)

	r := m.Validar(context.Background(), pedidoTeste())
	if !r.Aceito {
		t.Fatalf("resultado = %+v, esperava aceite", r)
	}
	if repo.ultimoInserido != nil {
		t.Fatal("Validar não pode gravar")
	}
}
