package agenda

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// Sugestao é um horário alternativo pronto para a resposta HTTP.
type Sugestao struct {
	Data    string `json:"data"`
	Horario string `json:"horario"`
}

// ParametrosSugestao descreve o pedido recusado em torno do qual as
// alternativas serão procuradas. IDConvenio nulo significa particular:
// sem antecedência e sem saturação de plano.
type ParametrosSugestao struct {
	IDEspecialista int
	IDConvenio     *int
	Data           time.Time
	Horario        Hora
	Duracao        int
	Antecedencia   int
	MaxConsulta    int
	Grade          []byte
}

// FonteSugestao é o recorte do repositório que o sugestor consulta.
// Repositorio satisfaz a interface.
type FonteSugestao interface {
	AgendamentosDoDia(ctx context.Context, idEspecialista int, data time.Time) ([]Intervalo, error)
	ContagemConvenio(ctx context.Context, idEspecialista, idConvenio int, data time.Time) (int, error)
}

// Pontuador ordena os candidatos: quanto menor a pontuação, melhor a
// alternativa. delta é a distância em dias até a data desejada.
type Pontuador interface {
	Pontuar(slot, desejado Hora, delta int) int
}

// PontuacaoProximidade privilegia horários próximos do pedido original e
// penaliza cada dia de distância em 5 pontos, o equivalente a empurrar o
// horário em 5 minutos.
type PontuacaoProximidade struct{}

func (PontuacaoProximidade) Pontuar(slot, desejado Hora, delta int) int {
	diff := int(slot) - int(desejado)
	if diff < 0 {
		diff = -diff
	}
	return diff + 5*delta
}

type candidato struct {
	dia       time.Time
	slot      Hora
	pontuacao int
}

// Sugestor procura horários livres nos dias seguintes ao pedido
// recusado. Os dias são avaliados em paralelo, mas a agregação percorre
// os resultados em ordem de delta, então a saída é determinística para
// um mesmo estado da agenda.
type Sugestor struct {
	fonte     FonteSugestao
	Pontuador Pontuador
	// Agora existe para os testes fixarem o relógio.
	Agora func() time.Time

	// Horizonte é o último delta considerado (inclusive).
	Horizonte int
	// K é o número de sugestões devolvidas.
	K int
	// LimiteCandidatos corta a agregação quando o conjunto já é grande
	// o bastante para escolher os K melhores.
	LimiteCandidatos int
	// Paralelismo limita quantos dias são consultados ao mesmo tempo.
	Paralelismo int
}

func NovoSugestor(fonte FonteSugestao) *Sugestor {
	return &Sugestor{
		fonte:            fonte,
		Pontuador:        PontuacaoProximidade{},
		Agora:            time.Now,
		Horizonte:        14,
		K:                3,
		LimiteCandidatos: 50,
		Paralelismo:      4,
	}
}

// Sugerir devolve até K alternativas em ordem de pontuação. Lista vazia
// não é erro: significa que a agenda está cheia no horizonte inteiro.
func (s *Sugestor) Sugerir(ctx context.Context, p ParametrosSugestao) ([]Sugestao, error) {
	duracao := p.Duracao
	if duracao <= 0 {
		duracao = DuracaoPadraoMin
	}
	hoje := DiaDe(s.Agora())
	base := DiaDe(p.Data)

	porDelta := make([][]candidato, s.Horizonte+1)

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.paralelismo())
	for delta := 0; delta <= s.Horizonte; delta++ {
		dia := base.AddDate(0, 0, delta)
		if DiasEntre(hoje, dia) < p.Antecedencia {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(delta int, dia time.Time) {
			defer wg.Done()
			defer func() { <-sem }()
			porDelta[delta] = s.avaliarDia(ctx, p, dia, delta, duracao)
		}(delta, dia)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pool []candidato
	for _, cands := range porDelta {
		pool = append(pool, cands...)
		if len(pool) >= s.LimiteCandidatos {
			pool = pool[:s.LimiteCandidatos]
			break
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].pontuacao < pool[j].pontuacao
	})

	vistos := make(map[string]bool, s.K)
	sugestoes := make([]Sugestao, 0, s.K)
	for _, c := range pool {
		sug := Sugestao{
			Data:    c.dia.Format("2006-01-02"),
			Horario: c.slot.String(),
		}
		chave := sug.Data + " " + sug.Horario
		if vistos[chave] {
			continue
		}
		vistos[chave] = true
		sugestoes = append(sugestoes, sug)
		if len(sugestoes) == s.K {
			break
		}
	}
	return sugestoes, nil
}

// avaliarDia gera os slots livres de um dia e os pontua. Falha de
// consulta descarta o dia inteiro: sugestão é melhor-esforço e os demais
// dias seguem valendo.
func (s *Sugestor) avaliarDia(ctx context.Context, p ParametrosSugestao, dia time.Time, delta, duracao int) []candidato {
	if p.IDConvenio != nil && p.MaxConsulta > 0 {
		qtd, err := s.fonte.ContagemConvenio(ctx, p.IDEspecialista, *p.IDConvenio, dia)
		if err != nil {
			log.Printf("agenda: sugestão descartou %s: %v", dia.Format("2006-01-02"), err)
			return nil
		}
		if qtd >= p.MaxConsulta {
			return nil
		}
	}

	ocupados, err := s.fonte.AgendamentosDoDia(ctx, p.IDEspecialista, dia)
	if err != nil {
		log.Printf("agenda: sugestão descartou %s: %v", dia.Format("2006-01-02"), err)
		return nil
	}

	grade := MontarGrade(p.Grade, dia)
	it := NovoIteradorSlots(grade, duracao)

	var cands []candidato
	for {
		slot, ok := it.Proximo()
		if !ok {
			break
		}
		intervalo := Intervalo{Inicio: slot, Fim: slot + Hora(duracao)}
		if ocupadoEm(ocupados, intervalo) {
			continue
		}
		cands = append(cands, candidato{
			dia:       dia,
			slot:      slot,
			pontuacao: s.Pontuador.Pontuar(slot, p.Horario, delta),
		})
	}
	return cands
}

func (s *Sugestor) paralelismo() int {
	if s.Paralelismo <= 0 {
		return 1
	}
	return s.Paralelismo
}

func ocupadoEm(ocupados []Intervalo, intervalo Intervalo) bool {
	for _, o := range ocupados {
		if o.Sobrepoe(intervalo) {
			return true
		}
	}
	return false
}
