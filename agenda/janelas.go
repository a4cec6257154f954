package agenda

import (
	"encoding/json"
	"time"
)

// Janela é um bloco contíguo de atendimento dentro de um dia.
type Janela struct {
	Inicio Hora
	Fim    Hora
}

type janelaJSON struct {
	Inicio string `json:"inicio"`
	Fim    string `json:"fim"`
}

// Nomes aceitos para cada dia da semana no formato de mapa do
// horario_atendimento. A grafia com e sem acento é tolerada porque o
// campo é editado à mão em vários tenants.
var chavesDia = map[time.Weekday][]string{
	time.Monday:    {"seg", "segunda"},
	time.Tuesday:   {"ter", "terca", "terça"},
	time.Wednesday: {"qua", "quarta"},
	time.Thursday:  {"qui", "quinta"},
	time.Friday:    {"sex", "sexta"},
	time.Saturday:  {"sab", "sabado", "sábado"},
	time.Sunday:    {"dom", "domingo"},
}

// GradePadrao é o fallback quando o especialista não tem horário
// configurado ou a configuração não pôde ser lida.
func GradePadrao() []Janela {
	return []Janela{
		{Inicio: 8 * 60, Fim: 12 * 60},
		{Inicio: 13*60 + 30, Fim: 17*60 + 30},
	}
}

// MontarGrade converte a coluna horario_atendimento em janelas ordenadas
// para a data de referência. Aceita dois formatos:
//
//	lista simples: [{"inicio":"08:00","fim":"12:00"}, ...] — vale todo dia
//	mapa por dia:  {"seg":[{...}], "ter":[{...}], ...}
//
// Qualquer configuração ausente, vazia ou ilegível cai na GradePadrao;
// a função nunca devolve erro nem lista vazia.
func MontarGrade(raw []byte, data time.Time) []Janela {
	if len(raw) == 0 {
		return GradePadrao()
	}

	var lista []janelaJSON
	if err := json.Unmarshal(raw, &lista); err == nil {
		grade := make([]Janela, 0, len(lista))
		for _, j := range lista {
			inicio, err := ParseHora(j.Inicio)
			if err != nil {
				return GradePadrao()
			}
			fim, err := ParseHora(j.Fim)
			if err != nil {
				return GradePadrao()
			}
			grade = append(grade, Janela{Inicio: inicio, Fim: fim})
		}
		if len(grade) == 0 {
			return GradePadrao()
		}
		return grade
	}

	var mapa map[string][]janelaJSON
	if err := json.Unmarshal(raw, &mapa); err != nil {
		return GradePadrao()
	}

	var blocos []janelaJSON
	for _, chave := range chavesDia[data.Weekday()] {
		if b, ok := mapa[chave]; ok && len(b) > 0 {
			blocos = b
			break
		}
	}

	grade := make([]Janela, 0, len(blocos))
	for _, j := range blocos {
		// No formato por dia os campos faltantes ganham o expediente
		// cheio em vez de invalidar o bloco inteiro.
		if j.Inicio == "" {
			j.Inicio = "08:00"
		}
		if j.Fim == "" {
			j.Fim = "17:00"
		}
		inicio, err := ParseHora(j.Inicio)
		if err != nil {
			continue
		}
		fim, err := ParseHora(j.Fim)
		if err != nil {
			continue
		}
		grade = append(grade, Janela{Inicio: inicio, Fim: fim})
	}
	if len(grade) == 0 {
		return GradePadrao()
	}
	return grade
}

// GradeContem verifica se [inicio, fim) cabe inteiro em alguma janela.
func GradeContem(grade []Janela, inicio, fim Hora) bool {
	for _, j := range grade {
		if inicio >= j.Inicio && fim <= j.Fim {
			return true
		}
	}
	return false
}
