package agenda

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Hora representa um horário do dia em minutos desde a meia-noite.
// Os intervalos de agendamento são sempre semiabertos: [inicio, fim).
type Hora int

// ParseHora aceita "HH:MM" ou "HH:MM:SS" (os segundos são descartados).
func ParseHora(s string) (Hora, error) {
	partes := strings.Split(strings.TrimSpace(s), ":")
	if len(partes) < 2 {
		return 0, fmt.Errorf("horário inválido: %q", s)
	}
	hh, err := strconv.Atoi(partes[0])
	if err != nil {
		return 0, fmt.Errorf("horário inválido: %q", s)
	}
	mm, err := strconv.Atoi(partes[1])
	if err != nil {
		return 0, fmt.Errorf("horário inválido: %q", s)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("horário fora do intervalo: %q", s)
	}
	return Hora(hh*60 + mm), nil
}

// String formata no padrão "HH:MM" usado nas respostas e no banco.
func (h Hora) String() string {
	return fmt.Sprintf("%02d:%02d", int(h)/60, int(h)%60)
}

// Intervalo é um par [Inicio, Fim) dentro de um mesmo dia.
type Intervalo struct {
	Inicio Hora
	Fim    Hora
}

// Sobrepoe aplica a regra semiaberta: há conflito sse
// inicioA < fimB && inicioB < fimA.
func (i Intervalo) Sobrepoe(outro Intervalo) bool {
	return i.Inicio < outro.Fim && outro.Inicio < i.Fim
}

// DiaDe descarta o componente de hora, preservando só a data. O
// resultado é sempre meia-noite UTC: as datas comparadas aqui vêm de
// origens com fusos distintos (relógio do servidor vs data parseada do
// request) e comparar instantes misturaria calendário com fuso.
func DiaDe(t time.Time) time.Time {
	ano, mes, dia := t.Date()
	return time.Date(ano, mes, dia, 0, 0, 0, 0, time.UTC)
}

// DiasEntre devolve a diferença em dias de calendário entre duas datas
// (componente de hora e fuso ignorados). Positivo quando data está no
// futuro.
func DiasEntre(hoje, data time.Time) int {
	return int(DiaDe(data).Sub(DiaDe(hoje)).Hours() / 24)
}
