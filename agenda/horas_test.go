package agenda

import (
	"testing"
	"time"
)

func TestParseHora(t *testing.T) {
	casos := []struct {
		entrada string
		quer    Hora
	}{
		{"08:00", 480},
		{"08:00:00", 480},
		{" 13:30 ", 810},
		{"00:00", 0},
		{"23:59", 23*60 + 59},
	}
	for _, c := range casos {
		h, err := ParseHora(c.entrada)
		if err != nil {
			t.Fatalf("ParseHora(%q): %v", c.entrada, err)
		}
		if h != c.quer {
			t.Fatalf("ParseHora(%q) = %d, esperava %d", c.entrada, h, c.quer)
		}
	}
}

func TestParseHoraInvalida(t *testing.T) {
	for _, entrada := range []string{"", "8", "24:00", "12:60", "ab:cd", "-1:00"} {
		if _, err := ParseHora(entrada); err == nil {
			t.Fatalf("ParseHora(%q) deveria falhar", entrada)
		}
	}
}

func TestHoraString(t *testing.T) {
	if got := Hora(480).String(); got != "08:00" {
		t.Fatalf("Hora(480).String() = %q", got)
	}
	if got := Hora(810).String(); got != "13:30" {
		t.Fatalf("Hora(810).String() = %q", got)
	}
}

func TestSobrepoeSemiaberto(t *testing.T) {
	a := Intervalo{Inicio: 480, Fim: 510}

	// Intervalos encostados não conflitam: o fim é aberto.
	if a.Sobrepoe(Intervalo{Inicio: 510, Fim: 540}) {
		t.Fatal("intervalos adjacentes não deveriam conflitar")
	}
	if a.Sobrepoe(Intervalo{Inicio: 450, Fim: 480}) {
		t.Fatal("intervalos adjacentes não deveriam conflitar")
	}
	if !a.Sobrepoe(Intervalo{Inicio: 500, Fim: 530}) {
		t.Fatal("sobreposição parcial deveria conflitar")
	}
	if !a.Sobrepoe(Intervalo{Inicio: 470, Fim: 520}) {
		t.Fatal("intervalo que engloba deveria conflitar")
	}
	if !a.Sobrepoe(a) {
		t.Fatal("intervalo idêntico deveria conflitar")
	}
}

func TestDiaDeNormalizaFuso(t *testing.T) {
	brasilia := time.FixedZone("BRT", -3*60*60)
	local := time.Date(2026, 3, 2, 9, 0, 0, 0, brasilia)
	utc := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// O mesmo dia de calendário em fusos diferentes vira o mesmo instante.
	if !DiaDe(local).Equal(DiaDe(utc)) {
		t.Fatalf("DiaDe(local) = %v, DiaDe(utc) = %v, esperava iguais", DiaDe(local), DiaDe(utc))
	}
	if DiaDe(local).Before(DiaDe(utc)) || DiaDe(utc).Before(DiaDe(local)) {
		t.Fatal("o mesmo dia de calendário não pode ser antes dele mesmo")
	}
}

func TestDiasEntreFusosDiferentes(t *testing.T) {
	// Relógio do servidor a oeste de UTC, data do request em UTC (como o
	// parse de "AAAA-MM-DD" produz). A conta é de calendário: D+3 são 3
	// dias mesmo com meia-noite local depois da meia-noite UTC.
	brasilia := time.FixedZone("BRT", -3*60*60)
	hoje := time.Date(2026, 3, 2, 9, 0, 0, 0, brasilia)
	data := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if d := DiasEntre(hoje, data); d != 3 {
		t.Fatalf("DiasEntre = %d, esperava 3", d)
	}
	if d := DiasEntre(hoje, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)); d != 0 {
		t.Fatalf("DiasEntre no mesmo dia = %d, esperava 0", d)
	}
}

func TestDiasEntreIgnoraHorario(t *testing.T) {
	hoje := time.Date(2026, 3, 2, 23, 50, 0, 0, time.UTC)
	data := time.Date(2026, 3, 5, 0, 10, 0, 0, time.UTC)
	if d := DiasEntre(hoje, data); d != 3 {
		t.Fatalf("DiasEntre = %d, esperava 3", d)
	}
	if d := DiasEntre(data, hoje); d != -3 {
		t.Fatalf("DiasEntre invertido = %d, esperava -3", d)
	}
	if d := DiasEntre(hoje, hoje); d != 0 {
		t.Fatalf("DiasEntre no mesmo dia = %d, esperava 0", d)
	}
}
