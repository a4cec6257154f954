package agenda

import "testing"

func coletarSlots(it *IteradorSlots) []Hora {
	var slots []Hora
	for {
		s, ok := it.Proximo()
		if !ok {
			return slots
		}
		slots = append(slots, s)
	}
}

func TestIteradorSlots(t *testing.T) {
	janelas := []Janela{{Inicio: 480, Fim: 600}, {Inicio: 810, Fim: 870}}
	it := NovoIteradorSlots(janelas, 30)

	quer := []Hora{480, 510, 540, 570, 810, 840}
	got := coletarSlots(it)
	if len(got) != len(quer) {
		t.Fatalf("slots = %v, esperava %v", got, quer)
	}
	for i := range quer {
		if got[i] != quer[i] {
			t.Fatalf("slot %d = %v, esperava %v", i, got[i], quer[i])
		}
	}
}

func TestIteradorSlotsNaoEmiteSlotParcial(t *testing.T) {
	// Janela de 50 minutos com consulta de 30: só cabe um slot inteiro.
	it := NovoIteradorSlots([]Janela{{Inicio: 480, Fim: 530}}, 30)
	got := coletarSlots(it)
	if len(got) != 1 || got[0] != 480 {
		t.Fatalf("slots = %v, esperava [480]", got)
	}
}

func TestIteradorSlotsReiniciar(t *testing.T) {
	it := NovoIteradorSlots([]Janela{{Inicio: 480, Fim: 540}}, 30)
	primeira := coletarSlots(it)
	it.Reiniciar()
	segunda := coletarSlots(it)
	if len(primeira) != 2 || len(segunda) != 2 {
		t.Fatalf("primeira = %v, segunda = %v", primeira, segunda)
	}
}

func TestIteradorSlotsDuracaoInvalida(t *testing.T) {
	it := NovoIteradorSlots([]Janela{{Inicio: 480, Fim: 720}}, 0)
	if _, ok := it.Proximo(); ok {
		t.Fatal("duração zero não deveria emitir slot")
	}
	it = NovoIteradorSlots(nil, 30)
	if _, ok := it.Proximo(); ok {
		t.Fatal("sem janelas não deveria emitir slot")
	}
}
