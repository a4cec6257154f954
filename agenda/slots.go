package agenda

// IteradorSlots enumera, sob demanda, os inícios de consulta possíveis
// dentro de um conjunto de janelas. Dentro de cada janela o passo é a
// própria duração e o último slot só é emitido se couber inteiro
// (nada de consulta "pela metade" no fim do expediente).
type IteradorSlots struct {
	janelas []Janela
	duracao Hora
	idx     int
	atual   Hora
}

func NovoIteradorSlots(janelas []Janela, duracaoMin int) *IteradorSlots {
	it := &IteradorSlots{janelas: janelas, duracao: Hora(duracaoMin)}
	it.Reiniciar()
	return it
}

// Reiniciar volta ao primeiro slot da primeira janela.
func (it *IteradorSlots) Reiniciar() {
	it.idx = 0
	if len(it.janelas) > 0 {
		it.atual = it.janelas[0].Inicio
	}
}

// Proximo devolve o próximo início de slot; ok=false quando a sequência
// termina. Duração não positiva encerra de imediato para não iterar
// para sempre.
func (it *IteradorSlots) Proximo() (Hora, bool) {
	if it.duracao <= 0 {
		return 0, false
	}
	for it.idx < len(it.janelas) {
		j := it.janelas[it.idx]
		if it.atual+it.duracao <= j.Fim {
			slot := it.atual
			it.atual += it.duracao
			return slot, true
		}
		it.idx++
		if it.idx < len(it.janelas) {
			it.atual = it.janelas[it.idx].Inicio
		}
	}
	return 0, false
}
