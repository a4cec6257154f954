package agenda

import "errors"

// Erros sentinela devolvidos pelo repositório. Os dois de conflito
// também são usados para traduzir violações de constraint do Postgres
// de volta ao motivo de negócio correto quando dois pedidos concorrentes
// passam pelas checagens e só um consegue gravar.
var (
	ErrConflitoEspecialista      = errors.New("agenda: especialista já ocupado no intervalo")
	ErrConflitoCliente           = errors.New("agenda: cliente já ocupado no intervalo")
	ErrClienteNaoEncontrado      = errors.New("agenda: cliente não encontrado")
	ErrEspecialistaNaoEncontrado = errors.New("agenda: especialista não encontrado")
)
