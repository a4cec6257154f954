package models

// Agendamento é a linha da tabela agendamentos acrescida dos nomes de
// exibição usados nas listagens.
type Agendamento struct {
	IDAgendamento    int     `json:"id_agendamento"`
	IDCliente        int     `json:"id_cliente"`
	IDEspecialista   int     `json:"id_especialista"`
	Data             string  `json:"data"`
	Horario          string  `json:"horario"`
	Duracao          int     `json:"duracao"`
	IDConvenio       *int    `json:"id_convenio,omitempty"`
	Aviso            *string `json:"aviso,omitempty"`
	NomeCliente      string  `json:"nome_cliente,omitempty"`
	NomeEspecialista string  `json:"nome_especialista,omitempty"`
	NomeConvenio     *string `json:"nome_convenio,omitempty"`
	CriadoEm         string  `json:"criado_em,omitempty"`
}

type CriarAgendamentoRequest struct {
	IDCliente      int    `json:"id_cliente"`
	IDEspecialista int    `json:"id_especialista"`
	Data           string `json:"data"`
	Horario        string `json:"horario"`
	IgnorarLimite  bool   `json:"ignorar_limite"`
}

// AtualizarAgendamentoRequest atualiza só os campos presentes.
type AtualizarAgendamentoRequest struct {
	IDEspecialista *int    `json:"id_especialista"`
	Data           *string `json:"data"`
	Horario        *string `json:"horario"`
}
