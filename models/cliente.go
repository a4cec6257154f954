package models

type Cliente struct {
	IDCliente        int     `json:"id_cliente"`
	Nome             string  `json:"nome"`
	CPF              string  `json:"cpf"`
	Telefone         *string `json:"telefone,omitempty"`
	Email            *string `json:"email,omitempty"`
	IDConvenio       *int    `json:"id_convenio,omitempty"`
	CarteiraConvenio *string `json:"cpf_carteira,omitempty"`
	NomeConvenio     *string `json:"nome_convenio,omitempty"`
}

type CriarClienteRequest struct {
	Nome             string  `json:"nome"`
	CPF              string  `json:"cpf"`
	Telefone         *string `json:"telefone"`
	Email            *string `json:"email"`
	IDConvenio       *int    `json:"id_convenio"`
	CarteiraConvenio *string `json:"cpf_carteira"`
}

type AtualizarClienteRequest struct {
	Nome             *string `json:"nome"`
	Telefone         *string `json:"telefone"`
	Email            *string `json:"email"`
	IDConvenio       *int    `json:"id_convenio"`
	CarteiraConvenio *string `json:"cpf_carteira"`
}
