package models

// Empresa é o perfil da clínica no banco do próprio tenant.
type Empresa struct {
	IDEmpresa int     `json:"id_empresa"`
	Nome      string  `json:"nome"`
	CNPJ      *string `json:"cnpj,omitempty"`
	Telefone  *string `json:"telefone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Endereco  *string `json:"endereco,omitempty"`
}

type AtualizarEmpresaRequest struct {
	Nome     *string `json:"nome"`
	CNPJ     *string `json:"cnpj"`
	Telefone *string `json:"telefone"`
	Email    *string `json:"email"`
	Endereco *string `json:"endereco"`
}
