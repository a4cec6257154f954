package models

type Usuario struct {
	IDUsuario int    `json:"id_usuario"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	IDNivel   int    `json:"id_nivel"`
	Nivel     string `json:"nivel,omitempty"`
	MFAAtivo  bool   `json:"mfa_ativo"`
}

type CriarUsuarioRequest struct {
	Nome    string `json:"nome"`
	Email   string `json:"email"`
	Senha   string `json:"senha"`
	IDNivel int    `json:"id_nivel"`
}

type AtualizarUsuarioRequest struct {
	Nome    *string `json:"nome"`
	Email   *string `json:"email"`
	Senha   *string `json:"senha"`
	IDNivel *int    `json:"id_nivel"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Senha     string `json:"senha"`
	CodigoMFA string `json:"codigo_mfa"`
}

type RedefinicaoRequest struct {
	Email string `json:"email"`
}

type ConfirmarRedefinicaoRequest struct {
	Email     string `json:"email"`
	Codigo    string `json:"codigo"`
	SenhaNova string `json:"senha_nova"`
}

type VerificarMFARequest struct {
	Codigo string `json:"codigo"`
}
