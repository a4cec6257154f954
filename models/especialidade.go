package models

type Especialidade struct {
	IDEspecialidade int    `json:"id_especialidade"`
	Nome            string `json:"nome"`
}

type EspecialidadeRequest struct {
	Nome string `json:"nome"`
}
