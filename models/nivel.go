package models

type Nivel struct {
	IDNivel int    `json:"id_nivel"`
	Nome    string `json:"nome"`
}

type NivelRequest struct {
	Nome string `json:"nome"`
}
