package models

type Convenio struct {
	IDConvenio int    `json:"id_convenio"`
	Nome       string `json:"nome"`
}

type ConvenioRequest struct {
	Nome string `json:"nome"`
}
