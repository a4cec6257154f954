package models

// GerenciaAgenda é a política do par especialista/convênio: quantas
// consultas por dia o convênio banca e com quantos dias de antecedência
// o agendamento precisa ser feito.
type GerenciaAgenda struct {
	IDGerencia       int    `json:"id_gerencia"`
	IDEspecialista   int    `json:"id_especialista"`
	IDConvenio       int    `json:"id_convenio"`
	MaxConsulta      int    `json:"max_consulta"`
	Antecedencia     int    `json:"antecedencia"`
	NomeEspecialista string `json:"nome_especialista,omitempty"`
	NomeConvenio     string `json:"nome_convenio,omitempty"`
}

type GerenciaAgendaRequest struct {
	IDEspecialista int `json:"id_especialista"`
	IDConvenio     int `json:"id_convenio"`
	MaxConsulta    int `json:"max_consulta"`
	Antecedencia   int `json:"antecedencia"`
}
