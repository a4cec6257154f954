package models

import "encoding/json"

type Especialista struct {
	IDEspecialista     int             `json:"id_especialista"`
	Nome               string          `json:"nome"`
	Registro           *string         `json:"registro,omitempty"`
	AceitaConvenio     bool            `json:"aceita_convenio"`
	TempoConsulta      int             `json:"tempo_consulta"`
	HorarioAtendimento json.RawMessage `json:"horario_atendimento,omitempty"`
	Convenios          []int           `json:"convenios,omitempty"`
	Especialidades     []int           `json:"especialidades,omitempty"`
}

type CriarEspecialistaRequest struct {
	Nome               string          `json:"nome"`
	Registro           *string         `json:"registro"`
	AceitaConvenio     bool            `json:"aceita_convenio"`
	TempoConsulta      int             `json:"tempo_consulta"`
	HorarioAtendimento json.RawMessage `json:"horario_atendimento"`
	Convenios          []int           `json:"convenios"`
	Especialidades     []int           `json:"especialidades"`
}

type AtualizarEspecialistaRequest struct {
	Nome               *string         `json:"nome"`
	Registro           *string         `json:"registro"`
	AceitaConvenio     *bool           `json:"aceita_convenio"`
	TempoConsulta      *int            `json:"tempo_consulta"`
	HorarioAtendimento json.RawMessage `json:"horario_atendimento"`
	Convenios          []int           `json:"convenios"`
	Especialidades     []int           `json:"especialidades"`
}
