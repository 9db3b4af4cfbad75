package models

import "time"

// Membership lifecycle events, independent of the payment streams.
// clientes_excluidos and frequencia are optional in older deployments; the
// reports degrade to empty results when they are absent.

type NewClientRecord struct {
	ID         int       `gorm:"primaryKey;column:id"`
	GymID      int       `gorm:"column:id_academia;index"`
	IdOriginal int       `gorm:"column:id_original"`
	Nome       string    `gorm:"column:nome;size:255"`
	Atividades *string   `gorm:"column:atividades;size:255"`
	Data       time.Time `gorm:"column:data;type:date;index"`
	Hora       string    `gorm:"column:hora;type:time"`
}

func (NewClientRecord) TableName() string { return "clientes_novos" }

type RemovedClientRecord struct {
	ID         int       `gorm:"primaryKey;column:id"`
	GymID      int       `gorm:"column:id_academia;index"`
	IdOriginal int       `gorm:"column:id_original"`
	Nome       string    `gorm:"column:nome;size:255"`
	Atividades *string   `gorm:"column:atividades;size:255"`
	Data       time.Time `gorm:"column:data;type:date;index"`
	Hora       string    `gorm:"column:hora;type:time"`
}

func (RemovedClientRecord) TableName() string { return "clientes_excluidos" }

// AttendanceEvent mirrors `frequencia` (turnstile access log). No monetary
// fields.
type AttendanceEvent struct {
	ID         int       `gorm:"primaryKey;column:id"`
	GymID      int       `gorm:"column:id_academia;index"`
	Cliente    string    `gorm:"column:cliente;size:255"`
	TipoAcesso string    `gorm:"column:tipo_acesso;size:100"`
	Motivo     *string   `gorm:"column:motivo;size:255"`
	Data       time.Time `gorm:"column:data;type:date;index"`
	Hora       string    `gorm:"column:hora;type:time"`
}

func (AttendanceEvent) TableName() string { return "frequencia" }
