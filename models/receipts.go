package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// The four receipt streams keep their legacy table layouts. The aggregation
// engine only ever reads them; ingestion happens out of process.

// DuesPayment mirrors `recebimentos_mensalidades` (recurring membership dues).
// IdOriginal is the client identity carried over from the source system.
type DuesPayment struct {
	ID          int             `gorm:"primaryKey;column:id"`
	GymID       int             `gorm:"column:id_academia;index"`
	IdOriginal  int             `gorm:"column:id_original;index"`
	Nome        string          `gorm:"column:nome;size:255"`
	Valor       decimal.Decimal `gorm:"column:valor;type:decimal(10,2)"`
	Atividades  *string         `gorm:"column:atividades;size:255"`
	FormaPgto   *string         `gorm:"column:forma_pgto;size:100"`
	TipoCliente *string         `gorm:"column:tipo_cliente;size:100"`
	Funcionario *string         `gorm:"column:funcionario;size:255"`
	Data        time.Time       `gorm:"column:data;type:date;index"`
	Hora        string          `gorm:"column:hora;type:time"`
}

func (DuesPayment) TableName() string { return "recebimentos_mensalidades" }

// SalePayment mirrors `recebimentos_vendas` (product sales). The legacy
// schema has no reliable client identity on sales rows.
type SalePayment struct {
	ID          int             `gorm:"primaryKey;column:id"`
	GymID       int             `gorm:"column:id_academia;index"`
	Cliente     *string         `gorm:"column:cliente;size:255"`
	ValorTotal  decimal.Decimal `gorm:"column:valor_total;type:decimal(10,2)"`
	Produtos    *string         `gorm:"column:produtos;size:255"`
	FormaPgto   *string         `gorm:"column:forma_pgto;size:100"`
	Funcionario *string         `gorm:"column:funcionario;size:255"`
	Data        time.Time       `gorm:"column:data;type:date;index"`
	Hora        string          `gorm:"column:hora;type:time"`
}

func (SalePayment) TableName() string { return "recebimentos_vendas" }

// AssessmentPayment mirrors `recebimentos_avaliacoes` (physical assessments).
// Assessments carry no payment method by design.
type AssessmentPayment struct {
	ID          int             `gorm:"primaryKey;column:id"`
	GymID       int             `gorm:"column:id_academia;index"`
	Cliente     *string         `gorm:"column:cliente;size:255"`
	Valor       decimal.Decimal `gorm:"column:valor;type:decimal(10,2)"`
	Funcionario *string         `gorm:"column:funcionario;size:255"`
	Data        time.Time       `gorm:"column:data;type:date;index"`
	Hora        string          `gorm:"column:hora;type:time"`
}

func (AssessmentPayment) TableName() string { return "recebimentos_avaliacoes" }

// DayPassPayment mirrors `recebimentos_diarias` (single-visit passes).
type DayPassPayment struct {
	ID          int             `gorm:"primaryKey;column:id"`
	GymID       int             `gorm:"column:id_academia;index"`
	Cliente     *string         `gorm:"column:cliente;size:255"`
	Valor       decimal.Decimal `gorm:"column:valor;type:decimal(10,2)"`
	FormaPgto   *string         `gorm:"column:forma_pgto;size:100"`
	Funcionario *string         `gorm:"column:funcionario;size:255"`
	Data        time.Time       `gorm:"column:data;type:date;index"`
	Hora        string          `gorm:"column:hora;type:time"`
}

func (DayPassPayment) TableName() string { return "recebimentos_diarias" }
