package models

import (
	"context"
	"errors"

	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
	"gorm.io/gorm"
)

// Gym mirrors the legacy `academia` table. MembrosAtivos is an authoritative
// snapshot maintained by the ingestion jobs, not derived from receipts.
type Gym struct {
	ID            int    `gorm:"primaryKey;column:id" json:"id"`
	Nome          string `gorm:"column:nome;size:255" json:"nome"`
	MembrosAtivos int    `gorm:"column:membros_ativos;default:0" json:"membros_ativos"`
}

func (Gym) TableName() string { return "academia" }

// Owner mirrors `proprietarios`. Senha is opaque: legacy rows store it as-is,
// rows written by cmd/seed-owner store a bcrypt hash.
type Owner struct {
	ID    int    `gorm:"primaryKey;column:id" json:"id"`
	Nome  string `gorm:"column:nome;size:255" json:"nome"`
	CPF   string `gorm:"column:cpf;size:11;uniqueIndex" json:"cpf"`
	Senha string `gorm:"column:senha;size:255" json:"-"`
}

func (Owner) TableName() string { return "proprietarios" }

// OwnerGym is the many-to-many membership mapping `proprietarios_academias`.
type OwnerGym struct {
	OwnerID int `gorm:"primaryKey;column:id_proprietario"`
	GymID   int `gorm:"primaryKey;column:id_academia"`
}

func (OwnerGym) TableName() string { return "proprietarios_academias" }

// AuthenticateOwner resolves a credential pair to an owner. Every failure mode
// collapses into ErrAuthenticationFailed so the response never reveals which
// field was wrong.
func AuthenticateOwner(ctx context.Context, db *gorm.DB, cpf string, senha string) (*Owner, error) {
	cpf = utils.OnlyDigits(cpf)
	if cpf == "" || senha == "" {
		return nil, utils.ErrAuthenticationFailed
	}

	var owner Owner
	err := db.WithContext(ctx).Where("cpf = ?", cpf).First(&owner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrAuthenticationFailed
		}
		return nil, err
	}

	if utils.IsBcryptHash(owner.Senha) {
		if utils.ComparePassword(owner.Senha, senha) != nil {
			return nil, utils.ErrAuthenticationFailed
		}
	} else if owner.Senha != senha {
		return nil, utils.ErrAuthenticationFailed
	}

	return &owner, nil
}

// GymsByOwner returns the gyms an owner administers.
func GymsByOwner(ctx context.Context, db *gorm.DB, ownerId int) ([]*Gym, error) {
	var gyms []*Gym
	err := db.WithContext(ctx).
		Joins("INNER JOIN proprietarios_academias pa ON pa.id_academia = academia.id").
		Where("pa.id_proprietario = ?", ownerId).
		Order("academia.id ASC").
		Find(&gyms).Error
	if err != nil {
		return nil, err
	}
	return gyms, nil
}
