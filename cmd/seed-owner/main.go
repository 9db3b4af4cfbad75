// seed-owner creates or updates a dashboard owner and links the gyms they
// administer. The senha is always stored as a bcrypt hash; legacy plain-text
// rows are upgraded when reseeded.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-owner -cpf 12345678901 -nome "Maria" -senha segredo -academias 1,2
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/config"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/models"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	cpf := flag.String("cpf", "", "owner CPF (formatting is stripped)")
	nome := flag.String("nome", "", "owner display name")
	senha := flag.String("senha", "", "owner password (stored as bcrypt hash)")
	academias := flag.String("academias", "", "comma-separated gym ids to link")
	flag.Parse()

	cleanCpf := utils.OnlyDigits(*cpf)
	if cleanCpf == "" || *nome == "" || *senha == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-owner -cpf <cpf> -nome <nome> -senha <senha> [-academias 1,2,3]")
		os.Exit(2)
	}

	var gymIds []int
	if *academias != "" {
		var err error
		gymIds, err = utils.ParseGymIds(*academias)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -academias value: %v\n", err)
			os.Exit(2)
		}
	}

	ctx := context.Background()
	db := config.ConnectDatabaseWithRetry()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized. Set DB_* env vars.")
		os.Exit(1)
	}

	hashed, err := utils.HashPassword(*senha)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash senha: %v\n", err)
		os.Exit(1)
	}

	var owner models.Owner
	err = db.WithContext(ctx).Where("cpf = ?", cleanCpf).First(&owner).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		owner = models.Owner{Nome: *nome, CPF: cleanCpf, Senha: string(hashed)}
		if err := db.WithContext(ctx).Create(&owner).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create owner: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created owner: cpf=%s id=%d\n", cleanCpf, owner.ID)
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to lookup owner: %v\n", err)
		os.Exit(1)
	default:
		if err := db.WithContext(ctx).Model(&models.Owner{}).Where("cpf = ?", cleanCpf).Updates(map[string]any{
			"nome":  *nome,
			"senha": string(hashed),
		}).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update owner: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated owner: cpf=%s id=%d\n", cleanCpf, owner.ID)
	}

	for _, gymId := range gymIds {
		var gym models.Gym
		if err := db.WithContext(ctx).First(&gym, gymId).Error; err != nil {
			fmt.Fprintf(os.Stderr, "gym %d not found, skipping: %v\n", gymId, err)
			continue
		}
		link := models.OwnerGym{OwnerID: owner.ID, GymID: gymId}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to link gym %d: %v\n", gymId, err)
			os.Exit(1)
		}
		fmt.Printf("Linked gym: id=%d nome=%q\n", gym.ID, gym.Nome)
	}
}
