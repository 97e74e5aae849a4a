package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/database"
	"github.com/stemsi/trainhub-backend/internal/logger"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// seed-trainees creates a demo trainer and a batch of approved trainees.
func main() {
	var (
		count    int
		password string
	)
	flag.IntVar(&count, "n", 50, "Number of trainees to create")
	flag.StringVar(&password, "password", "trainhub123", "Password for every seeded account")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	// One hash for every account keeps seeding fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	trainer := &model.User{
		Email:        "trainer@trainhub.local",
		Name:         "Demo Trainer",
		PasswordHash: string(hash),
		Role:         model.RoleTrainer,
		Bio:          "Seeded trainer account",
	}
	switch err := userRepo.Create(ctx, trainer); {
	case err == nil:
		fmt.Printf("Created trainer %s\n", trainer.Email)
	case errors.Is(err, repository.ErrDuplicate):
		fmt.Printf("Trainer %s already exists\n", trainer.Email)
	default:
		log.Fatal().Err(err).Msg("Failed to create trainer")
	}

	fmt.Printf("=== Seeding %d Trainees ===\n", count)

	names := []string{
		"Ada Lovelace", "Alan Turing", "Grace Hopper", "Edsger Dijkstra", "Barbara Liskov",
		"Donald Knuth", "Margaret Hamilton", "Ken Thompson", "Frances Allen", "Dennis Ritchie",
		"Radia Perlman", "Leslie Lamport", "Katherine Johnson", "John McCarthy", "Adele Goldberg",
		"Tony Hoare", "Shafi Goldwasser", "Niklaus Wirth", "Hedy Lamarr", "Rob Pike",
	}

	successCount := 0
	for i := 0; i < count; i++ {
		name := names[i%len(names)]
		if i >= len(names) {
			name = fmt.Sprintf("%s %d", name, i/len(names)+1)
		}

		trainee := &model.User{
			Email:        fmt.Sprintf("trainee%d@trainhub.local", i+1),
			Name:         name,
			PasswordHash: string(hash),
			Role:         model.RoleTrainee,
		}

		if err := userRepo.Create(ctx, trainee); err != nil {
			fmt.Printf("Error creating trainee %s (%s): %v\n", trainee.Name, trainee.Email, err)
			continue
		}
		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Created %d trainees...\n", i+1)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d trainees.\n", successCount, count)
}
