package main

import (
	"context"
	"fmt"
	"time"

	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/database"
	"github.com/stemsi/srms/internal/logger"
	"github.com/stemsi/srms/internal/repository"
	"github.com/stemsi/srms/internal/seed"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding demo school ===")

	sum, err := seed.Run(ctx, seed.Repositories{
		Admins:   repository.NewAdminRepository(pool),
		Students: repository.NewStudentRepository(pool),
		Courses:  repository.NewCourseRepository(pool),
		Results:  repository.NewResultRepository(pool),
	}, cfg.BcryptCost, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}

	fmt.Printf("\nSeed completed! Added %d admin(s), %d students, %d courses, %d results.\n",
		sum.Admins, sum.Students, sum.Courses, sum.Results)
	fmt.Printf("Admin login: %s / %s\n", seed.AdminEmail, seed.AdminPassword)
}
