// Command seed fills an empty database with a demo catalog and user and
// prints a bearer token for that user.
package main

import (
	"context"
	"flag"
	"fmt"

	"go-grocery/apps/store/model"
	"go-grocery/apps/store/repository"
	"go-grocery/pkg/config"
	"go-grocery/pkg/database"
	"go-grocery/pkg/jwt"
	"go-grocery/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	username := flag.String("user", "demo", "demo account username")
	password := flag.String("password", "demo-pass", "demo account password")
	flag.Parse()

	c, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init("seed", c.Log.Level, c.Log.Pretty)

	db, err := database.Open(c.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := model.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx := context.Background()
	n, err := seedCatalog(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed catalog")
	}
	u, err := seedUser(ctx, repository.NewUserRepository(db), *username, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed user")
	}
	log.Info().Int("products", n).Uint("user_id", u.ID).Msg("seed done")

	token, err := jwt.NewManager(c.Jwt.Secret, c.Jwt.Issuer, c.Jwt.TTL).GenerateToken(int64(u.ID), u.Username)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}
	fmt.Printf("Authorization: Bearer %s\n", token)
}
