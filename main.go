package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/tnqbao/gau-drs-provider/config"
	"github.com/tnqbao/gau-drs-provider/http/controller"
	routes "github.com/tnqbao/gau-drs-provider/http/route"
	infraPkg "github.com/tnqbao/gau-drs-provider/infra"
	"github.com/tnqbao/gau-drs-provider/provider"
	"github.com/tnqbao/gau-drs-provider/repository"
)

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)
	prov := provider.InitProvider(cfg, infra, repo.ObjectRepo)

	if infra.Minio != nil {
		if err := infra.Minio.EnsureMirrorBucket(context.Background()); err != nil {
			log.Printf("Failed to ensure mirror bucket: %v", err)
		}
	}

	ctrl := controller.NewController(cfg, infra, repo, prov)

	router := routes.SetupRouter(ctrl)

	log.Printf("HTTP Server started on :%s", cfg.EnvConfig.DRS.HostPort)
	if err := router.Run(":" + cfg.EnvConfig.DRS.HostPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
