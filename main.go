package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"shop-backend/config"
	_ "shop-backend/docs"
	"shop-backend/middleware"
	"shop-backend/realtime"
	"shop-backend/repositories"
	"shop-backend/routes"
)

func openStores() (repositories.Stores, error) {
	switch config.AppConfig.StoreBackend {
	case "mongo":
		db, err := config.ConnectMongo()
		if err != nil {
			return repositories.Stores{}, err
		}
		return repositories.NewMongoStores(db), nil
	case "postgres":
		pool, err := config.ConnectPostgres()
		if err != nil {
			return repositories.Stores{}, err
		}
		if err := repositories.InitPostgresSchema(context.Background(), pool); err != nil {
			return repositories.Stores{}, err
		}
		return repositories.NewPgStores(pool), nil
	default:
		return repositories.NewFileStores(config.AppConfig.DataDir)
	}
}

func main() {

	config.LoadConfig()

	if config.AppConfig.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	stores, err := openStores()
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", config.AppConfig.StoreBackend, err)
	}
	defer config.CloseDB()

	config.InitRedis()
	defer config.CloseRedis()

	if err := os.MkdirAll(config.AppConfig.UploadDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	hub := realtime.NewHub()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	routes.SetupRoutes(router, stores, hub)

	port := ":" + config.AppConfig.Port
	log.Printf("Server starting on port %s", port)
	log.Printf("Environment: %s", config.AppConfig.AppEnv)
	log.Printf("Store backend: %s", config.AppConfig.StoreBackend)
	log.Printf("Swagger UI: http://localhost:%s/swagger/index.html", config.AppConfig.Port)

	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
