package api

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"shop-backend/config"
	"shop-backend/middleware"
	"shop-backend/realtime"
	"shop-backend/repositories"
	"shop-backend/routes"
)

var (
	router *gin.Engine
	once   sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		config.LoadConfig()
		config.InitRedis()

		var stores repositories.Stores
		var err error
		switch config.AppConfig.StoreBackend {
		case "mongo":
			mdb, cerr := config.ConnectMongo()
			if cerr != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", cerr)
			}
			stores = repositories.NewMongoStores(mdb)
		case "postgres":
			pool, cerr := config.ConnectPostgres()
			if cerr != nil {
				log.Fatalf("Failed to connect to PostgreSQL: %v", cerr)
			}
			if cerr := repositories.InitPostgresSchema(context.Background(), pool); cerr != nil {
				log.Fatalf("Failed to initialize schema: %v", cerr)
			}
			stores = repositories.NewPgStores(pool)
		default:
			stores, err = repositories.NewFileStores(config.AppConfig.DataDir)
			if err != nil {
				log.Fatalf("Failed to open file store: %v", err)
			}
		}

		router = gin.New()
		router.Use(gin.Recovery())
		router.Use(middleware.CORSMiddleware())

		routes.SetupRoutes(router, stores, realtime.NewHub())
	})
}

func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	router.ServeHTTP(w, r)
}
