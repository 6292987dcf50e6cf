package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shop-backend/config"
	"shop-backend/controllers"
	"shop-backend/middleware"
	"shop-backend/realtime"
	"shop-backend/repositories"
	"shop-backend/services"
)

func SetupRoutes(router *gin.Engine, stores repositories.Stores, hub *realtime.Hub) {
	productSvc := services.NewProductService(stores.Products)
	cartSvc := services.NewCartService(stores.Carts)
	authSvc := services.NewAuthService(stores.Users, stores.Carts)

	productCtrl := controllers.NewProductController(productSvc, hub)
	cartCtrl := controllers.NewCartController(cartSvc, productSvc)
	sessionCtrl := controllers.NewSessionController(authSvc)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/ws/products", hub.Handler(productSvc))

	products := router.Group("/api/products")
	{
		products.GET("", productCtrl.GetProducts)
		products.GET("/:pid", productCtrl.GetProductByID)
	}

	productAdmin := router.Group("/api/products")
	productAdmin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		productAdmin.POST("", productCtrl.CreateProduct)
		productAdmin.PUT("/:pid", productCtrl.UpdateProduct)
		productAdmin.DELETE("/:pid", productCtrl.DeleteProduct)
		productAdmin.POST("/:pid/thumbnails", productCtrl.UploadThumbnail)
	}

	carts := router.Group("/api/carts")
	{
		carts.POST("", cartCtrl.CreateCart)
		carts.GET("/:cid", cartCtrl.GetCart)
		carts.POST("/:cid/product/:pid", cartCtrl.AddProduct)
		carts.PUT("/:cid", cartCtrl.ReplaceCart)
		carts.DELETE("/:cid", cartCtrl.ClearCart)
		carts.PUT("/:cid/products/:pid", cartCtrl.UpdateQuantity)
		carts.DELETE("/:cid/products/:pid", cartCtrl.RemoveProduct)
	}

	sessions := router.Group("/api/sessions")
	{
		sessions.POST("/register", sessionCtrl.Register)
		sessions.POST("/login", sessionCtrl.Login)
		sessions.GET("/current", middleware.AuthMiddleware(), sessionCtrl.Current)
	}

	router.Static("/uploads", config.AppConfig.UploadDir)
}
