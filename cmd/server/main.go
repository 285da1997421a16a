package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"consultancy_crm_backend/internal/database"
	"consultancy_crm_backend/internal/repositories"
	router_pkg "consultancy_crm_backend/internal/router"
	"consultancy_crm_backend/internal/services"
	"consultancy_crm_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		utils.LogInfo("No .env file found, relying on process environment")
	}

	appEnv := utils.Getenv("APP_ENV", "development")
	isProduction := appEnv == "production"

	systemPassword := os.Getenv("SYSTEM_PASSWORD")
	if systemPassword == "" {
		log.Fatal("SYSTEM_PASSWORD must be set")
	}
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET must be set")
	}

	// Record store: MongoDB by default, flat JSON file when STORE_DRIVER=file.
	var clientRepo repositories.ClientRepository
	storeDriver := utils.Getenv("STORE_DRIVER", "mongo")
	switch storeDriver {
	case "file":
		clientsFile := utils.Getenv("CLIENTS_FILE", "data/clients.json")
		clientRepo = repositories.NewFileClientRepository(clientsFile)
		utils.LogInfo("Using file-backed client store", map[string]interface{}{"path": clientsFile})
	case "mongo":
		mongoURI := utils.Getenv("MONGO_URI", "mongodb://localhost:27017")
		mongoDB := utils.Getenv("MONGO_DB", "consultancy_crm")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		mongoClient, err := database.Connect(ctx, mongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer database.Disconnect(context.Background(), mongoClient)

		db := mongoClient.Database(mongoDB)
		if err := repositories.EnsureClientIndexes(ctx, db); err != nil {
			log.Fatalf("Failed to create client indexes: %v", err)
		}
		clientRepo = repositories.NewClientRepository(db)
		utils.LogInfo("Connected to MongoDB", map[string]interface{}{"database": mongoDB})
	default:
		log.Fatalf("Unknown STORE_DRIVER %q (expected mongo or file)", storeDriver)
	}

	authService, err := services.NewAuthService(systemPassword, sessionSecret, services.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to initialize session gate: %v", err)
	}

	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.LoadHTMLGlob("web/templates/*.html")

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router_pkg.Setup(engine, clientRepo, authService, isProduction)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "env": appEnv})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
