package router

import (
	"consultancy_crm_backend/internal/handlers"
	"consultancy_crm_backend/internal/middleware"
	"consultancy_crm_backend/internal/repositories"
	"consultancy_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup wires the record store through the services and handlers into the
// application's routes. Everything under /api/clients and the dashboard page
// sit behind the session gate; login and logout stay public.
func Setup(engine *gin.Engine, clientRepo repositories.ClientRepository, authService services.AuthService, secureCookies bool) {
	clientService := services.NewClientService(clientRepo)

	authHandler := handlers.NewAuthHandler(authService, secureCookies)
	clientHandler := handlers.NewClientHandler(clientService)

	// Page routes
	engine.GET("/", middleware.RedirectIfAuthenticated(authService), authHandler.Home)
	engine.GET("/login", middleware.RedirectIfAuthenticated(authService), authHandler.LoginPage)
	engine.GET("/dashboard", middleware.SessionAuth(authService), authHandler.Dashboard)

	// Auth endpoints
	engine.POST("/login", authHandler.Login)
	engine.GET("/logout", authHandler.Logout)

	// Protected client API
	api := engine.Group("/api/clients")
	api.Use(middleware.SessionAuth(authService))
	{
		api.GET("", clientHandler.GetClients)
		api.GET("/search", clientHandler.SearchClients)
		api.GET("/:id", clientHandler.GetClientByID)
		api.POST("", clientHandler.CreateClient)
		api.PUT("/:id", clientHandler.UpdateClient)
		api.DELETE("/:id", clientHandler.DeleteClient)
	}
}
