package router

import (
	"time"

	"savoria/internal/menu"
	"savoria/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP surface over an initialized menu store.
func NewRouter(store *menu.Store, adminPassword string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "admin-password"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	h := menu.NewHandler(store)

	api := r.Group("/api")
	{
		api.GET("/menu", h.GetMenu)

		api.POST("/pay/telebirr", h.PayTelebirr)
		api.POST("/pay/mobile-banking", h.PayMobileBanking)

		admin := api.Group("/admin")
		{
			admin.POST("/login", menu.LoginHandler(adminPassword))

			protected := admin.Group("")
			protected.Use(middleware.AdminAuth(adminPassword))
			{
				protected.POST("/menu", h.AddItem)
				protected.PUT("/menu/:id", h.UpdateItem)
				protected.DELETE("/menu/:id", h.DeleteItem)
			}
		}
	}

	return r
}
