package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/auth/Oauth"
	"github.com/basit/fileshare-catalog/auth/middleware"
	"github.com/basit/fileshare-catalog/handlers"
)

func RegisterAuthRoutes(r *gin.Engine, h *handlers.AuthHandler, oauth *Oauth.Handler, sessions auth.SessionProvider) {
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthOptional(sessions))

	authGroup.POST("/signup", h.SignUp)
	authGroup.POST("/signin", h.SignIn)
	authGroup.POST("/refresh", h.Refresh)
	authGroup.POST("/signout", h.SignOut)
	authGroup.GET("/session", h.Session)

	if oauth != nil {
		r.GET("/auth/:provider", oauth.Begin)
		r.GET("/auth/:provider/callback", oauth.Callback)
	}
}
