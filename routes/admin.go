package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/auth/middleware"
	"github.com/basit/fileshare-catalog/handlers"
)

func RegisterAdminRoutes(r *gin.Engine, admin *handlers.AdminHandler, up *handlers.UploadHandler,
	stream *handlers.UploadStream, sessions auth.SessionProvider, frontendURL string) {
	r.GET("/admin", middleware.AdminRedirect(sessions, frontendURL), admin.Page)

	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.AdminRequired(sessions)) // every admin endpoint, before any handler

	adminGroup.GET("/dashboard", admin.Dashboard)
	adminGroup.GET("/stats", admin.Stats)

	adminGroup.POST("/uploads", up.UploadFiles)
	adminGroup.GET("/uploads", up.ListUploads)
	adminGroup.DELETE("/uploads/items/:id", up.DismissUpload)
	adminGroup.POST("/uploads/clear", up.ClearCompleted)
	adminGroup.GET("/uploads/ws", stream.Serve)
}
