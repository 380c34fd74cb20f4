package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/auth/middleware"
	"github.com/basit/fileshare-catalog/handlers"
)

func RegisterFileRoutes(r *gin.Engine, files *handlers.FileHandler, share *handlers.ShareHandler, sessions auth.SessionProvider) {
	r.GET("/s/:slug", middleware.AuthOptional(sessions), share.DownloadBySlug) // public short link

	fileGroup := r.Group("/api/files")
	fileGroup.Use(middleware.AuthOptional(sessions))

	fileGroup.GET("", files.ListFiles)
	fileGroup.GET("/:id", files.GetFile)
	fileGroup.POST("/:id/download", files.DownloadFile)
	fileGroup.GET("/:id/download", files.RedirectDownload)
	fileGroup.GET("/:id/share", share.ShareLink)
	fileGroup.GET("/:id/qr", share.QRCode)
	fileGroup.DELETE("/:id", middleware.AdminRequired(sessions), files.DeleteFile)
}

func RegisterCategoryRoutes(r *gin.Engine, cats *handlers.CategoryHandler, sessions auth.SessionProvider) {
	catGroup := r.Group("/api/categories")
	catGroup.GET("", cats.ListCategories) // public: the browse page filters by category
	catGroup.GET("/palette", cats.Palette)

	admin := catGroup.Group("", middleware.AdminRequired(sessions))
	admin.POST("", cats.CreateCategory)
	admin.PUT("/:id", cats.UpdateCategory)
	admin.DELETE("/:id", cats.DeleteCategory)
}
