package router

import (
	"inkpost/internal/handlers"
	"inkpost/internal/middleware"
	"inkpost/internal/models"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything the route table needs.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Posts    *handlers.PostHandler
	Comments *handlers.CommentHandler
	Admin    *handlers.AdminHandler
	Resolver middleware.Resolver
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	member := middleware.Auth(h.Resolver, models.RoleUser, models.RoleAdmin)
	anyone := middleware.Auth(h.Resolver)
	admin := middleware.Auth(h.Resolver, models.RoleAdmin)

	r.GET("/healthz", handlers.Health)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/verify", h.Auth.Verify) // email + code
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", anyone, h.Auth.Me)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", h.Posts.List)
		posts.POST("", member, h.Posts.Create)
		posts.GET("/my-posts", member, h.Posts.MyPosts)
		posts.GET("/stats", member, h.Posts.Stats)
		posts.GET("/:id", h.Posts.Get) // counts a view
		posts.PATCH("/:id", member, h.Posts.Update)
		posts.DELETE("/:id", member, h.Posts.Delete)
	}

	comments := api.Group("/comments")
	{
		comments.POST("", member, h.Comments.Create)
		comments.GET("/author/:authorId", h.Comments.ByAuthor)
		comments.GET("/:id", h.Comments.Get)
		comments.PATCH("/:id", member, h.Comments.Update)
		comments.DELETE("/:id", member, h.Comments.Delete)
		comments.PATCH("/:id/moderate", admin, h.Admin.ModerateComment)
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(admin)
	{
		adminGroup.PATCH("/users/:id", h.Admin.UpdateUser)
	}
}
