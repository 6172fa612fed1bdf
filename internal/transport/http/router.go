package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/handlers"
	authmw "github.com/newsphere/backend/internal/middleware/auth"
	"github.com/newsphere/backend/internal/models"
)

type Deps struct {
	DB              *gorm.DB
	Auth            *authmw.Middleware
	AuthHandler     *handlers.AuthHandler
	ArticleHandler  *handlers.ArticleHandler
	CategoryHandler *handlers.CategoryHandler
	CommentHandler  *handlers.CommentHandler
	BookmarkHandler *handlers.BookmarkHandler
	AdminHandler    *handlers.AdminHandler
	NewsHandler     *handlers.NewsHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me, d.Auth.Authenticate)

	articles := api.Group("/articles")
	articles.POST("", d.ArticleHandler.Create,
		d.Auth.Authenticate, d.Auth.RequireRole(models.RoleEditor, models.RoleReporter, models.RoleAdmin))
	articles.GET("", d.ArticleHandler.List, d.Auth.MaybeAuthenticate)
	articles.GET("/adjacent/:slug", d.ArticleHandler.Adjacent)
	articles.GET("/role-check/:slugOrId", d.ArticleHandler.GetWithRoleCheck,
		d.Auth.Authenticate, d.Auth.RequireRole(models.RoleEditor, models.RoleReporter, models.RoleAdmin))
	articles.GET("/:slugOrId", d.ArticleHandler.Get, d.Auth.MaybeAuthenticate)
	articles.PUT("/:slugOrId", d.ArticleHandler.Update,
		d.Auth.Authenticate, d.Auth.RequireRole(models.RoleEditor, models.RoleReporter, models.RoleAdmin))
	articles.DELETE("/:slugOrId", d.ArticleHandler.Delete,
		d.Auth.Authenticate, d.Auth.RequireRole(models.RoleEditor, models.RoleReporter, models.RoleAdmin))
	articles.PATCH("/restore/:slugOrId", d.ArticleHandler.Restore,
		d.Auth.Authenticate, d.Auth.RequireRole(models.RoleAdmin, models.RoleEditor))
	articles.PATCH("/status/:id", d.ArticleHandler.UpdateStatus,
		d.Auth.Authenticate, d.Auth.RequireRole(models.RoleAdmin, models.RoleEditor))

	categories := api.Group("/categories")
	categories.POST("", d.CategoryHandler.Create,
		d.Auth.Authenticate, d.Auth.RequireRole(models.RoleAdmin, models.RoleEditor, models.RoleReporter))
	categories.GET("/all-with-hierarchy", d.CategoryHandler.ListWithHierarchy)
	categories.GET("", d.CategoryHandler.List)
	categories.GET("/:slugOrId", d.CategoryHandler.Get)
	categories.PUT("/:slugOrId", d.CategoryHandler.Update,
		d.Auth.Authenticate, d.Auth.RequireRole(models.RoleAdmin, models.RoleEditor))
	categories.DELETE("/:slugOrId", d.CategoryHandler.Delete,
		d.Auth.Authenticate, d.Auth.RequireRole(models.RoleAdmin, models.RoleEditor))

	comments := api.Group("/comments")
	comments.POST("", d.CommentHandler.Create, d.Auth.Authenticate)
	comments.GET("/user/:userId", d.CommentHandler.ListByUser, d.Auth.Authenticate)
	comments.GET("/:articleId", d.CommentHandler.ListByArticle)
	comments.PUT("/:commentId", d.CommentHandler.Update, d.Auth.Authenticate)
	comments.DELETE("/:commentId", d.CommentHandler.Delete, d.Auth.Authenticate)

	bookmarks := api.Group("/bookmarks", d.Auth.Authenticate)
	bookmarks.POST("", d.BookmarkHandler.Create)
	bookmarks.DELETE("", d.BookmarkHandler.Delete)
	bookmarks.GET("", d.BookmarkHandler.ListForUser)
	bookmarks.GET("/:articleId", d.BookmarkHandler.Get)

	admin := api.Group("/admin", d.Auth.Authenticate, d.Auth.RequireRole(models.RoleAdmin))
	admin.GET("/users", d.AdminHandler.ListUsers)
	admin.POST("/users", d.AdminHandler.CreateUser)
	admin.PATCH("/users/:userId/role", d.AdminHandler.UpdateUserRole)
	admin.PATCH("/users/:userId/toggle", d.AdminHandler.ToggleUserActive)
	admin.GET("/articles", d.AdminHandler.ListArticles)
	admin.GET("/articles/:slugOrId", d.AdminHandler.GetArticle)
	admin.PATCH("/articles/:articleId/status", d.AdminHandler.ChangeArticleStatus)
	admin.DELETE("/articles/:articleId", d.AdminHandler.DeleteArticle)

	news := api.Group("/news-feed")
	news.GET("/fetch-latest-news", d.NewsHandler.FetchLatest)
	news.GET("/fetch-news-cat", d.NewsHandler.FetchByCategory)
	news.GET("/news", d.NewsHandler.Cached)
	for _, t := range []string{"business", "sports", "tech", "science", "health", "entertainment", "fashion"} {
		news.GET("/news/"+t, d.NewsHandler.ByType(t))
	}

	if d.SearchHandler != nil {
		api.GET("/search", d.SearchHandler.Search)
	}
}
