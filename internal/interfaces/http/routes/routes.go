// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/domain/analytics"
	"github.com/furnishop/furniture-backend/internal/domain/cart"
	"github.com/furnishop/furniture-backend/internal/domain/news"
	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/domain/product"
	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/furnishop/furniture-backend/internal/interfaces/http/handlers"
	"github.com/furnishop/furniture-backend/internal/interfaces/http/middleware"
	"github.com/furnishop/furniture-backend/internal/pkg/auth"
	"github.com/furnishop/furniture-backend/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Services bundles everything the route handlers call into
type Services struct {
	Users       *user.Service
	UserAdmin   *user.AdminService
	Products    *product.Service
	Categories  *product.CategoryService
	Carts       *cart.Service
	Orders      *order.Service
	News        *news.Service
	Analytics   *analytics.Service
	Access      *analytics.AccessTracker
	Invoices    *pdf.Service
	Revocations auth.RevocationList
}

// SetupRoutes registers every API route under rg
func SetupRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, logger *logrus.Logger) {
	requireAuth := middleware.AuthMiddleware(cfg, svc.Revocations, logger)

	SetupAuthRoutes(rg, svc, requireAuth, logger)
	SetupUserRoutes(rg, svc, requireAuth, cfg, logger)
	SetupCatalogRoutes(rg, svc, logger)
	SetupCartRoutes(rg, svc, requireAuth, logger)
	SetupOrderRoutes(rg, svc, requireAuth, logger)
	SetupNewsRoutes(rg, svc, requireAuth, logger)
	SetupAdminRoutes(rg, svc, requireAuth, cfg, logger)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, svc *Services, requireAuth gin.HandlerFunc, logger *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(svc.Users, logger)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.RefreshToken)
		authGroup.POST("/logout", requireAuth, authHandler.Logout)
	}
}

// SetupUserRoutes sets up the signed-in user's own routes
func SetupUserRoutes(rg *gin.RouterGroup, svc *Services, requireAuth gin.HandlerFunc, cfg *config.Config, logger *logrus.Logger) {
	profileHandler := handlers.NewUserProfileHandler(svc.Users, svc.Orders, svc.Carts, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics, svc.Access, cfg, logger)

	users := rg.Group("/users", requireAuth)
	{
		users.GET("/profile", profileHandler.GetProfile)
		users.PUT("/profile", profileHandler.UpdateProfile)
		users.GET("/dashboard", profileHandler.GetDashboard)
		users.PUT("/password", profileHandler.ChangePassword)
		users.PUT("/email", profileHandler.ChangeEmail)
	}

	rg.POST("/access", requireAuth, analyticsHandler.RecordAccess)
}

// SetupCatalogRoutes sets up the public product and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, svc *Services, logger *logrus.Logger) {
	productHandler := handlers.NewProductHandler(svc.Products, logger)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, logger)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	rg.GET("/categories", categoryHandler.GetCategories)
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, svc *Services, requireAuth gin.HandlerFunc, logger *logrus.Logger) {
	cartHandler := handlers.NewCartHandler(svc.Carts, logger)

	cartGroup := rg.Group("/cart", requireAuth)
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.GET("/count", cartHandler.GetCartCount)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.DELETE("/items/:productId", cartHandler.RemoveFromCart)
		cartGroup.DELETE("/items/:productId/all", cartHandler.RemoveProduct)
		cartGroup.DELETE("", cartHandler.ClearCart)
	}
}

// SetupOrderRoutes sets up checkout and order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, svc *Services, requireAuth gin.HandlerFunc, logger *logrus.Logger) {
	orderHandler := handlers.NewOrderHandler(svc.Orders, logger)
	invoiceHandler := handlers.NewInvoiceHandler(svc.Orders, svc.Invoices, logger)

	orders := rg.Group("/orders", requireAuth)
	{
		orders.POST("/checkout", orderHandler.Checkout)
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/invoice", invoiceHandler.GenerateInvoice)
		orders.GET("/:id/invoice/preview", invoiceHandler.PreviewInvoice)
	}
}

// SetupNewsRoutes sets up news and comment routes
func SetupNewsRoutes(rg *gin.RouterGroup, svc *Services, requireAuth gin.HandlerFunc, logger *logrus.Logger) {
	newsHandler := handlers.NewNewsHandler(svc.News, svc.Users, logger)

	newsGroup := rg.Group("/news")
	{
		newsGroup.GET("", newsHandler.GetNews)
		newsGroup.GET("/:id", newsHandler.GetArticle)
		newsGroup.GET("/:id/comments", newsHandler.GetComments)
		newsGroup.POST("/:id/comments", requireAuth, newsHandler.AddComment)
		newsGroup.DELETE("/:id/comments/:commentId", requireAuth, newsHandler.DeleteComment)
	}
}

// SetupAdminRoutes sets up admin routes; every one requires the admin role
func SetupAdminRoutes(rg *gin.RouterGroup, svc *Services, requireAuth gin.HandlerFunc, cfg *config.Config, logger *logrus.Logger) {
	productHandler := handlers.NewProductHandler(svc.Products, logger)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, logger)
	orderHandler := handlers.NewOrderHandler(svc.Orders, logger)
	userHandler := handlers.NewUserAdminHandler(svc.UserAdmin, logger)
	newsHandler := handlers.NewNewsHandler(svc.News, svc.Users, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics, svc.Access, cfg, logger)

	admin := rg.Group("/admin", requireAuth, middleware.AdminMiddleware())
	{
		products := admin.Group("/products")
		{
			products.POST("", productHandler.AdminCreateProduct)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
		}

		categories := admin.Group("/categories")
		{
			categories.POST("", categoryHandler.AdminCreateCategory)
			categories.PUT("/:id", categoryHandler.AdminUpdateCategory)
			categories.DELETE("/:id", categoryHandler.AdminDeleteCategory)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminGetOrders)
			orders.GET("/recent", orderHandler.AdminGetRecentOrders)
			orders.POST("", orderHandler.AdminCreateOrder)
			orders.PUT("/:id", orderHandler.AdminUpdateOrder)
			orders.PUT("/:id/accept", orderHandler.AdminAcceptOrder)
			orders.PUT("/:id/status", orderHandler.AdminUpdateOrderStatus)
			orders.DELETE("/:id", orderHandler.AdminDeleteOrder)
		}

		users := admin.Group("/users")
		{
			users.GET("", userHandler.GetUsers)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.PUT("/:id/role", userHandler.SetUserRole)
		}

		newsGroup := admin.Group("/news")
		{
			newsGroup.POST("", newsHandler.AdminCreateNews)
			newsGroup.PUT("/:id", newsHandler.AdminUpdateNews)
			newsGroup.DELETE("/:id", newsHandler.AdminDeleteNews)
		}

		analyticsGroup := admin.Group("/analytics")
		{
			analyticsGroup.GET("/dashboard", analyticsHandler.GetDashboard)
			analyticsGroup.GET("/revenue", analyticsHandler.GetRevenue)
			analyticsGroup.GET("/profit", analyticsHandler.GetProfit)
			analyticsGroup.GET("/chart", analyticsHandler.GetChart)
			analyticsGroup.GET("/access", analyticsHandler.GetAccess)
		}
	}
}
