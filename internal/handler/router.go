package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/shopsphere-api/internal/middleware"
	"github.com/flicky/shopsphere-api/internal/model"
)

type Handlers struct {
	Auth     *AuthHandler
	Product  *ProductHandler
	Category *CategoryHandler
	Cart     *CartHandler
	Order    *OrderHandler
	Review   *ReviewHandler
	Wishlist *WishlistHandler
	Search   *SearchHandler
	Admin    *AdminHandler
	Health   *HealthHandler
}

// Register mounts every route on r. Handlers left nil are skipped so tests
// can wire a single area.
func Register(r *gin.Engine, h Handlers, jwtSecret string) {
	if h.Health != nil {
		r.GET("/healthz", h.Health.Healthz)
		r.GET("/readyz", h.Health.Readyz)
	}

	authed := middleware.AuthMiddleware(jwtSecret)
	admin := middleware.AdminOnly()
	api := r.Group("/api")

	if h.Auth != nil {
		auth := api.Group("/auth")
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)

		me := auth.Group("", authed)
		me.POST("/logout", h.Auth.Logout)
		me.GET("/me", h.Auth.Me)
		me.PUT("/update-profile", h.Auth.UpdateProfile)
		me.PUT("/update-password", h.Auth.UpdatePassword)
		me.POST("/addresses", h.Auth.AddAddress)
		me.DELETE("/addresses/:addressId", h.Auth.RemoveAddress)
	}

	if h.Product != nil {
		products := api.Group("/products")
		products.GET("", h.Product.List)
		products.GET("/featured", h.Product.Featured)
		products.GET("/new-arrivals", h.Product.NewArrivals)
		products.GET("/best-sellers", h.Product.BestSellers)
		products.GET("/:id", h.Product.Get)
		products.GET("/:id/related", h.Product.Related)

		manage := products.Group("", authed, middleware.RequireRole(model.RoleAdmin, model.RoleSeller))
		manage.POST("", h.Product.Create)
		manage.PUT("/:id", h.Product.Update)
		manage.DELETE("/:id", h.Product.Delete)
	}

	if h.Category != nil {
		categories := api.Group("/categories")
		categories.GET("", h.Category.List)
		categories.GET("/tree", h.Category.Tree)
		categories.GET("/:id", h.Category.Get)

		manage := categories.Group("", authed, admin)
		manage.POST("", h.Category.Create)
		manage.PUT("/:id", h.Category.Update)
		manage.DELETE("/:id", h.Category.Delete)
	}

	if h.Cart != nil {
		cart := api.Group("/cart", authed)
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:productId", h.Cart.UpdateItem)
		cart.DELETE("/items/:productId", h.Cart.RemoveItem)
		cart.POST("/coupon", h.Cart.ApplyCoupon)
		cart.DELETE("/coupon", h.Cart.RemoveCoupon)
	}

	if h.Order != nil {
		orders := api.Group("/orders", authed)
		orders.POST("", h.Order.CreateOrder)
		orders.GET("/my-orders", h.Order.ListMyOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.PUT("/:id/cancel", h.Order.CancelOrder)
		orders.GET("", admin, h.Order.ListOrders)
		orders.PUT("/:id/status", admin, h.Order.UpdateStatus)
	}

	if h.Review != nil {
		reviews := api.Group("/reviews")
		reviews.GET("/product/:productId", h.Review.ListProductReviews)

		mine := reviews.Group("", authed)
		mine.POST("/product/:productId", h.Review.Create)
		mine.PUT("/:id", h.Review.Update)
		mine.DELETE("/:id", h.Review.Delete)
		mine.POST("/:id/helpful", h.Review.MarkHelpful)
		mine.PUT("/:id/status", admin, h.Review.SetStatus)
	}

	if h.Wishlist != nil {
		wishlist := api.Group("/wishlist", authed)
		wishlist.GET("", h.Wishlist.Get)
		wishlist.DELETE("", h.Wishlist.Clear)
		wishlist.POST("/:productId", h.Wishlist.Add)
		wishlist.DELETE("/:productId", h.Wishlist.Remove)
	}

	if h.Search != nil {
		search := api.Group("/search")
		search.GET("", h.Search.Search)
		search.GET("/suggestions", h.Search.Suggestions)
		search.GET("/trending", h.Search.Trending)
	}

	if h.Admin != nil {
		panel := api.Group("/admin", authed, admin)
		panel.GET("/dashboard/stats", h.Admin.Dashboard)
		panel.GET("/users", h.Admin.ListUsers)
		panel.PUT("/users/:id", h.Admin.UpdateUser)
		panel.DELETE("/users/:id", h.Admin.DeleteUser)
		if h.Product != nil {
			panel.GET("/products", h.Product.AdminList)
		}
		if h.Order != nil {
			panel.GET("/orders", h.Order.ListOrders)
			panel.PUT("/orders/:id/status", h.Order.UpdateStatus)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Route "+c.Request.URL.Path+" not found")
	})
}
