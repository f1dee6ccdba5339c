package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/config"     // cache and rate-limit configuration
	"github.com/FaridHajiyevAZ/KomfyAz/internal/handler"    // import the handlers that implement business logic
	"github.com/FaridHajiyevAZ/KomfyAz/internal/middleware" // middleware for JWT authentication, roles, caching and rate limits
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the catalog
// listings.  The catalog sits behind the Redis response cache when a
// Redis client is available; the data changes rarely and is identical
// for every caller.
func RegisterRoutes(e *echo.Echo, cat *handler.CatalogHandler, rdb *redis.Client) {
	// Map the GET request at path "/api/health" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/api/health", handler.Health)

	products := e.Group("/api/products")
	if rdb != nil {
		products.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}
	products.GET("/models", cat.ListModels)
	products.GET("/sources", cat.ListSources)
}

// RegisterAuth registers all authentication-related routes.  Every
// endpoint in the group is rate limited per client IP and route when a
// Redis client is available; OTP attempt caps alone do not stop a
// credential-stuffing loop against /login.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rdb *redis.Client) {
	g := e.Group("/api/auth")
	if rdb != nil {
		g.Use(middleware.NewTokenBucket(config.LoadAuthRateLimitConfig(), rdb))
	}
	g.POST("/register", a.Register)
	g.POST("/verify-otp", a.VerifyOtp)
	g.POST("/login", a.Login)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
	// Refresh rotates the refresh token carried in the HTTP-only cookie.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}
