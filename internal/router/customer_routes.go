package router

import (
	"github.com/labstack/echo/v4"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/handler"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/middleware"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

// RegisterCustomer registers the authenticated customer surface: the
// registration workflow, warranty lookup, support tickets and the
// profile endpoints.  Admins may call these too; an admin testing the
// customer flow should not need a second account.
func RegisterCustomer(e *echo.Echo, p *handler.ProductHandler, w *handler.WarrantyHandler, s *handler.SupportHandler, pr *handler.ProfileHandler, jwtSecret string) {
	g := e.Group("/api")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))

	g.POST("/products/register", p.Register)
	g.GET("/products/my", p.MyProducts)
	g.GET("/products/:id", p.GetProduct)
	g.POST("/products/:id/photos", p.AddPhotos)

	g.GET("/warranty/:registrationId", w.GetWarranty)

	g.POST("/support/tickets", s.CreateTicket)
	g.GET("/support/tickets", s.ListTickets)
	g.GET("/support/tickets/:id", s.GetTicket)
	g.POST("/support/tickets/:id/messages", s.SendMessage)

	g.GET("/profile", pr.GetProfile)
	g.PATCH("/profile", pr.UpdateProfile)
}
