package router

import (
	"github.com/labstack/echo/v4"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/handler"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/middleware"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
)

// RegisterAdmin registers the review queue, the duplicates report,
// ticket administration, the stats dashboard and the user directory.
// Every route requires a valid access token carrying the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/api/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/registrations", a.ListRegistrations)
	g.GET("/registrations/:id", a.GetRegistration)
	g.PATCH("/registrations/:id/status", a.UpdateRegistrationStatus)
	g.POST("/registrations/:id/notes", a.AddNote)
	g.GET("/duplicates", a.GetDuplicates)

	g.GET("/tickets", a.ListTickets)
	g.GET("/tickets/:id", a.GetTicket)
	g.POST("/tickets/:id/reply", a.ReplyTicket)
	g.PATCH("/tickets/:id/status", a.UpdateTicketStatus)
	g.PATCH("/tickets/:id/tags", a.UpdateTicketTags)

	g.GET("/stats", a.GetStats)
	g.GET("/users", a.ListUsers)
	g.GET("/users/:id", a.GetUser)
}
