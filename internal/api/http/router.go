package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/http/handlers"
	"github.com/spec-kit/clinic-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Sessions       *handlers.SessionsHandler
	Appointments   *handlers.AppointmentsHandler
	AuthMiddleware *auth.SessionMiddleware
	RateLimiter    *RateLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	throttle := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.RateLimiter != nil {
		throttle = cfg.RateLimiter.Handle
	}

	userGroup := app.Group("/user")
	userGroup.Post("/register", throttle, cfg.Users.Register)
	userGroup.Post("/registerDoctor", throttle, cfg.Users.RegisterDoctor)
	userGroup.Post("/registerPatient", throttle, cfg.Users.RegisterPatient)
	userGroup.Post("/login", throttle, cfg.Users.Login)
	userGroup.Get("/getUser/:id", cfg.Users.GetUser)
	userGroup.Get("/getAllUser", cfg.Users.GetAllUsers)
	userGroup.Get("/getAllDoctors", cfg.Users.GetAllDoctors)
	userGroup.Get("/getAllPatients", cfg.Users.GetAllPatients)
	userGroup.Get("/getDoctorsBySpecialty/:specialty", cfg.Users.GetDoctorsBySpecialty)
	userGroup.Put("/update/:id", cfg.Users.UpdateUser)
	userGroup.Delete("/delete/:id", cfg.Users.DeleteUser)
	userGroup.Put("/doctorAvailability/:id", cfg.Users.SetDoctorAvailability)

	sessionGroup := app.Group("/session")
	sessionGroup.Post("/login", throttle, cfg.Sessions.Login)
	sessionGroup.Post("/validate", cfg.Sessions.Validate)
	sessionGroup.Post("/refresh", cfg.Sessions.Refresh)
	sessionGroup.Post("/logout", cfg.Sessions.Logout)

	appointments := app.Group("/appointment", cfg.AuthMiddleware.Handle)
	appointments.Post("/create", auth.RequirePatient(), cfg.Appointments.Create)
	appointments.Get("/doctor/:id", cfg.Appointments.ListByDoctor)
	appointments.Get("/patient/:id", cfg.Appointments.ListByPatient)
	appointments.Post("/approve/:id", auth.RequireDoctor(), cfg.Appointments.Approve)
	appointments.Post("/reject/:id", auth.RequireDoctor(), cfg.Appointments.Reject)
	appointments.Delete("/cancel/:id", auth.RequirePatient(), cfg.Appointments.Cancel)
	appointments.Delete("/delete/:id", cfg.Appointments.Delete)
	appointments.Post("/setNote/:id", auth.RequireDoctor(), cfg.Appointments.SetNote)
}
