package routes

import (
	"net/http"

	"github.com/olatide/bookingscheduler/backend/internal/api/handlers"
	"github.com/olatide/bookingscheduler/backend/internal/api/middleware"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	availabilityHandler *handlers.AvailabilityHandler
	appointmentHandler  *handlers.AppointmentHandler
	professionalHandler *handlers.ProfessionalHandler
	changeHandler       *handlers.ChangeWebhookHandler
	billingHandler      *handlers.BillingHandler

	identityResolver providers.IdentityResolver
	metrics          *observability.Metrics
	allowedOrigins   []string
}

// NewRouter creates a new router
func NewRouter(
	availabilityHandler *handlers.AvailabilityHandler,
	appointmentHandler *handlers.AppointmentHandler,
	professionalHandler *handlers.ProfessionalHandler,
	changeHandler *handlers.ChangeWebhookHandler,
	billingHandler *handlers.BillingHandler,
	identityResolver providers.IdentityResolver,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		availabilityHandler: availabilityHandler,
		appointmentHandler:  appointmentHandler,
		professionalHandler: professionalHandler,
		changeHandler:       changeHandler,
		billingHandler:      billingHandler,

		identityResolver: identityResolver,
		metrics:          metrics,
		allowedOrigins:   allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	authed := middleware.IdentityMiddleware(r.identityResolver)

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Availability endpoints
	r.mux.Handle("GET /api/professionals/{id}/slots", authed(http.HandlerFunc(r.availabilityHandler.GetAvailability)))

	// Professional endpoints
	r.mux.Handle("GET /api/professionals/{id}", authed(http.HandlerFunc(r.professionalHandler.GetProfessional)))
	r.mux.Handle("PUT /api/professionals/{id}/availability", authed(http.HandlerFunc(r.professionalHandler.SetAvailability)))
	r.mux.Handle("DELETE /api/professionals/{id}", authed(http.HandlerFunc(r.professionalHandler.DeactivateProfessional)))

	// Appointment endpoints
	r.mux.Handle("POST /api/appointments", authed(http.HandlerFunc(r.appointmentHandler.BookAppointment)))
	r.mux.Handle("GET /api/appointments/{id}", authed(http.HandlerFunc(r.appointmentHandler.GetAppointment)))
	r.mux.Handle("PATCH /api/appointments/{id}/schedule", authed(http.HandlerFunc(r.appointmentHandler.RescheduleAppointment)))
	r.mux.Handle("PATCH /api/appointments/{id}/status", authed(http.HandlerFunc(r.appointmentHandler.SetAppointmentStatus)))

	// Administrative billing endpoint
	r.mux.Handle("POST /api/admin/billing/runs", authed(middleware.RequireElevated(http.HandlerFunc(r.billingHandler.StartRun))))

	// Change-notification webhook, authenticated by HMAC signature
	r.mux.HandleFunc("POST /webhooks/appointments/changes", r.changeHandler.HandleChange)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflight requests short-circuit early
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
