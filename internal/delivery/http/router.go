package http

import (
	"net/http"

	"massage-booking/internal/delivery/http/handler"
	"massage-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

const uuidPattern = "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}"

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	bookingHandler      *handler.BookingHandler
	availabilityHandler *handler.AvailabilityHandler
	changeStreamHandler *handler.ChangeStreamHandler
	auditLogHandler     *handler.AuditLogHandler
	checkoutHandler     *handler.CheckoutHandler
	authMiddleware      *middleware.AuthMiddleware
	principalMiddleware *middleware.PrincipalMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	bookingHandler *handler.BookingHandler,
	availabilityHandler *handler.AvailabilityHandler,
	changeStreamHandler *handler.ChangeStreamHandler,
	auditLogHandler *handler.AuditLogHandler,
	checkoutHandler *handler.CheckoutHandler,
	authMiddleware *middleware.AuthMiddleware,
	principalMiddleware *middleware.PrincipalMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		bookingHandler:      bookingHandler,
		availabilityHandler: availabilityHandler,
		changeStreamHandler: changeStreamHandler,
		auditLogHandler:     auditLogHandler,
		checkoutHandler:     checkoutHandler,
		authMiddleware:      authMiddleware,
		principalMiddleware: principalMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Catalog and availability (public, advisory)
	api.HandleFunc("/catalog", r.availabilityHandler.GetCatalog).Methods(http.MethodGet)
	api.HandleFunc("/availability", r.availabilityHandler.GetAvailability).Methods(http.MethodGet)

	// Checkout (public)
	api.Handle("/checkout-session", r.limited(r.checkoutHandler.CreateCheckoutSession)).Methods(http.MethodPost)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/register", r.limited(r.authHandler.Register)).Methods(http.MethodPost)
	auth.Handle("/login", r.limited(r.authHandler.Login)).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.Use(r.principalMiddleware.Resolve)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Booking routes (customer or administrator)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.Use(r.principalMiddleware.Resolve)
	bookings.Handle("", r.limited(r.bookingHandler.CreateBooking)).Methods(http.MethodPost)
	bookings.HandleFunc("", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	bookings.HandleFunc("/changes", r.changeStreamHandler.Stream).Methods(http.MethodGet)
	bookings.HandleFunc("/{id:"+uuidPattern+"}", r.bookingHandler.GetBooking).Methods(http.MethodGet)

	// Admin routes (protected - administrator only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(r.principalMiddleware.Resolve)
	admin.Use(middleware.RequireAdministrator)

	admin.HandleFunc("/bookings", r.bookingHandler.GetAllBookings).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{id:"+uuidPattern+"}/notes", r.bookingHandler.UpdateNotes).Methods(http.MethodPatch)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) limited(h http.HandlerFunc) http.Handler {
	return r.rateLimitMiddleware.Limit(h)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
