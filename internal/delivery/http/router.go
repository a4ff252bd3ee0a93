package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"campusbot/internal/delivery/http/controllers"
	"campusbot/internal/delivery/http/middleware"
	"campusbot/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	verificationController *controllers.VerificationController,
	settingsController *controllers.SettingsController,
	quoteController *controllers.QuoteController,
	dueDateController *controllers.DueDateController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/token", authController.Token)

	// Verification
	mux.HandleFunc("POST /guilds/{guildID}/verification/requests", auth(verificationController.Request))
	mux.HandleFunc("POST /guilds/{guildID}/verification/confirmations", auth(verificationController.Confirm))
	mux.HandleFunc("GET /guilds/{guildID}/verification/users/{userID}", auth(verificationController.Status))
	mux.HandleFunc("DELETE /guilds/{guildID}/verification/users/{userID}", auth(verificationController.Unverify))

	// Settings
	mux.HandleFunc("GET /guilds/{guildID}/settings", auth(settingsController.Get))
	mux.HandleFunc("PATCH /guilds/{guildID}/settings", auth(settingsController.Update))

	// Quotes
	mux.HandleFunc("POST /guilds/{guildID}/quotes", auth(quoteController.Add))
	mux.HandleFunc("GET /guilds/{guildID}/quotes", auth(quoteController.List))
	mux.HandleFunc("GET /guilds/{guildID}/quotes/random", auth(quoteController.Random))
	mux.HandleFunc("DELETE /guilds/{guildID}/quotes/{quoteID}", auth(quoteController.Remove))

	// Due dates
	mux.HandleFunc("POST /guilds/{guildID}/due-dates", auth(dueDateController.Add))
	mux.HandleFunc("GET /guilds/{guildID}/due-dates", auth(dueDateController.List))
	mux.HandleFunc("PUT /guilds/{guildID}/due-dates/{dueDateID}", auth(dueDateController.Update))
	mux.HandleFunc("DELETE /guilds/{guildID}/due-dates/{dueDateID}", auth(dueDateController.Remove))

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
