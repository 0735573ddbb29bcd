package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Mad-three/server/internal/api/handlers"
	apimiddleware "github.com/Mad-three/server/internal/api/middleware"
	"github.com/Mad-three/server/internal/auth/naver"
	"github.com/Mad-three/server/internal/auth/secret"
	"github.com/Mad-three/server/internal/auth/session"
	"github.com/Mad-three/server/internal/calendar"
	"github.com/Mad-three/server/internal/config"
	"github.com/Mad-three/server/internal/db"
	"github.com/Mad-three/server/internal/logging"
	"github.com/Mad-three/server/internal/version"
)

func main() {
	cfg, err := config.Load(os.Getenv("EVENTMAP_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatalf("Failed to load secrets: %v", err)
	}

	database, err := db.Init(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	aesKey, err := secrets.AESKey()
	if err != nil {
		log.Fatalf("Failed to decode encryption key: %v", err)
	}
	cipher, err := secret.NewCipher(aesKey)
	if err != nil {
		log.Fatalf("Failed to initialize credential cipher: %v", err)
	}

	sessions := session.NewManager([]byte(secrets.SessionSecret))
	vault := naver.NewVault(database, cipher)
	providerClient := naver.NewClient(cfg.Provider, secrets)
	authService := naver.NewService(database, providerClient, vault, sessions)

	serializer := calendar.NewSerializer(cfg.Calendar)
	publisher := calendar.NewPublisher(cfg.Provider, cfg.Calendar.CalendarID)
	calendarService := calendar.NewService(database, vault, authService, serializer, publisher)

	r := chi.NewRouter()
	r.Use(logging.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		// Provider login callback: the client posts code and state
		// from the provider redirect.
		r.Post("/auth/naver/callback", handlers.NaverLogin(authService))

		// Session-protected surface.
		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.SessionAuth(sessions))
			r.Get("/users/me", handlers.GetMe(database))
			r.Get("/events/{eventID}", handlers.GetEvent(database))
			r.Post("/events/{eventID}/calendar", handlers.AddEventToCalendar(calendarService))
		})
	})

	log.Printf("eventmap %s starting on http://%s (tz=%s offset=%dm)",
		version.Version, cfg.Listen, cfg.Calendar.TimezoneID, cfg.Calendar.UTCOffsetMinutes)

	if err := http.ListenAndServe(cfg.Listen, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
