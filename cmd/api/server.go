package main

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/FACorreiaa/echo-assistant/internal/domain/assistant/handler"
)

// newServer wires the routes behind CORS and rate limiting.
func newServer(d *Dependencies) *http.Server {
	mux := http.NewServeMux()
	d.AssistantHandler.Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins:   d.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", handler.UserIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return &http.Server{
		Addr:              d.Config.Server.Addr(),
		Handler:           c.Handler(d.RateLimiter.Middleware(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
