package app

import (
	"net/http"

	"github.com/pratik-71/planme-backend/internal/config"
	"github.com/rs/cors"
)

func corsMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	allowedMethods := cfg.HTTP.CORS.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}
	}
	allowedOrigins := cfg.HTTP.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedMethods:   allowedMethods,
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: cfg.HTTP.CORS.AllowCredentials,
		AllowedHeaders:   cfg.HTTP.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.HTTP.CORS.ExposedHeaders,
		Debug:            cfg.HTTP.CORS.Debug,
	})
	return c.Handler
}
