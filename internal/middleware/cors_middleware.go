package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

func CORSMiddleware(allowedOrigins, allowedMethods, allowedHeaders string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   splitList(allowedOrigins),
		AllowedMethods:   splitList(allowedMethods),
		AllowedHeaders:   splitList(allowedHeaders),
		AllowCredentials: true,
		MaxAge:           3600,
	})
	return c.Handler
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
