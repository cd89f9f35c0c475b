// Package httpapi wires the HTTP surface: match lifecycle routes, the match
// WebSocket endpoint, and the Swagger UI.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/lqviet/boardflow/internal/games"
	"github.com/lqviet/boardflow/internal/httpapi/handler"
	"github.com/lqviet/boardflow/internal/ratelimit"
	"github.com/lqviet/boardflow/internal/session"
	"github.com/lqviet/boardflow/internal/store"
	"github.com/lqviet/boardflow/internal/websocket"

	_ "github.com/lqviet/boardflow/docs" // swag-generated docs
)

// NewRouter builds the root HTTP router.
// tokenSecret signs WebSocket auth tokens; if empty, create/join responses
// omit the token and the WS endpoint rejects connections.
// rateLimiter is optional: nil disables limiting; otherwise create, join, and
// WS chat are limited by client IP.
//
// @title            Boardflow API
// @version          1.0
// @description      API for hosting turn-based matches on the boardflow engine.
// @BasePath         /
func NewRouter(pool *pgxpool.Pool, tokenSecret []byte, rateLimiter ratelimit.Limiter) http.Handler {
	if rateLimiter == nil {
		rateLimiter = &ratelimit.Noop{}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.Healthz)

	// Swagger UI and generated spec (from swag comments)
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	matchStore := store.NewMatchStore(pool)
	eventStore := store.NewMatchEventStore(pool)
	manager := session.NewManager(matchStore, eventStore, games.Lookup)

	// WebSocket hub and handler (chat shares the rate limiter)
	hub := websocket.NewHub(nil)
	hub.SetHandler(websocket.NewMessageHandler(hub, manager, rateLimiter))
	go hub.Run()

	wsHandler := websocket.NewWSHandler(hub, matchStore, tokenSecret)
	r.Get("/ws/matches/{code}", wsHandler.HandleMatchWebSocket)

	rateLimitByIP := RateLimitMiddleware(rateLimiter, RateLimitKeyByIP)

	r.Get("/api/games", handler.ListGames)

	matchHandler := handler.NewMatchHandler(matchStore, manager, tokenSecret)
	r.Route("/api/matches", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(rateLimitByIP).Post("/", matchHandler.CreateMatch)
		r.Get("/{code}", matchHandler.GetMatch)
		r.With(rateLimitByIP).Post("/{code}/join", matchHandler.JoinMatch)
	})

	return r
}

// DefaultRateLimiter returns the in-memory limiter used when config enables
// rate limiting without custom knobs: 20 requests per minute per IP.
func DefaultRateLimiter() ratelimit.Limiter {
	return ratelimit.NewInMemory(20, time.Minute)
}
