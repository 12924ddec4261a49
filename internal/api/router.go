package api

import (
	"net/http"

	"github.com/educhat-ai/educhat/internal/api/handler"
	customMiddleware "github.com/educhat-ai/educhat/internal/api/middleware"
	"github.com/educhat-ai/educhat/internal/config"
	"github.com/educhat-ai/educhat/internal/llm"
	"github.com/educhat-ai/educhat/internal/llm/gemini"
	"github.com/educhat-ai/educhat/internal/llm/groq"
	"github.com/educhat-ai/educhat/internal/llm/openai"
	"github.com/educhat-ai/educhat/internal/repository/redis"
	"github.com/educhat-ai/educhat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil
// when Redis is disabled; rate limiting and the search cache are skipped.
func NewRouter(cfg *config.Config, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize LLM Router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Groq.APIKey != "" {
		llmRouter.RegisterProvider(groq.NewProvider(cfg.LLM.Groq.APIKey, cfg.LLM.Groq.Model))
	} else {
		log.Warn().Msg("Groq API key is empty, skipping registration")
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	}

	// Vision fallback chain: Groq vision models in priority order, then
	// Gemini if configured.
	var visionChain []service.VisionTarget
	for _, model := range cfg.LLM.Groq.VisionModels {
		visionChain = append(visionChain, service.VisionTarget{Provider: "groq", Model: model})
	}
	if cfg.LLM.Gemini.APIKey != "" {
		visionChain = append(visionChain, service.VisionTarget{Provider: "gemini"})
	}

	// Initialize services
	var searchCache service.ResultCache
	if redisClient != nil {
		searchCache = redis.NewSearchCache(redisClient, cfg.Search.CacheTTL)
	}

	var searchService *service.SearchService
	if cfg.Search.Enabled {
		searchService = service.NewSearchService(searchCache, cfg.Search.Timeout)
	}

	var searcher service.Searcher
	if searchService != nil {
		searcher = searchService
	}
	chatService := service.NewChatService(llmRouter, searcher, visionChain)

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(llmRouter))
		r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

		r.Group(func(r chi.Router) {
			if redisClient != nil {
				rateLimiter := redis.NewRateLimiter(
					redisClient,
					cfg.Security.RateLimit.RequestsPerMinute,
					cfg.Security.RateLimit.Burst,
				)
				r.Use(customMiddleware.NewRateLimitMiddleware(rateLimiter).Limit)
			}

			r.Post("/chat", chatHandler.Complete)

			if searchService != nil {
				searchHandler := handler.NewSearchHandler(searchService)
				r.Post("/search", searchHandler.Search)
			}
		})
	})

	return r
}
