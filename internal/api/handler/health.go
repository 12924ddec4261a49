package handler

import (
	"net/http"

	"github.com/educhat-ai/educhat/internal/api/response"
	"github.com/educhat-ai/educhat/internal/llm"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports readiness: the gateway is ready once an upstream
// provider credential is configured.
func ReadyCheck(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !router.HasConfiguredProvider() {
			response.Error(w, http.StatusServiceUnavailable, "no LLM provider configured")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListLLMProviders returns available LLM providers
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}
