package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/educhat-ai/educhat/internal/api/response"
	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/educhat-ai/educhat/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// ChatHandler exposes the gateway chat endpoint
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// chatError writes the bare {error} body the client contract fixes for
// this endpoint.
func chatError(w http.ResponseWriter, status int, message string) {
	response.Raw(w, status, map[string]string{"error": message})
}

// Complete handles POST /api/v1/chat. Image-bearing conversations get a
// JSON completion; text conversations get a line-tagged streamed body. The
// shape is picked here, after the request arrives, and signaled to the
// client through the content type.
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		chatError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		chatError(w, http.StatusBadRequest, "messages are required")
		return
	}

	if !h.chatService.Ready() {
		chatError(w, http.StatusBadRequest, "Please add your free Groq API key. Get it from: https://console.groq.com/keys")
		return
	}

	if req.HasImages && req.LastMessage().HasImages() {
		completion, err := h.chatService.CompleteVision(r.Context(), req)
		if err != nil {
			status, msg := service.ClassifyError(err)
			chatError(w, status, msg)
			return
		}
		response.Raw(w, http.StatusOK, completion)
		return
	}

	h.streamText(w, r, req)
}

// streamText writes the line-tagged streaming protocol: one 0:"<fragment>"
// line per delta, then e:/d: terminators. Headers are held back until the
// first delta so upstream failures can still produce a proper JSON error.
func (h *ChatHandler) streamText(w http.ResponseWriter, r *http.Request, req domain.ChatRequest) {
	flusher, _ := w.(http.Flusher)
	started := false

	err := h.chatService.StreamText(r.Context(), req, func(delta string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			started = true
		}

		if _, err := w.Write([]byte("0:" + strconv.Quote(delta) + "\n")); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	if err != nil {
		if !started {
			status, msg := service.ClassifyError(err)
			chatError(w, status, msg)
			return
		}
		// The stream is already underway; all that remains is to end it.
		log.Error().Err(err).Msg("text stream aborted mid-response")
		w.Write([]byte("e:{\"finishReason\":\"error\"}\n"))
		return
	}

	if !started {
		// Model produced no deltas at all; open the stream so the
		// terminator still reaches the client.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
	w.Write([]byte("e:{\"finishReason\":\"stop\"}\n"))
	w.Write([]byte("d:{\"finishReason\":\"stop\"}\n"))
	if flusher != nil {
		flusher.Flush()
	}
}
