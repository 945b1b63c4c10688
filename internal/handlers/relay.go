package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/grailstone/think-web-ui/internal/models"
)

type relayMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type relayRequest struct {
	Messages []relayMessage `json:"messages"`
}

// HandleRelay is the raw pass-through endpoint: it forwards a JSON message list to the model
// server and streams the response text back byte-for-byte, with no JSON envelope around the
// tokens. The fixed system instruction is prepended by the LLM implementation. There is no
// retry and no timeout; a connection failure before the first byte surfaces as 502, and a
// failure mid-stream simply truncates the body.
func (m Main) HandleRelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req relayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.logger.Error("Failed to decode relay request", slog.String(errLoggerKey, err.Error()))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		m.logger.Error("Messages are required")
		http.Error(w, "Messages are required", http.StatusBadRequest)
		return
	}

	messages := make([]models.Message, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = models.Message{
			Role:    models.Role(msg.Role),
			Content: msg.Content,
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, _ := w.(http.Flusher)
	wrote := false

	for chunk, err := range m.llm.Chat(r.Context(), messages) {
		if err != nil {
			m.logger.Error("Error from llm provider", slog.String(errLoggerKey, err.Error()))
			if !wrote {
				http.Error(w, "Failed to reach model server", http.StatusBadGateway)
			}
			return
		}

		if _, err := io.WriteString(w, chunk); err != nil {
			m.logger.Error("Failed to write chunk", slog.String(errLoggerKey, err.Error()))
			return
		}
		wrote = true
		if flusher != nil {
			flusher.Flush()
		}
	}
}
