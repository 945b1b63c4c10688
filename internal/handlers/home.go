package handlers

import (
	"log/slog"
	"net/http"

	"github.com/grailstone/think-web-ui/internal/models"
)

type homePageData struct {
	Chats         []chat
	CurrentChatID string
	Messages      []message
}

// HandleHome renders the transcript page: the chat list in the sidebar and, when a chat_id query
// parameter is present, the messages of that chat. Completed assistant messages are re-split into
// their thinking and answer segments before rendering.
func (m Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	chats, err := m.store.Chats(r.Context())
	if err != nil {
		m.logger.Error("Failed to get chats", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	currentChatID := r.URL.Query().Get("chat_id")

	chatList := make([]chat, len(chats))
	for i, ch := range chats {
		chatList[i] = chat{
			ID:     ch.ID,
			Title:  ch.Title,
			Active: ch.ID == currentChatID,
		}
	}

	var msgs []message
	if currentChatID != "" {
		messages, err := m.store.Messages(r.Context(), currentChatID)
		if err != nil {
			m.logger.Error("Failed to get messages",
				slog.String("chatID", currentChatID),
				slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		msgs = make([]message, len(messages))
		for i := range messages {
			msg, err := m.renderMessage(messages[i], models.StreamingStateEnded)
			if err != nil {
				m.logger.Error("Failed to render message",
					slog.String("messageID", messages[i].ID),
					slog.String(errLoggerKey, err.Error()))
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			msgs[i] = msg
		}
	}

	data := homePageData{
		Chats:         chatList,
		CurrentChatID: currentChatID,
		Messages:      msgs,
	}
	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
