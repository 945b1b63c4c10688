package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/grailstone/think-web-ui/internal/models"
)

// Memory implements the Store interface entirely in process. Conversation history deliberately
// does not survive a restart; the store only exists so the relay can send the full message list
// on each turn and the transcript page can re-render.
type Memory struct {
	mu sync.Mutex

	seq      uint64
	chats    []models.Chat
	messages map[string][]models.Message
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		messages: make(map[string][]models.Message),
	}
}

func (m *Memory) nextID(id string) string {
	m.seq++
	return fmt.Sprintf("%d-%s", m.seq, id)
}

// Chats returns all chats, newest first.
func (m *Memory) Chats(context.Context) ([]models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chats := slices.Clone(m.chats)
	slices.Reverse(chats)
	return chats, nil
}

// AddChat stores a new chat and returns its sequence-prefixed ID.
func (m *Memory) AddChat(_ context.Context, chat models.Chat) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat.ID = m.nextID(chat.ID)
	m.chats = append(m.chats, chat)
	m.messages[chat.ID] = nil
	return chat.ID, nil
}

// UpdateChat replaces an existing chat record. Unknown chats are silently ignored.
func (m *Memory) UpdateChat(_ context.Context, chat models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.chats, func(c models.Chat) bool { return c.ID == chat.ID })
	if idx == -1 {
		return nil
	}
	m.chats[idx] = chat
	return nil
}

// Messages returns the messages of a chat in insertion order.
func (m *Memory) Messages(_ context.Context, chatID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.messages[chatID]), nil
}

// AddMessage appends a message to a chat and returns its sequence-prefixed ID. Adding to an
// unknown chat creates its transcript, matching the forgiving behavior clients rely on when a
// chat_id from a previous process lifetime is submitted.
func (m *Memory) AddMessage(_ context.Context, chatID string, message models.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	message.ID = m.nextID(message.ID)
	m.messages[chatID] = append(m.messages[chatID], message)
	return message.ID, nil
}

// UpdateMessage replaces an existing message. Unknown messages are silently ignored.
func (m *Memory) UpdateMessage(_ context.Context, chatID string, message models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.messages[chatID]
	idx := slices.IndexFunc(msgs, func(msg models.Message) bool { return msg.ID == message.ID })
	if idx == -1 {
		return nil
	}
	msgs[idx] = message
	return nil
}
