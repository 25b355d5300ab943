package ws

import (
	"encoding/json"

	"github.com/benbeisheim/quadchess-backend/internal/model"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove      MessageType = "move"
	MessageTypeSelect    MessageType = "select"
	MessageTypeDeselect  MessageType = "deselect"
	MessageTypeResign    MessageType = "resign"
	MessageTypeGameState MessageType = "gameState"
	MessageTypeError     MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SelectPayload carries the square a client picked.
type SelectPayload struct {
	Position model.Position `json:"position"`
}

type ResignPayload struct {
	Color model.Color `json:"color"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage wraps v as the payload of a message of type t.
func NewMessage(t MessageType, v any) (Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: payload}, nil
}

func ErrorMessage(msg string) Message {
	m, _ := NewMessage(MessageTypeError, ErrorPayload{Error: msg})
	return m
}
