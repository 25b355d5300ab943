package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/quadchess-backend/internal/middleware"
	"github.com/benbeisheim/quadchess-backend/internal/model"
	"github.com/benbeisheim/quadchess-backend/internal/service"
	"github.com/benbeisheim/quadchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	log "github.com/sirupsen/logrus"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	clientID, _ := c.Locals(middleware.ClientIDLocal).(string)
	logger := log.WithFields(log.Fields{"game": gameID, "client": clientID})

	sock, err := wsc.gameService.RegisterConnection(gameID, clientID, c)
	if err != nil {
		logger.WithError(err).Warn("failed to register connection")
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, sock)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.WithError(err).Debug("read ended")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(sock, "malformed message")
			continue
		}
		if err := wsc.handleMessage(gameID, msg); err != nil {
			logger.WithError(err).Debug("message rejected")
			wsc.sendError(sock, err.Error())
		}
	}
}

// handleMessage dispatches one inbound message. Successful changes reach the
// client through the service broadcast, so only errors are returned here.
func (wsc *WebSocketController) handleMessage(gameID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var req model.MoveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return fmt.Errorf("invalid move payload: %w", err)
		}
		_, err := wsc.gameService.HandleMove(gameID, req)
		return err

	case ws.MessageTypeSelect:
		var sel ws.SelectPayload
		if err := json.Unmarshal(msg.Payload, &sel); err != nil {
			return fmt.Errorf("invalid select payload: %w", err)
		}
		_, err := wsc.gameService.Select(gameID, sel.Position)
		return err

	case ws.MessageTypeDeselect:
		_, err := wsc.gameService.Deselect(gameID)
		return err

	case ws.MessageTypeResign:
		var r ws.ResignPayload
		if err := json.Unmarshal(msg.Payload, &r); err != nil {
			return fmt.Errorf("invalid resign payload: %w", err)
		}
		if !r.Color.Valid() {
			return fmt.Errorf("unknown color %q", r.Color)
		}
		_, err := wsc.gameService.Resign(gameID, r.Color)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// sender queues frames for one client; *service.Socket in production.
type sender interface {
	Send(ws.Message) bool
}

// sendError goes through the socket's writer like every other frame.
func (wsc *WebSocketController) sendError(s sender, errorMsg string) {
	if !s.Send(ws.ErrorMessage(errorMsg)) {
		log.WithField("error", errorMsg).Debug("failed to queue error")
	}
}
