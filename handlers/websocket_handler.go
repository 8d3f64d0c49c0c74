package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MaturityMaxing/sportns/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Mobile clients connect from app webviews with no stable Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeLobby subscribes the connection to the lobby room, which carries
// game list changes (created, updated, status changed).
func (h *WebSocketHandler) ServeLobby(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.LobbyRoom)
}

// ServeGame subscribes the connection to a single game's room, which carries
// roster changes, status changes and chat messages for that game.
// Clients connect to /ws/games/{gameID}.
func (h *WebSocketHandler) ServeGame(w http.ResponseWriter, r *http.Request) {
	gameIDStr := chi.URLParam(r, "gameID")
	gameID, err := strconv.Atoi(gameIDStr)
	if err != nil || gameID < 1 {
		http.Error(w, "invalid gameID", http.StatusBadRequest)
		return
	}
	h.serve(w, r, realtime.GameRoom(gameID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error to the client.
		h.logger.Warn("websocket upgrade failed", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client registered", slog.String("room", roomID))
}
