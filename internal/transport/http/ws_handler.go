package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"knowball-service/internal/app"
	"knowball-service/internal/domain"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode      string            `json:"mode"`
	Questions []domain.Question `json:"questions"`
}

type answerPayload struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

type completePayload struct {
	Score          int `json:"score"`
	CorrectCount   int `json:"correctCount"`
	TotalQuestions int `json:"totalQuestions"`
	MaxStreak      int `json:"maxStreak"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one game session
// per connection: a "start" message assembles the round (or accepts a fixed
// challenge list), then question/result/complete events stream out while
// "answer" messages feed the engine. Disconnecting mid-round abandons the
// session without persisting a partial score.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userKey := r.URL.Query().Get("userId")
	if userKey == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.awaitStart(r, conn, userKey)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	pumpDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(pumpDone)
		for ev := range session.Events() {
			select {
			case send <- toOutbound(ev):
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			// Late or out-of-window answers are silently dropped by the session.
			session.Answer(payload.Index, payload.Answer)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	h.service.Abandon(session.ID)
	close(closeSignals)
	<-pumpDone
	close(send)
	<-writerDone
}

// awaitStart reads the opening message and starts the matching session kind.
func (h *WSHandler) awaitStart(r *http.Request, conn *websocket.Conn, userKey string) (*app.Session, error) {
	var inbound inboundMessage
	if err := conn.ReadJSON(&inbound); err != nil {
		return nil, err
	}
	if inbound.Type != "start" {
		return nil, errors.New("expected start message")
	}

	var payload startPayload
	if len(inbound.Payload) > 0 {
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return nil, err
		}
	}

	if payload.Mode == "challenge" {
		return h.service.StartChallenge(r.Context(), userKey, payload.Questions)
	}
	return h.service.StartRound(r.Context(), userKey)
}

func toOutbound(ev app.Event) outboundMessage[any] {
	switch ev.Type {
	case app.EventQuestion:
		return outboundMessage[any]{Type: "question", Payload: ev.Question}
	case app.EventResult:
		return outboundMessage[any]{Type: "result", Payload: ev.Result}
	case app.EventComplete:
		return outboundMessage[any]{Type: "complete", Payload: completePayload{
			Score:          ev.Final.Score,
			CorrectCount:   ev.Final.CorrectCount,
			TotalQuestions: ev.Final.TotalQuestions,
			MaxStreak:      ev.Final.MaxStreak,
		}}
	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unknown event"}}
	}
}
