package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"staff-compliance-service/internal/app"
)

// WSHandler drives one assessment session per websocket connection. The
// client only ever sees the prompt and options; the correct index and the
// explanation stay server-side until the state machine releases them.
type WSHandler struct {
	assessments *app.AssessmentService
	upgrader    websocket.Upgrader
}

func NewWSHandler(assessments *app.AssessmentService) *WSHandler {
	return &WSHandler{
		assessments: assessments,
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

type answerPayload struct {
	Option int `json:"option"`
}

type questionPayload struct {
	Index      int      `json:"index"`
	Total      int      `json:"total"`
	QuestionID int      `json:"questionId"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
}

type resultPayload struct {
	Score       int    `json:"score"`
	Passed      bool   `json:"passed"`
	CompletedAt string `json:"completedAt"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and walks the caller through a session:
// question -> answer/feedback (-> continue after an explanation) -> result.
// Closing the socket before the last question abandons the session and
// emits nothing.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	staffID := r.URL.Query().Get("staffId")
	bankID := r.URL.Query().Get("bankId")
	if staffID == "" || bankID == "" {
		http.Error(w, "missing staffId or bankId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.assessments.Start(r.Context(), staffID, bankID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := session.ID()
	defer h.assessments.Abandon(r.Context(), sessionID)

	if err := h.sendQuestion(conn, sessionID, r); err != nil {
		return
	}

	// The session is a serial state machine, so the read loop is the only
	// writer; duplicate clicks queue up and resolve as discrete actions.
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			feedback, err := h.assessments.SubmitAnswer(r.Context(), sessionID, payload.Option)
			if err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			if err := conn.WriteJSON(outboundMessage[app.Feedback]{Type: "feedback", Payload: feedback}); err != nil {
				return
			}
			if feedback.Done {
				h.sendResult(conn, sessionID, r)
				return
			}
			if feedback.Advanced {
				if err := h.sendQuestion(conn, sessionID, r); err != nil {
					return
				}
			}
		case "continue":
			done, err := h.assessments.Continue(r.Context(), sessionID)
			if err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			if done {
				h.sendResult(conn, sessionID, r)
				return
			}
			if err := h.sendQuestion(conn, sessionID, r); err != nil {
				return
			}
		default:
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}
}

func (h *WSHandler) sendQuestion(conn *websocket.Conn, sessionID string, r *http.Request) error {
	question, index, total, err := h.assessments.Current(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return err
	}
	return conn.WriteJSON(outboundMessage[questionPayload]{Type: "question", Payload: questionPayload{
		Index:      index,
		Total:      total,
		QuestionID: question.ID,
		Text:       question.Text,
		Options:    question.Options,
	}})
}

func (h *WSHandler) sendResult(conn *websocket.Conn, sessionID string, r *http.Request) {
	result, err := h.assessments.CollectResult(r.Context(), sessionID)
	if err != nil {
		log.Printf("collect result for session %s: %v", sessionID, err)
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "failed to record result"}})
		return
	}
	_ = conn.WriteJSON(outboundMessage[resultPayload]{Type: "result", Payload: resultPayload{
		Score:       result.Score,
		Passed:      result.Passed,
		CompletedAt: result.CompletedAt.UTC().Format(time.RFC3339),
	}})
}
