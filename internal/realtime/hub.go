package realtime

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Inbound event names.
const (
	eventStartExam        = "startExam"
	eventSaveExamProgress = "saveExamProgress"
	eventSubmitExam       = "submitExam"
)

type inboundMessage struct {
	Event   string          `json:"event"`
	Answers []dto.AnswerDTO `json:"answers,omitempty"`
}

type outboundMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes from the read loop and timer callbacks
}

func (c *client) write(msg outboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub is the realtime exam channel: one websocket per (exam, student)
// sitting, carrying start/progress/submit events inbound and lifecycle
// events outbound. It doubles as the Broadcaster for timer-driven
// auto-submissions.
type Hub struct {
	upgrader    websocket.Upgrader
	sessions    service.ExamSessionService
	coordinator *Coordinator

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(sessions service.ExamSessionService, coordinator *Coordinator) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks belong to the auth layer in front of this service.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions:    sessions,
		coordinator: coordinator,
		clients:     make(map[string]*client),
	}
	coordinator.SetBroadcaster(h)
	return h
}

// Emit implements Broadcaster. An absent connection drops the event silently.
func (h *Hub) Emit(examID, studentID uint, event string, payload interface{}) {
	h.mu.RLock()
	cl, ok := h.clients[SessionKey(examID, studentID)]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.send(cl, outboundMessage{Event: event, Data: payload})
}

func (h *Hub) send(cl *client, msg outboundMessage) {
	if err := cl.write(msg); err != nil {
		log.Warn().Err(err).Str("clientID", cl.id).Str("event", msg.Event).Msg("Websocket write failed")
	}
}

// HandleConnection godoc
// @Summary Realtime exam channel
// @Description Upgrades to a websocket scoped to one student's sitting of one exam.
// @Tags Realtime
// @Param exam_id path int true "Exam ID"
// @Param student_id query int true "Student ID"
// @Router /ws/exams/{exam_id} [get]
func (h *Hub) HandleConnection(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("exam_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid Exam ID format"))
		return
	}
	studentID, err := strconv.ParseUint(ctx.Query("student_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid Student ID format"))
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	cl := &client{id: uuid.NewString(), conn: conn}
	key := SessionKey(uint(examID), uint(studentID))

	h.mu.Lock()
	if old, ok := h.clients[key]; ok {
		old.conn.Close()
	}
	h.clients[key] = cl
	h.mu.Unlock()

	log.Info().Str("session", key).Str("clientID", cl.id).Msg("Realtime exam channel opened")
	h.readLoop(cl, key, uint(examID), uint(studentID))
}

func (h *Hub) readLoop(cl *client, key string, examID, studentID uint) {
	defer func() {
		cl.conn.Close()
		h.mu.Lock()
		if current, ok := h.clients[key]; ok && current == cl {
			delete(h.clients, key)
		}
		h.mu.Unlock()
		log.Info().Str("session", key).Str("clientID", cl.id).Msg("Realtime exam channel closed")
	}()

	for {
		var msg inboundMessage
		if err := cl.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", key).Msg("Websocket read error")
			}
			return
		}
		h.dispatch(cl, msg, examID, studentID)
	}
}

func (h *Hub) dispatch(cl *client, msg inboundMessage, examID, studentID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch msg.Event {
	case eventStartExam:
		started, err := h.sessions.StartExam(ctx, examID, studentID)
		if err != nil {
			h.emitError(cl, err)
			return
		}
		h.coordinator.ArmAutoSubmit(examID, studentID, time.Duration(started.RemainingSeconds)*time.Second)
		h.send(cl, outboundMessage{Event: EventExamStarted, Data: started})

	case eventSaveExamProgress:
		progress, err := h.sessions.SaveProgress(ctx, examID, studentID, msg.Answers)
		if err != nil {
			h.emitError(cl, err)
			return
		}
		h.send(cl, outboundMessage{Event: EventProgressSaved, Data: progress})

	case eventSubmitExam:
		// Cancel before acting so the timer path can no longer race this
		// submission into a duplicate attempt.
		h.coordinator.CancelAutoSubmit(examID, studentID)
		result, err := h.sessions.SubmitExam(ctx, examID, studentID, msg.Answers, false)
		if err != nil {
			h.emitError(cl, err)
			return
		}
		h.send(cl, outboundMessage{Event: EventExamSubmitted, Data: result})

	default:
		h.send(cl, outboundMessage{Event: EventError, Data: map[string]string{"message": "unknown event: " + msg.Event}})
	}
}

func (h *Hub) emitError(cl *client, err error) {
	message := "something went wrong"
	switch {
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrNotEnrolled),
		errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, service.ErrDurationExpired):
		message = err.Error()
	default:
		log.Error().Err(err).Msg("Realtime exam channel: unexpected error")
	}
	h.send(cl, outboundMessage{Event: EventError, Data: map[string]string{"message": message}})
}
