package activity

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
)

const (
	EventCourseCreated     = "course_created"
	EventCourseUpdated     = "course_updated"
	EventCourseDeleted     = "course_deleted"
	EventEnrollmentCreated = "enrollment_created"
	EventEnrollmentRemoved = "enrollment_removed"
)

const (
	// WriteWait bounds a single frame write.
	WriteWait = 10 * time.Second
	// PongWait is how long a client may stay silent before it is dropped.
	PongWait = 60 * time.Second
	// PingPeriod must be shorter than PongWait.
	PingPeriod = (PongWait * 9) / 10
	// MaxMessageSize caps inbound frames; clients only send control frames.
	MaxMessageSize = 512

	sendBuffer = 16
)

// Event is one entry of the activity feed. InstructorID decides which
// instructor connections see it; admins see everything.
type Event struct {
	Type         string      `json:"event"`
	CourseID     uint        `json:"courseId"`
	InstructorID uint        `json:"-"`
	Data         interface{} `json:"data"`
	At           time.Time   `json:"at"`
}

// Conn is the part of *websocket.Conn the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	conn     Conn
	identity models.Identity
	send     chan []byte
}

// Hub fans events out to feed clients. Each client has its own writer
// goroutine, so Publish never waits on the network.
type Hub struct {
	mu         sync.Mutex
	clients    map[Conn]*client
	pingPeriod time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Conn]*client),
		pingPeriod: PingPeriod,
	}
}

// Register adds conn and starts its writer. The writer owns conn from here
// on and closes it when the client is dropped.
func (h *Hub) Register(conn Conn, identity models.Identity) {
	c := &client{conn: conn, identity: identity, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()

	go h.writePump(c)
}

func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(conn)
}

// remove must be called with h.mu held.
func (h *Hub) remove(conn Conn) {
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues ev for every subscriber allowed to see it. A client whose
// queue is full is too slow to keep up and is dropped.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling activity event %s: %v", ev.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, c := range h.clients {
		if !canSee(c.identity, ev) {
			continue
		}
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.Printf("Dropping slow activity client %d", c.identity.ID)
			h.remove(conn)
			// unblocks a writer stuck on the stalled peer
			conn.Close()
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingPeriod)
	defer func() {
		ticker.Stop()
		h.Unregister(c.conn)
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				utils.ErrorLogger.Printf("Dropping activity client %d: %v", c.identity.ID, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func canSee(identity models.Identity, ev Event) bool {
	switch identity.Role {
	case models.RoleAdmin:
		return true
	case models.RoleInstructor:
		return ev.InstructorID == identity.ID
	}
	return false
}
