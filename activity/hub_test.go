package activity

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clipper-lms/models"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	pings    int
	fail     bool
	closed   bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	switch messageType {
	case websocket.TextMessage:
		f.messages = append(f.messages, data)
	case websocket.PingMessage:
		f.pings++
	}
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// stalledConn never finishes a write until it is closed, like a peer that
// stopped reading with a full TCP window.
type stalledConn struct {
	release chan struct{}
	once    sync.Once
}

func newStalledConn() *stalledConn { return &stalledConn{release: make(chan struct{})} }

func (s *stalledConn) WriteMessage(int, []byte) error {
	<-s.release
	return errors.New("connection closed")
}

func (s *stalledConn) SetWriteDeadline(time.Time) error { return nil }

func (s *stalledConn) Close() error {
	s.once.Do(func() { close(s.release) })
	return nil
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	assert.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestPublishRespectsVisibility(t *testing.T) {
	hub := NewHub()
	admin := &fakeConn{}
	owner := &fakeConn{}
	otherInstructor := &fakeConn{}
	student := &fakeConn{}

	hub.Register(admin, models.Identity{ID: 1, Role: models.RoleAdmin})
	hub.Register(owner, models.Identity{ID: 2, Role: models.RoleInstructor})
	hub.Register(otherInstructor, models.Identity{ID: 3, Role: models.RoleInstructor})
	hub.Register(student, models.Identity{ID: 4, Role: models.RoleStudent})

	hub.Publish(Event{Type: EventEnrollmentCreated, CourseID: 10, InstructorID: 2, Data: map[string]int{"userId": 4}})

	eventually(t, func() bool { return admin.received() == 1 && owner.received() == 1 })
	assert.Zero(t, otherInstructor.received())
	assert.Zero(t, student.received())

	owner.mu.Lock()
	raw := owner.messages[0]
	owner.mu.Unlock()

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, EventEnrollmentCreated, payload["event"])
	assert.EqualValues(t, 10, payload["courseId"])
	assert.NotContains(t, payload, "instructorId")
	assert.NotEmpty(t, payload["at"])
}

func TestPublishDropsBrokenConnections(t *testing.T) {
	hub := NewHub()
	good := &fakeConn{}
	broken := &fakeConn{fail: true}
	hub.Register(good, models.Identity{ID: 1, Role: models.RoleAdmin})
	hub.Register(broken, models.Identity{ID: 2, Role: models.RoleAdmin})

	hub.Publish(Event{Type: EventCourseCreated, CourseID: 1})

	eventually(t, func() bool { return hub.Count() == 1 && broken.isClosed() })
	eventually(t, func() bool { return good.received() == 1 })
}

func TestStalledClientDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	stalled := newStalledConn()
	healthy := &fakeConn{}
	hub.Register(stalled, models.Identity{ID: 1, Role: models.RoleAdmin})
	hub.Register(healthy, models.Identity{ID: 2, Role: models.RoleAdmin})

	total := sendBuffer + 5
	for i := 0; i < total; i++ {
		start := time.Now()
		hub.Publish(Event{Type: EventCourseUpdated, CourseID: uint(i + 1)})
		require.Less(t, time.Since(start), 500*time.Millisecond, "Publish blocked behind a client that stopped reading")

		want := i + 1
		eventually(t, func() bool { return healthy.received() == want })
	}

	eventually(t, func() bool { return hub.Count() == 1 })
}

func TestWriterSendsPings(t *testing.T) {
	hub := NewHub()
	hub.pingPeriod = 10 * time.Millisecond
	conn := &fakeConn{}
	hub.Register(conn, models.Identity{ID: 1, Role: models.RoleAdmin})
	defer hub.Unregister(conn)

	eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.pings > 0
	})
}

func TestUnregister(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(conn, models.Identity{ID: 1, Role: models.RoleAdmin})
	require.Equal(t, 1, hub.Count())

	hub.Unregister(conn)
	hub.Unregister(conn)
	assert.Zero(t, hub.Count())
	eventually(t, conn.isClosed)
}
