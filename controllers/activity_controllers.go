package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/clipper-lms/activity"
	"github.com/yeremiapane/clipper-lms/utils"
)

type ActivityController struct {
	Hub      *activity.Hub
	upgrader websocket.Upgrader
}

// NewActivityController accepts upgrades from the allowed origins only; "*"
// accepts any origin and requests without an Origin header always pass.
func NewActivityController(hub *activity.Hub, allowedOrigins []string) *ActivityController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &ActivityController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// Stream upgrades to a websocket and keeps the connection registered until
// the client goes away.
func (ac *ActivityController) Stream(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	ws, err := ac.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Activity upgrade failed for user %d: %v", identity.ID, err)
		return
	}

	ws.SetReadLimit(activity.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(activity.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(activity.PongWait))
	})

	ac.Hub.Register(ws, identity)
	utils.InfoLogger.Printf("Activity client connected: user %d (%s)", identity.ID, identity.Role)

	// The hub's writer owns outbound frames; this loop only drains control
	// frames and notices when the client goes away.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	ac.Hub.Unregister(ws)
	utils.InfoLogger.Printf("Activity client disconnected: user %d", identity.ID)
}
