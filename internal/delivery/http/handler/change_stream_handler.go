package handler

import (
	"net/http"
	"slices"
	"time"

	"massage-booking/internal/domain/entity"
	"massage-booking/internal/service"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type changeMessage struct {
	Type   string            `json:"type"`
	Change entity.ChangeType `json:"change"`
	At     time.Time         `json:"at"`
}

// ChangeStreamHandler pushes a signal over a websocket whenever bookings change.
// Clients re-run their own scoped listing on every signal.
type ChangeStreamHandler struct {
	notifier *service.ChangeNotifier
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

func NewChangeStreamHandler(notifier *service.ChangeNotifier, allowedOrigins []string, log *logrus.Logger) *ChangeStreamHandler {
	return &ChangeStreamHandler{
		notifier: notifier,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 ||
					slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Stream handles GET /bookings/changes. The subscription lives exactly as long as the connection.
func (h *ChangeStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("Failed to upgrade change stream: %+v", err)
		return
	}
	defer conn.Close()

	changes := make(chan entity.BookingChange, 1)
	sub, err := h.notifier.Subscribe(func(change entity.BookingChange) {
		select {
		case changes <- change:
		default:
		}
	})
	if err != nil {
		h.log.Warnf("Failed to subscribe to booking changes: %+v", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "notifier unavailable"),
			time.Now().Add(writeWait))
		return
	}
	defer sub.Unsubscribe()

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case change := <-changes:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(changeMessage{Type: "bookings.changed", Change: change.Type, At: change.At}); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and closes done when the peer goes away
func (h *ChangeStreamHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugf("Change stream closed: %+v", err)
			}
			return
		}
	}
}

