package endpoints

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api/public/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
	"github.com/Nixie-Tech-LLC/minaarly/internal/viewport"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// LiveController serves the live map: one viewport.Session per socket.
type LiveController struct {
	store    db.Store
	fetcher  viewport.Fetcher
	cfg      viewport.Config
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conns   map[*websocket.Conn]struct{}
	closing bool
}

// NewLiveController builds the live map controller. checkOrigin may be nil
// to allow any origin.
func NewLiveController(store db.Store, fetcher viewport.Fetcher, cfg viewport.Config, checkOrigin func(*http.Request) bool) *LiveController {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &LiveController{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		conns: map[*websocket.Conn]struct{}{},
	}
}

// Module mounts GET /map/live.
func (lc *LiveController) Module() api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.RAW(http.MethodGet, "/map/live", lc.serve)
	})
}

// LiveModule mounts GET /map/live on a fresh controller.
func LiveModule(store db.Store, fetcher viewport.Fetcher, cfg viewport.Config, checkOrigin func(*http.Request) bool) api.Module {
	return NewLiveController(store, fetcher, cfg, checkOrigin).Module()
}

// CloseAll sends a going-away close frame to every open socket and closes
// it, ending their sessions. Sockets opened afterwards are refused. Meant
// for http.Server.RegisterOnShutdown, since Shutdown ignores hijacked
// connections.
func (lc *LiveController) CloseAll() {
	lc.mu.Lock()
	lc.closing = true
	conns := make([]*websocket.Conn, 0, len(lc.conns))
	for ws := range lc.conns {
		conns = append(conns, ws)
	}
	lc.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, ws := range conns {
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = ws.Close()
	}
	log.Info().Int("sockets", len(conns)).Msg("closed live map sessions")
}

func (lc *LiveController) track(ws *websocket.Conn) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.closing {
		return false
	}
	lc.conns[ws] = struct{}{}
	return true
}

func (lc *LiveController) untrack(ws *websocket.Conn) {
	lc.mu.Lock()
	delete(lc.conns, ws)
	lc.mu.Unlock()
}

type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *liveConn) send(frame packets.LiveResponse) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := l.conn.WriteJSON(frame); err != nil {
		log.Debug().Err(err).Str("frame", frame.Type).Msg("failed to write live map frame")
	}
}

func (l *liveConn) ping() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func updateFrame(u viewport.Update) packets.LiveResponse {
	frame := packets.LiveResponse{
		Type:       "state",
		State:      string(u.State),
		Generation: u.Generation,
		Total:      u.Total,
	}
	if len(u.Added) > 0 {
		frame.Mosques = packets.NewMosqueList(u.Added)
	}
	if u.Err != nil {
		frame.Error = u.Err.Error()
	}
	return frame
}

func errorFrame(msg string) packets.LiveResponse {
	return packets.LiveResponse{Type: "error", Error: msg}
}

// GET /api/map/live (websocket)
func (lc *LiveController) serve(c *gin.Context) {
	ws, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("live map upgrade failed")
		return
	}
	defer ws.Close()
	if !lc.track(ws) {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		return
	}
	defer lc.untrack(ws)

	conn := &liveConn{conn: ws}
	session := viewport.NewSession(c.Request.Context(), lc.fetcher, lc.cfg, func(u viewport.Update) {
		conn.send(updateFrame(u))
	})
	defer session.Close()

	done := make(chan struct{})
	var pinger sync.WaitGroup
	pinger.Add(1)
	go func() {
		defer pinger.Done()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.ping(); err != nil {
					return
				}
			}
		}
	}()
	defer pinger.Wait()
	defer close(done)

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	log.Debug().Str("remote", c.ClientIP()).Msg("live map session opened")
	for {
		var req packets.LiveRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("live map session closed unexpectedly")
			}
			log.Debug().Str("remote", c.ClientIP()).Msg("live map session closed")
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		switch req.Type {
		case "bounds":
			bounds := model.BoundingBox{South: req.South, North: req.North, West: req.West, East: req.East}
			if err := session.Track(bounds); err != nil {
				conn.send(errorFrame(err.Error()))
			}
		case "select":
			lc.selectMosque(c, session, conn, req.ID)
		case "dismiss":
			session.Dismiss()
		default:
			conn.send(errorFrame("unknown message type"))
		}
	}
}

func (lc *LiveController) selectMosque(c *gin.Context, session *viewport.Session, conn *liveConn, id string) {
	mosque, ok := session.Select(id)
	if !ok {
		found, err := lc.store.GetMosqueByID(c.Request.Context(), id)
		if err != nil {
			conn.send(errorFrame("mosque not found"))
			return
		}
		session.SelectRecord(*found)
		mosque = *found
	}
	resp := packets.NewMosqueResponse(mosque)
	conn.send(packets.LiveResponse{Type: "selected", Mosque: &resp})
}
