package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/tycoonhq/tycoon-services/internal/comm"
)

// Ws tracks client sockets and the game code each socket watches.
// A socket belongs to exactly one game room at a time; subscribing
// again moves it.
type Ws struct {
	connMap sync.Map // socketId -> *websocket.Conn
	roomMap sync.Map // socketId -> game code
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "subscribe":
		s.handleSubscribe(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (s *Ws) handleSubscribe(socketId string, msg *comm.WSMessage) {
	var payload comm.Subscribe
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("malformed subscribe payload: %s", err)
		return
	}
	if payload.Code == "" {
		log.Error("subscribe payload missing game code")
		return
	}

	s.StoreRoom(socketId, payload.Code)
	log.Infof("socket %s subscribed to game %s", socketId, payload.Code)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreRoom(socketId string, code string) {
	s.roomMap.Store(socketId, code)
}

// GetRoomSockets lists the sockets subscribed to a game code.
func (s *Ws) GetRoomSockets(code string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(string) == code {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}
