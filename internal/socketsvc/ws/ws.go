package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/mekdi/faction-services/internal/comm"
	"github.com/mekdi/faction-services/internal/socketsvc/broker"
)

// Topic the arena service consumes.
const arenaTopic = "socket.arena"

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	addrMap sync.Map // to keep track of socketId with player address
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "init":
		s.handleInit(socketId, message)
	case "get-player", "select-faction", "get-epoch", "get-claimable", "claim-reward":
		s.relayToArena(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (s *Ws) handleInit(socketId string, msg *comm.WSMessage) {
	var payload comm.PlayerQuery
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: invalid_init_data Malformed init payload %s", err)
		return
	}

	if payload.Address == "" {
		log.Error("Invalid init payload: missing player address")
		return
	}

	s.addrMap.Store(socketId, payload.Address)
	s.relayToArena(socketId, msg)

	log.Infof("Published init message for player %s to topic %s", payload.Address, arenaTopic)
}

// relayToArena stamps the socket id on the message and forwards it to the
// arena service over NATS.
func (s *Ws) relayToArena(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	if err := s.Broker.Publish(arenaTopic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", arenaTopic, err)
		return
	}
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

// AllConnections snapshots the open sockets, used for event broadcasts.
func (s *Ws) AllConnections() []*websocket.Conn {
	var conns []*websocket.Conn
	s.connMap.Range(func(key, value interface{}) bool {
		conns = append(conns, value.(*websocket.Conn))
		return true
	})
	return conns
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.addrMap.Delete(socketId)
}
