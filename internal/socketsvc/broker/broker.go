package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/mekdi/faction-services/internal/comm"
)

type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	AllConnections func() []*websocket.Conn
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool),
	fncAllConnections func() []*websocket.Conn) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		AllConnections: fncAllConnections,
	}
}

// consume message from arena service
func (b *Broker) QueueSubscribe(topic, queueGroup string) (*nats.Subscription, error) {
	sub, err := b.Conn.QueueSubscribe(topic, queueGroup, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// consume message from arena service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to arena service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives messages from the arena service. Replies are
// addressed to one socket; events fan out to every open socket.
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "player-data-response", "epoch-data-response",
		"select-faction-response", "get-claimable-response",
		"claim-reward-response", "cycle-epoch-response":
		b.sendMessage(message)
	case "game-started", "game-ended", "epoch-finalized", "epoch-opened", "reward-claimed":
		b.broadcastMessage(message)
	default:
		log.Error("Unknown message")
		return
	}
}

// send socket message to the web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error writing to socket %s: %v", socketId, err)
		}
	}
}

// fan an arena event out to all connected clients
func (b *Broker) broadcastMessage(m *comm.WSMessage) {
	for _, conn := range b.AllConnections() {
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error broadcasting %s: %v", m.Type, err)
		}
	}
}
