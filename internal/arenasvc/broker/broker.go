package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/mekdi/faction-services/internal/arenasvc/engine"
	"github.com/mekdi/faction-services/internal/arenasvc/models"
	"github.com/mekdi/faction-services/internal/arenasvc/service"
	"github.com/mekdi/faction-services/internal/comm"
)

// Reply topic consumed by the socket service.
const replyTopic = "arena.replies"

type Broker struct {
	Conn  *nats.Conn
	Arena *service.Arena
}

func NewBroker(nc *nats.Conn, arena *service.Arena) *Broker {
	return &Broker{
		Conn:  nc,
		Arena: arena,
	}
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "init", "get-player":
		query := comm.PlayerQuery{}
		err := json.Unmarshal(msg.Data, &query)
		if err != nil {
			log.Errorf("Error %s", err)
			return
		}

		b.PublishPlayerData(b.Arena.PlayerView(query.Address), msg.SocketId)
	case "select-faction":
		var request comm.SelectFactionRequest
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.Arena.SelectFaction(ctx, request.Address, request.FactionID); err != nil {
			log.Errorf("Error [Arena.SelectFaction] %s", err)
			b.PublishClaimResult(comm.ClaimResult{
				Address:   request.Address,
				ErrorCode: engine.CodeOf(err),
				Error:     err.Error(),
			}, "select-faction-response", msg.SocketId)
			return
		}

		b.PublishPlayerData(b.Arena.PlayerView(request.Address), msg.SocketId)
	case "get-epoch":
		var request comm.EpochQuery
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error %s", err)
			return
		}

		epochID := request.EpochID
		if request.Current {
			epochID = b.Arena.Engine().CurrentEpoch()
		}
		b.PublishEpochData(b.Arena.EpochView(epochID), msg.SocketId)
	case "get-claimable":
		var request comm.ClaimRequest
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error %s", err)
			return
		}

		amount := b.Arena.ClaimableAmount(request.Address, request.EpochID)
		b.PublishClaimResult(comm.ClaimResult{
			Address: request.Address,
			EpochID: request.EpochID,
			Amount:  models.DecimalFromFixed(amount).String(),
		}, "get-claimable-response", msg.SocketId)
	case "claim-reward":
		var request comm.ClaimRequest
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		amount, err := b.Arena.ClaimReward(ctx, request.Address, request.EpochID)
		if err != nil {
			log.Errorf("Error [Arena.ClaimReward] %s", err)
			b.PublishClaimResult(comm.ClaimResult{
				Address:   request.Address,
				EpochID:   request.EpochID,
				ErrorCode: engine.CodeOf(err),
				Error:     err.Error(),
			}, "claim-reward-response", msg.SocketId)
			return
		}

		b.PublishClaimResult(comm.ClaimResult{
			Address: request.Address,
			EpochID: request.EpochID,
			Amount:  models.DecimalFromFixed(amount).String(),
		}, "claim-reward-response", msg.SocketId)
	case "cycle-epoch":
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		closing := b.Arena.Engine().CurrentEpoch()
		result := comm.CycleResult{EpochID: closing}
		if err := b.Arena.CycleEpoch(ctx); err != nil {
			log.Errorf("Error [Arena.CycleEpoch] %s", err)
			result.ErrorCode = engine.CodeOf(err)
			result.Error = err.Error()
		}
		b.PublishCycleResult(result, msg.SocketId)
	default:
		log.Error("Unknown message")
		return
	}
}

func (b *Broker) PublishPlayerData(p comm.PlayerData, socketId string) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Errorf("unable to marshal playerData %s %s", p.Address, socketId)
	}

	msg := &comm.WSMessage{
		Type:     "player-data-response",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
	}

	b.Publish(replyTopic, payload)
}

func (b *Broker) PublishEpochData(e comm.EpochData, socketId string) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Errorf("unable to marshal epochData %d %s", e.EpochID, socketId)
	}

	msg := &comm.WSMessage{
		Type:     "epoch-data-response",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
	}

	b.Publish(replyTopic, payload)
}

func (b *Broker) PublishClaimResult(r comm.ClaimResult, msgType, socketId string) {
	data, err := json.Marshal(r)
	if err != nil {
		log.Errorf("unable to marshal claimResult %s %s", r.Address, socketId)
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
	}

	b.Publish(replyTopic, payload)
}

func (b *Broker) PublishCycleResult(r comm.CycleResult, socketId string) {
	data, err := json.Marshal(r)
	if err != nil {
		log.Errorf("unable to marshal cycleResult %d", r.EpochID)
	}

	msg := &comm.WSMessage{
		Type:     "cycle-epoch-response",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
	}

	b.Publish(replyTopic, payload)
}

// consume messages relayed by the socket service
func (b *Broker) SubscribeSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// consume cycle requests from the epoch scheduler (queue group so only one
// arena instance finalizes)
func (b *Broker) QueueSubscribeScheduler(topic, queueGroup string) (*nats.Subscription, error) {
	sub, err := b.Conn.QueueSubscribe(topic, queueGroup, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
