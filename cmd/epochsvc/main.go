// cmd/epochsvc/main.go
package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	config "github.com/mekdi/faction-services/configs"
	"github.com/mekdi/faction-services/internal/comm"
	natscli "github.com/mekdi/faction-services/internal/nats"
)

const SERVICE_NAME = "epoch"

// EpochNotReady in the arena error taxonomy; expected between rollovers.
const codeEpochNotReady = 30

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

// epochsvc is the rollover scheduler. It nudges the arena service on a fixed
// interval; the arena refuses the cycle until the epoch's minimum duration
// has elapsed, so running several schedulers is harmless.
func main() {
	// connect to NATS
	n, err := natscli.Connect()
	if err != nil {
		log.Fatalf("unable to connect to NATS: %v", err)
	}
	defer n.Conn.Close()
	log.Infof("NATS connected at %s", n.Url)

	// watch cycle outcomes
	sub, err := n.Conn.Subscribe("arena.replies", func(msg *nats.Msg) {
		var ws comm.WSMessage
		if err := json.Unmarshal(msg.Data, &ws); err != nil {
			log.Errorf("invalid WSMessage: %v", err)
			return
		}
		if ws.Type != "cycle-epoch-response" {
			return
		}

		var result comm.CycleResult
		if err := json.Unmarshal(ws.Data, &result); err != nil {
			log.Errorf("invalid CycleResult payload: %v", err)
			return
		}

		switch result.ErrorCode {
		case 0:
			log.Infof("epoch %d finalized", result.EpochID)
		case codeEpochNotReady:
			log.Debugf("epoch %d not ready yet", result.EpochID)
		default:
			log.Errorf("cycle of epoch %d failed: code %d %s", result.EpochID, result.ErrorCode, result.Error)
		}
	})
	if err != nil {
		log.Fatalf("subscribe error: %v", err)
	}
	defer sub.Unsubscribe()

	interval := 60 * time.Second
	if v := os.Getenv("EPOCH_CHECK_SECS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid EPOCH_CHECK_SECS value: %v", err)
		}
		interval = time.Duration(secs) * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Infof("%s scheduler running, checking every %s", SERVICE_NAME, interval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	for {
		select {
		case <-ticker.C:
			publishCycleRequest(n)
		case <-stop:
			log.Infof("%s scheduler gracefully stopped", SERVICE_NAME)
			return
		}
	}
}

func publishCycleRequest(n *natscli.Nats) {
	msg := &comm.WSMessage{
		Type: "cycle-epoch",
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("error [publishCycleRequest] marshaling WSMessage: %v", err)
		return
	}

	if err := n.Conn.Publish("arena.scheduler", payload); err != nil {
		log.Errorf("error publishing arena.scheduler: %v", err)
	}
}
