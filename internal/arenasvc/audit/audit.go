package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mekdi/faction-services/internal/db"
)

// Collections of epoch-scoped audit events. Documents expire via Mongo TTL
// indexes, mirroring how the accounting core only guarantees epoch data for
// a bounded window after last use.
const (
	ColSessionEvents = "session_events"
	ColEpochEvents   = "epoch_events"
	ColClaimEvents   = "claim_events"
)

type Recorder struct {
	db  *mongo.Database
	ttl time.Duration
}

func NewRecorder(mdb *mongo.Database, ttl time.Duration) *Recorder {
	return &Recorder{db: mdb, ttl: ttl}
}

// EnsureIndexes creates the TTL indexes for all audit collections.
func (r *Recorder) EnsureIndexes() {
	for _, col := range []string{ColSessionEvents, ColEpochEvents, ColClaimEvents} {
		db.CreateTTLIndexForCollection(r.db, col)
	}
}

// record inserts one event document; failures are logged, never propagated.
// The audit trail is advisory and must not block settlement.
func (r *Recorder) record(ctx context.Context, collection, eventType string, fields bson.M) {
	if r == nil || r.db == nil {
		return
	}
	now := time.Now().UTC()
	doc := bson.M{
		"event_id":   uuid.New().String(),
		"type":       eventType,
		"created_at": now,
		"expires_at": now.Add(r.ttl),
	}
	for k, v := range fields {
		doc[k] = v
	}
	if _, err := r.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		log.Errorf("Error [audit.%s] %v", eventType, err)
	}
}

func (r *Recorder) SessionStarted(ctx context.Context, sessionID uint32, gameID string, epochID uint32, player1, player2 string) {
	r.record(ctx, ColSessionEvents, "session-started", bson.M{
		"session_id": sessionID,
		"game_id":    gameID,
		"epoch_id":   epochID,
		"player1":    player1,
		"player2":    player2,
	})
}

func (r *Recorder) SessionEnded(ctx context.Context, sessionID uint32, epochID uint32, winner string) {
	r.record(ctx, ColSessionEvents, "session-ended", bson.M{
		"session_id": sessionID,
		"epoch_id":   epochID,
		"winner":     winner,
	})
}

func (r *Recorder) SessionCancelled(ctx context.Context, sessionID uint32, epochID uint32) {
	r.record(ctx, ColSessionEvents, "session-cancelled", bson.M{
		"session_id": sessionID,
		"epoch_id":   epochID,
	})
}

func (r *Recorder) EpochFinalized(ctx context.Context, epochID uint32, winningFaction *uint32, rewardPool string) {
	r.record(ctx, ColEpochEvents, "epoch-finalized", bson.M{
		"epoch_id":        epochID,
		"winning_faction": winningFaction,
		"reward_pool":     rewardPool,
	})
}

func (r *Recorder) RewardClaimed(ctx context.Context, address string, epochID uint32, amount, payoutRef string) {
	r.record(ctx, ColClaimEvents, "reward-claimed", bson.M{
		"address":    address,
		"epoch_id":   epochID,
		"amount":     amount,
		"payout_ref": payoutRef,
	})
}
