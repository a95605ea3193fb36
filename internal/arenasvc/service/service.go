package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mekdi/faction-services/internal/arenasvc/audit"
	"github.com/mekdi/faction-services/internal/arenasvc/engine"
	"github.com/mekdi/faction-services/internal/arenasvc/models"
	"github.com/mekdi/faction-services/internal/arenasvc/store"
	"github.com/mekdi/faction-services/internal/comm"
)

// Publisher is the broadcast side of the NATS connection; satisfied by
// *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

const EventSubject = "arena.events"

// Arena fronts the accounting engine with write-through persistence and
// event broadcasting. The engine is the source of truth; Postgres rows and
// Mongo audit documents are projections, so their write failures are logged
// and never roll back a committed engine transition.
type Arena struct {
	eng      *engine.Engine
	players  *store.PlayerStore
	epochs   *store.EpochStore
	sessions *store.SessionStore
	payouts  *store.PayoutStore
	audit    *audit.Recorder
	pub      Publisher
}

func NewArena(eng *engine.Engine, players *store.PlayerStore, epochs *store.EpochStore,
	sessions *store.SessionStore, payouts *store.PayoutStore, rec *audit.Recorder, pub Publisher) *Arena {
	return &Arena{
		eng:      eng,
		players:  players,
		epochs:   epochs,
		sessions: sessions,
		payouts:  payouts,
		audit:    rec,
		pub:      pub,
	}
}

func (a *Arena) Engine() *engine.Engine { return a.eng }

// ---------------------------------------------------------------------------
// Player operations
// ---------------------------------------------------------------------------

func (a *Arena) SelectFaction(ctx context.Context, addr string, faction uint32) error {
	if err := a.eng.SelectFaction(addr, engine.FactionID(faction)); err != nil {
		return err
	}
	a.persistPlayer(ctx, addr)
	return nil
}

// PlayerView assembles the current-epoch ledger view for one address.
func (a *Arena) PlayerView(addr string) comm.PlayerData {
	epoch := a.eng.CurrentEpoch()
	eu := a.eng.GetEpochUser(epoch, addr)

	factionID := uint32(eu.Faction)
	if !eu.FactionLocked {
		factionID = uint32(a.eng.GetUser(addr).SelectedFaction)
	}
	return comm.PlayerData{
		Address:       addr,
		EpochID:       epoch,
		FactionID:     factionID,
		Faction:       models.FactionName(factionID),
		AvailableFP:   models.DecimalFromFixed(eu.AvailableFP).String(),
		LockedFP:      models.DecimalFromFixed(eu.LockedFP).String(),
		ContributedFP: models.DecimalFromFixed(eu.ContributedFP).String(),
	}
}

// EpochView assembles the epoch aggregate plus faction standings.
func (a *Arena) EpochView(epochID uint32) comm.EpochData {
	info := a.eng.GetEpochInfo(epochID)
	numFactions := a.eng.GetConfig().NumFactions

	standings := make([]comm.StandingData, 0, numFactions)
	for f := uint32(0); f < numFactions; f++ {
		standings = append(standings, comm.StandingData{
			FactionID: f,
			Faction:   models.FactionName(f),
			TotalFP:   models.DecimalFromFixed(info.Standings[engine.FactionID(f)]).String(),
		})
	}

	out := comm.EpochData{
		EpochID:    epochID,
		StartTime:  info.StartTime,
		EndTime:    info.EndTime,
		Finalized:  info.Finalized,
		RewardPool: models.DecimalFromFixed(info.RewardPool).String(),
		Standings:  standings,
	}
	if info.Finalized && info.HasWinner {
		w := uint32(info.WinningFaction)
		out.WinningFaction = &w
	}
	return out
}

// ---------------------------------------------------------------------------
// Session operations
// ---------------------------------------------------------------------------

func (a *Arena) StartGame(ctx context.Context, gameID string, sessionID uint32, player1, player2 string, wager1, wager2 int64) error {
	if err := a.eng.StartGame(gameID, sessionID, player1, player2, wager1, wager2); err != nil {
		return err
	}

	sess, _ := a.eng.GetSession(sessionID)
	a.persistPlayer(ctx, player1)
	a.persistPlayer(ctx, player2)
	a.persistEpochUser(ctx, sess.EpochID, player1)
	a.persistEpochUser(ctx, sess.EpochID, player2)
	a.persistSession(ctx, sessionID)
	a.audit.SessionStarted(ctx, sessionID, gameID, sess.EpochID, player1, player2)

	a.broadcast("game-started", comm.GameEventData{
		SessionID: sessionID,
		GameID:    gameID,
		EpochID:   sess.EpochID,
		Player1:   player1,
		Player2:   player2,
	})
	return nil
}

func (a *Arena) EndGame(ctx context.Context, gameID string, out engine.Outcome) error {
	if err := a.eng.EndGame(gameID, out); err != nil {
		return err
	}

	sess, _ := a.eng.GetSession(out.SessionID)
	winner := out.Player2
	wager := sess.Player2Wager
	if out.Player1Won {
		winner = out.Player1
		wager = sess.Player1Wager
	}

	a.persistEpochUser(ctx, sess.EpochID, out.Player1)
	a.persistEpochUser(ctx, sess.EpochID, out.Player2)
	a.persistEpoch(ctx, sess.EpochID)
	a.persistSession(ctx, out.SessionID)
	a.audit.SessionEnded(ctx, out.SessionID, sess.EpochID, winner)

	a.broadcast("game-ended", comm.GameEventData{
		SessionID: out.SessionID,
		GameID:    sess.GameID,
		EpochID:   sess.EpochID,
		Player1:   out.Player1,
		Player2:   out.Player2,
		Winner:    winner,
		WagerFP:   models.DecimalFromFixed(wager).String(),
	})
	return nil
}

func (a *Arena) CancelSession(ctx context.Context, caller string, sessionID uint32) error {
	if err := a.eng.CancelSession(caller, sessionID); err != nil {
		return err
	}

	sess, _ := a.eng.GetSession(sessionID)
	a.persistEpochUser(ctx, sess.EpochID, sess.Player1)
	a.persistEpochUser(ctx, sess.EpochID, sess.Player2)
	a.persistSession(ctx, sessionID)
	a.audit.SessionCancelled(ctx, sessionID, sess.EpochID)
	return nil
}

// ---------------------------------------------------------------------------
// Epoch and rewards
// ---------------------------------------------------------------------------

func (a *Arena) CycleEpoch(ctx context.Context) error {
	closing := a.eng.CurrentEpoch()
	if err := a.eng.CycleEpoch(); err != nil {
		return err
	}

	a.persistEpoch(ctx, closing)
	a.persistEpoch(ctx, a.eng.CurrentEpoch())

	info := a.eng.GetEpochInfo(closing)
	var winner *uint32
	if info.HasWinner {
		w := uint32(info.WinningFaction)
		winner = &w
	}
	a.audit.EpochFinalized(ctx, closing, winner, models.DecimalFromFixed(info.RewardPool).String())

	a.broadcast("epoch-finalized", a.EpochView(closing))
	a.broadcast("epoch-opened", a.EpochView(a.eng.CurrentEpoch()))
	return nil
}

func (a *Arena) ClaimReward(ctx context.Context, addr string, epoch uint32) (int64, error) {
	amount, err := a.eng.ClaimEpochReward(addr, epoch)
	if err != nil {
		return 0, err
	}

	ref, err := uuid.NewRandom()
	if err != nil {
		log.Errorf("Error [payout ref] %v", err)
	}
	if a.payouts != nil {
		if perr := a.payouts.CreatePayout(ctx, models.Payout{
			Address: addr,
			EpochID: epoch,
			TType:   "reward-claim",
			Dr:      models.DecimalFromFixed(amount),
			TRef:    ref.String(),
			Status:  "completed",
		}); perr != nil {
			log.Errorf("Error [persist payout] %v", perr)
		}
	}
	a.audit.RewardClaimed(ctx, addr, epoch, models.DecimalFromFixed(amount).String(), ref.String())

	a.broadcast("reward-claimed", comm.ClaimResult{
		Address: addr,
		EpochID: epoch,
		Amount:  models.DecimalFromFixed(amount).String(),
	})
	return amount, nil
}

func (a *Arena) ClaimableAmount(addr string, epoch uint32) int64 {
	return a.eng.GetClaimableAmount(addr, epoch)
}

// ---------------------------------------------------------------------------
// Write-through projections
// ---------------------------------------------------------------------------

func (a *Arena) persistPlayer(ctx context.Context, addr string) {
	if a.players == nil {
		return
	}
	u := a.eng.GetUser(addr)
	err := a.players.UpsertPlayer(ctx, models.Player{
		Address:             addr,
		SelectedFaction:     uint32(u.SelectedFaction),
		LastEpochBalance:    models.DecimalFromFixed(u.LastEpochBalance),
		TimeMultiplierStart: time.Unix(u.TimeMultiplierStart, 0).UTC(),
	})
	if err != nil {
		log.Errorf("Error [persist player] %v", err)
	}
}

func (a *Arena) persistEpochUser(ctx context.Context, epoch uint32, addr string) {
	if a.players == nil {
		return
	}
	eu := a.eng.GetEpochUser(epoch, addr)
	if !eu.FactionLocked {
		return
	}
	err := a.players.UpsertEpochPlayer(ctx, models.EpochPlayer{
		EpochID:       epoch,
		Address:       addr,
		Faction:       uint32(eu.Faction),
		Balance:       models.DecimalFromFixed(eu.BalanceSnapshot),
		AvailableFP:   models.DecimalFromFixed(eu.AvailableFP),
		LockedFP:      models.DecimalFromFixed(eu.LockedFP),
		ContributedFP: models.DecimalFromFixed(eu.ContributedFP),
	})
	if err != nil {
		log.Errorf("Error [persist epoch player] %v", err)
	}
}

func (a *Arena) persistEpoch(ctx context.Context, epochID uint32) {
	if a.epochs == nil {
		return
	}
	info := a.eng.GetEpochInfo(epochID)

	ep := models.Epoch{
		EpochID:    epochID,
		StartTime:  time.Unix(info.StartTime, 0).UTC(),
		EndTime:    time.Unix(info.EndTime, 0).UTC(),
		Finalized:  info.Finalized,
		RewardPool: models.DecimalFromFixed(info.RewardPool),
	}
	if info.Finalized && info.HasWinner {
		w := uint32(info.WinningFaction)
		ep.WinningFaction = &w
	}
	if err := a.epochs.UpsertEpoch(ctx, ep); err != nil {
		log.Errorf("Error [persist epoch] %v", err)
	}

	for f, total := range info.Standings {
		err := a.epochs.UpsertStanding(ctx, models.FactionStanding{
			EpochID:   epochID,
			FactionID: uint32(f),
			Faction:   models.FactionName(uint32(f)),
			TotalFP:   models.DecimalFromFixed(total),
		})
		if err != nil {
			log.Errorf("Error [persist standing] %v", err)
		}
	}
}

func (a *Arena) persistSession(ctx context.Context, sessionID uint32) {
	if a.sessions == nil {
		return
	}
	sess, ok := a.eng.GetSession(sessionID)
	if !ok {
		return
	}
	row := models.Session{
		SessionID:    sessionID,
		GameID:       sess.GameID,
		EpochID:      sess.EpochID,
		Player1:      sess.Player1,
		Player2:      sess.Player2,
		Player1Wager: models.DecimalFromFixed(sess.Player1Wager),
		Player2Wager: models.DecimalFromFixed(sess.Player2Wager),
		Status:       sess.Status.String(),
	}
	if sess.Status == engine.SessionCompleted {
		won := sess.Player1Won
		row.Player1Won = &won
	}
	if err := a.sessions.UpsertSession(ctx, row); err != nil {
		log.Errorf("Error [persist session] %v", err)
	}
}

func (a *Arena) broadcast(msgType string, payload any) {
	if a.pub == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("Error [marshal %s event] %v", msgType, err)
		return
	}
	msg, err := json.Marshal(comm.WSMessage{Type: msgType, Data: data})
	if err != nil {
		log.Errorf("Error [marshal %s envelope] %v", msgType, err)
		return
	}
	if err := a.pub.Publish(EventSubject, msg); err != nil {
		log.Errorf("Error [publish %s] %v", msgType, err)
	}
}
