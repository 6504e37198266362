package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/logging"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/metrics"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/storage"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/store"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

// PersistenceActivities reads and writes journey snapshots, one storage
// bucket per session
type PersistenceActivities struct {
	Storage storage.Buckets
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// LoadSnapshot rehydrates a session. Keys that are missing or malformed come
// back as their defaults.
func (a *PersistenceActivities) LoadSnapshot(ctx context.Context, sessionID string, cat types.Catalog) (types.Snapshot, error) {
	logger := activity.GetLogger(ctx)
	if sessionID == "" {
		return types.Snapshot{}, &types.ValidationError{Field: "sessionID", Msg: "required"}
	}

	zl := logging.OrNop(a.Logger).With(zap.String("sessionID", sessionID))
	snap := store.LoadSnapshot(ctx, a.Storage.Bucket(sessionID), cat, zl)

	logger.Info("Snapshot loaded", "sessionID", sessionID, "page", snap.CurrentPage, "cartItems", len(snap.Cart))
	return snap, nil
}

// SaveSnapshot writes every persisted key. Keys that fail are counted and
// reported together; the others are still written.
func (a *PersistenceActivities) SaveSnapshot(ctx context.Context, sessionID string, snap types.Snapshot) error {
	logger := activity.GetLogger(ctx)
	if sessionID == "" {
		return &types.ValidationError{Field: "sessionID", Msg: "required"}
	}

	if err := store.Save(ctx, a.Storage.Bucket(sessionID), snap); err != nil {
		failed := store.FailedKeys(err)
		for _, key := range failed {
			a.Metrics.RecordPersistError(key)
		}
		logger.Warn("Snapshot partially saved", "sessionID", sessionID, "failedKeys", failed)
		return fmt.Errorf("save snapshot %s: %w", sessionID, err)
	}
	return nil
}

// PaymentActivities simulates the checkout payment
type PaymentActivities struct {
	Metrics *metrics.Metrics
}

// ProcessPayment confirms a simulated payment. Nothing is charged.
func (a *PaymentActivities) ProcessPayment(ctx context.Context, sessionID string, amountUSD float64) (types.PaymentReceipt, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Processing simulated payment", "sessionID", sessionID, "amountUSD", amountUSD)

	if amountUSD < 0 {
		a.Metrics.RecordPayment("rejected")
		return types.PaymentReceipt{}, &types.PermanentError{Msg: fmt.Sprintf("negative amount %.2f", amountUSD)}
	}

	receipt := types.PaymentReceipt{
		SessionID:    sessionID,
		Confirmation: uuid.NewString(),
		AmountUSD:    amountUSD,
		ProcessedAt:  time.Now().UTC(),
	}
	a.Metrics.RecordPayment(store.PaymentSucceeded)

	logger.Info("Payment confirmed", "sessionID", sessionID, "confirmation", receipt.Confirmation)
	return receipt, nil
}

// Cue describes a sound asset
type Cue struct {
	Src    string
	Volume float64
}

// Cues maps cue names to their assets.
var Cues = map[string]Cue{
	types.CueBookOpen: {Src: "/sounds/book-open.mp3", Volume: 0.5},
	types.CueMapBurn:  {Src: "/sounds/map-burn.mp3", Volume: 0.5},
	types.CuePageFlip: {Src: "/sounds/page-flip.mp3", Volume: 0.5},
	types.CueTreasure: {Src: "/sounds/treasure-erupt.mp3", Volume: 0.6},
	types.CueSuccess:  {Src: "/sounds/success-fanfare.mp3", Volume: 0.6},
}

// AudioActivities emits sound cues. Playback is best effort.
type AudioActivities struct{}

// PlayCue announces a cue for the presentation layer.
func (a *AudioActivities) PlayCue(ctx context.Context, cue string) error {
	logger := activity.GetLogger(ctx)

	asset, ok := Cues[cue]
	if !ok {
		return &types.ValidationError{Field: "cue", Msg: fmt.Sprintf("unknown cue %q", cue)}
	}

	logger.Info("Playing cue", "cue", cue, "src", asset.Src, "volume", asset.Volume)
	return nil
}
