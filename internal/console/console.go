// Package console coordinates optimistic branch mutations: it applies a
// proposed change to the held collection first, confirms it against the
// upstream API, and rolls back whatever the upstream rejected.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"tablero/internal/audit"
	"tablero/internal/branchapi"
	"tablero/internal/metrics"
	"tablero/internal/model"
	"tablero/internal/store"
)

// ErrBranchNotFound marks a mutation against an id the collection does not
// hold. It is a caller contract violation, raised before any network call.
var ErrBranchNotFound = errors.New("branch not found")

// Updater is the id-scoped remote update call of the branches API.
type Updater interface {
	UpdateBranch(ctx context.Context, id string, payload any) (*model.Branch, error)
}

// Recorder receives one audit entry per top-level mutation.
type Recorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Notifier pushes a human-readable note about a finished mutation.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Outcome is the structured result of a granular batch mutation. Both id
// lists follow the original input order.
type Outcome struct {
	OK      bool     `json:"ok"`
	Enabled []string `json:"enabled"`
	Failed  []string `json:"failed"`
}

// Console owns the held branch collection. Each top-level call runs in its
// own critical section, so two mutations can never interleave against
// overlapping ids.
type Console struct {
	store  *store.Store
	api    Updater
	logger *zerolog.Logger

	recorder Recorder
	notifier Notifier

	mu      sync.Mutex
	errMu   sync.Mutex
	lastErr string
}

// New creates a console over the held collection and remote updater.
func New(st *store.Store, api Updater, logger *zerolog.Logger) *Console {
	return &Console{store: st, api: api, logger: logger}
}

// UseAudit attaches an audit recorder.
func (c *Console) UseAudit(r Recorder) {
	c.recorder = r
}

// UseNotifier attaches an ops notifier.
func (c *Console) UseNotifier(n Notifier) {
	c.notifier = n
}

// Err returns the human-readable message of the last total failure, empty
// after a successful mutation.
func (c *Console) Err() string {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

func (c *Console) setErr(msg string) {
	c.errMu.Lock()
	c.lastErr = msg
	c.errMu.Unlock()
}

// EnableBranches turns on reservations for the given ids in granular mode.
// Every id gets its local copy flipped optimistically and one independent
// remote request; requests run concurrently and all are waited for before
// reconciling. Ids whose request failed are rolled back individually and
// reported in Outcome.Failed; the call errors only when nothing succeeded.
func (c *Console) EnableBranches(ctx context.Context, ids []string) (*Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(ids) == 0 {
		return &Outcome{OK: true}, nil
	}

	snapshots := c.store.Snapshot(ids)
	failed := make(map[string]bool, len(ids))

	var attempted []string
	for _, id := range ids {
		snap, ok := snapshots[id]
		if !ok {
			failed[id] = true
			continue
		}
		optimistic := snap.Clone()
		optimistic.AcceptsReservations = true
		c.store.Replace(optimistic)
		attempted = append(attempted, id)
	}

	// One request per id, all settled before reconciling. A slow or
	// failing branch must not hold up the others' outcomes.
	results := make([]error, len(attempted))
	confirmed := make([]*model.Branch, len(attempted))
	var wg sync.WaitGroup
	for i, id := range attempted {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			b, err := c.api.UpdateBranch(ctx, id, branchapi.EnablePayload{AcceptsReservations: true})
			results[i], confirmed[i] = err, b
		}(i, id)
	}
	wg.Wait()

	var firstErr error
	rolledBack := 0
	for i, id := range attempted {
		if err := results[i]; err != nil {
			if firstErr == nil {
				firstErr = err
			}
			failed[id] = true
			rolledBack++
			c.store.Replace(snapshots[id])
			c.logger.Warn().Err(err).Str("branch_id", id).Msg("enable rejected, rolled back")
			continue
		}
		if confirmed[i] != nil {
			// The server copy is authoritative for the final state.
			c.store.Replace(confirmed[i])
		}
	}

	outcome := &Outcome{Enabled: []string{}, Failed: []string{}}
	for _, id := range ids {
		if failed[id] {
			outcome.Failed = append(outcome.Failed, id)
		} else {
			outcome.Enabled = append(outcome.Enabled, id)
		}
	}
	outcome.OK = len(outcome.Failed) == 0

	metrics.AddRollbacks("enable", rolledBack)

	if len(outcome.Enabled) == 0 {
		msg := "all branches failed to enable"
		if firstErr != nil {
			msg = errMessage(firstErr)
		}
		c.setErr(msg)
		metrics.IncMutation("enable", "failed")
		c.record(ctx, "enable", ids, "failed", msg)
		return nil, fmt.Errorf("enable branches: %s", msg)
	}

	c.setErr("")
	result := "ok"
	if !outcome.OK {
		result = "partial"
	}
	metrics.IncMutation("enable", result)
	c.record(ctx, "enable", ids, result, "")
	c.notify(ctx, fmt.Sprintf("Reservations enabled for %d of %d branches", len(outcome.Enabled), len(ids)))
	c.logger.Info().
		Strs("enabled", outcome.Enabled).
		Strs("failed", outcome.Failed).
		Msg("enable batch reconciled")
	return outcome, nil
}

// DisableAll turns off reservations for every enabled branch in
// all-or-nothing mode: one upstream rejection rolls every affected branch
// back and surfaces the error.
func (c *Console) DisableAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	targets := model.Enabled(c.store.List())
	if len(targets) == 0 {
		return nil
	}

	ids := make([]string, len(targets))
	for i, b := range targets {
		ids[i] = b.ID
	}
	snapshots := c.store.Snapshot(ids)

	for _, b := range targets {
		optimistic := b.Clone()
		optimistic.AcceptsReservations = false
		c.store.Replace(optimistic)
	}

	confirmed := make([]*model.Branch, 0, len(ids))
	for _, id := range ids {
		b, err := c.api.UpdateBranch(ctx, id, branchapi.EnablePayload{AcceptsReservations: false})
		if err != nil {
			for _, snap := range snapshots {
				c.store.Replace(snap)
			}
			msg := errMessage(err)
			c.setErr(msg)
			metrics.IncMutation("disable_all", "failed")
			metrics.AddRollbacks("disable_all", len(ids))
			c.record(ctx, "disable_all", ids, "failed", msg)
			c.logger.Error().Err(err).Str("branch_id", id).Msg("disable all failed, rolled back")
			return fmt.Errorf("disable all branches: %w", err)
		}
		if b != nil {
			confirmed = append(confirmed, b)
		}
	}

	for _, b := range confirmed {
		c.store.Replace(b)
	}
	c.setErr("")
	metrics.IncMutation("disable_all", "ok")
	c.record(ctx, "disable_all", ids, "ok", "")
	c.notify(ctx, fmt.Sprintf("Reservations disabled for all %d branches", len(ids)))
	return nil
}

// UpdateSettings saves a branch's reservation settings in all-or-nothing
// mode. An id the collection does not hold errors immediately, before any
// optimistic write or network call.
func (c *Console) UpdateSettings(ctx context.Context, id string, upd model.SettingsUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, ok := c.store.Get(id)
	if !ok {
		return fmt.Errorf("update settings for %q: %w", id, ErrBranchNotFound)
	}

	optimistic := snap.Clone()
	optimistic.ReservationDuration = upd.Duration
	optimistic.ReservationTimes = upd.Times
	c.store.Replace(optimistic)

	payload := branchapi.SettingsPayload{
		ReservationDuration: upd.Duration,
		ReservationTimes:    upd.Times,
	}
	b, err := c.api.UpdateBranch(ctx, id, payload)
	if err != nil {
		c.store.Replace(snap)
		msg := errMessage(err)
		c.setErr(msg)
		metrics.IncMutation("update_settings", "failed")
		metrics.AddRollbacks("update_settings", 1)
		c.record(ctx, "update_settings", []string{id}, "failed", msg)
		c.logger.Error().Err(err).Str("branch_id", id).Msg("settings update failed, rolled back")
		return fmt.Errorf("update settings for %q: %w", id, err)
	}

	if b != nil {
		c.store.Replace(b)
	}
	c.setErr("")
	metrics.IncMutation("update_settings", "ok")
	c.record(ctx, "update_settings", []string{id}, "ok", "")
	c.logger.Info().Str("branch_id", id).Int("duration", upd.Duration).Msg("settings updated")
	return nil
}

func (c *Console) record(ctx context.Context, op string, ids []string, result, msg string) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, audit.Entry{Op: op, BranchIDs: ids, Result: result, Message: msg}); err != nil {
		c.logger.Warn().Err(err).Str("op", op).Msg("audit record failed")
	}
}

func (c *Console) notify(ctx context.Context, text string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, text)
}

// errMessage extracts the upstream message from a normalized API error,
// falling back to the plain error text.
func errMessage(err error) string {
	var apiErr *branchapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
