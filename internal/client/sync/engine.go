package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"rosterkeeper/internal/client/models"
	"rosterkeeper/internal/client/remote"
	"rosterkeeper/internal/client/repositories/synclog"
	"rosterkeeper/internal/client/sensor"
	"rosterkeeper/internal/logging"
)

// Engine reconciles one entity kind between the local store and the
// backend. All public entry points share one in-flight guard: a trigger
// arriving while a batch is running is a no-op, never a parallel run.
type Engine[T Record[T]] struct {
	kind    string
	store   Store[T]
	gateway Gateway[T]
	log     LogStore
	token   TokenFunc
	bus     *sensor.Sensor[T]
	logger  logging.Logger

	newID func() string
	now   func() time.Time

	mu       sync.Mutex
	inFlight bool
}

// NewEngine returns an Engine for one entity kind. kind names the
// entity in sync log entries ("group", "user").
func NewEngine[T Record[T]](kind string, store Store[T], gateway Gateway[T],
	log LogStore, token TokenFunc, bus *sensor.Sensor[T], logger logging.Logger) *Engine[T] {
	return &Engine[T]{
		kind:    kind,
		store:   store,
		gateway: gateway,
		log:     log,
		token:   token,
		bus:     bus,
		logger:  logger.With("entity", kind),
		newID:   uuid.NewString,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// begin claims the in-flight flag. A false return means another batch
// is running and the caller must back off.
func (e *Engine[T]) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return false
	}
	e.inFlight = true
	return true
}

func (e *Engine[T]) end() {
	e.mu.Lock()
	e.inFlight = false
	e.mu.Unlock()
}

// InFlight reports whether a batch is currently running.
func (e *Engine[T]) InFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// Push sends every queued local change to the backend. A push while
// another batch is in flight is a no-op.
func (e *Engine[T]) Push(ctx context.Context) error {
	if !e.begin() {
		e.logger.Debug(ctx, "push skipped, batch already in flight")
		return nil
	}
	defer e.end()
	return e.push(ctx)
}

// Pull refreshes the local store from the backend collection.
func (e *Engine[T]) Pull(ctx context.Context) error {
	if !e.begin() {
		e.logger.Debug(ctx, "pull skipped, batch already in flight")
		return nil
	}
	defer e.end()
	return e.pull(ctx)
}

// Cycle runs one full reconciliation: pull first so the local view is
// fresh, then push the queued changes, then clean up terminal records.
func (e *Engine[T]) Cycle(ctx context.Context) error {
	if !e.begin() {
		e.logger.Debug(ctx, "cycle skipped, batch already in flight")
		return nil
	}
	defer e.end()

	var errs []error
	if err := e.pull(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := e.push(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := e.cleanup(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine[T]) push(ctx context.Context) error {
	queue, err := e.collectQueue(ctx)
	if err != nil {
		e.bus.Failure(err)
		return err
	}
	if len(queue) == 0 {
		e.bus.Success()
		return nil
	}

	e.bus.Start()
	e.logger.Info(ctx, "starting push", "queued", len(queue))

	// Credentials gate the whole batch. No record is marked in-progress
	// before the token is known to exist.
	token, err := e.token(ctx)
	if err == nil && token == "" {
		err = ErrNoCredentials
	}
	if err != nil {
		err = fmt.Errorf("push aborted: %w", err)
		e.logger.Warn(ctx, "push aborted", "error", err)
		e.bus.Failure(err)
		return err
	}

	var errs []error
	for _, rec := range queue {
		if err := e.pushOne(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", e.kind, rec.Key(), err))
		}
	}

	if len(errs) > 0 {
		agg := errors.Join(errs...)
		e.logger.Warn(ctx, "push finished with failures", "failed", len(errs), "total", len(queue))
		e.bus.Failure(agg)
		return agg
	}
	e.logger.Info(ctx, "push finished", "pushed", len(queue))
	e.bus.Success()
	return nil
}

// collectQueue gathers pending, updated and deleted records, in that order.
func (e *Engine[T]) collectQueue(ctx context.Context) ([]T, error) {
	var queue []T
	for _, status := range []models.SyncStatus{models.StatusPending, models.StatusUpdated, models.StatusDeleted} {
		recs, err := e.store.GetByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("failed to collect %s records: %w", status, err)
		}
		queue = append(queue, recs...)
	}
	return queue, nil
}

// pushOne processes a single queued record. Failures are isolated: the
// record is marked failed and logged, and the batch moves on.
func (e *Engine[T]) pushOne(ctx context.Context, rec T) error {
	intent := rec.Status()

	// An edited record that was never created remotely is really a
	// create. Reclassify before the attempt starts; it will be pushed
	// as pending on the next batch.
	if intent == models.StatusUpdated && rec.RemoteKey() == "" {
		_, err := e.store.Save(ctx, rec.WithStatus(models.StatusPending))
		return err
	}

	// A deletion of a record the backend never saw is pure local cleanup.
	if intent == models.StatusDeleted && rec.RemoteKey() == "" {
		if err := e.store.Delete(ctx, rec.Key()); err != nil {
			return err
		}
		e.appendLog(ctx, rec, synclog.ActionDelete, models.StatusSynced)
		e.bus.ItemDeleted(rec)
		return nil
	}

	rec, err := e.transition(ctx, rec, models.StatusInProgress)
	if err != nil {
		return err
	}

	switch intent {
	case models.StatusPending:
		return e.pushCreate(ctx, rec)
	case models.StatusUpdated:
		return e.pushUpdate(ctx, rec)
	case models.StatusDeleted:
		return e.pushDelete(ctx, rec)
	default:
		return fmt.Errorf("record %s has unexpected queue status %q", rec.Key(), intent)
	}
}

func (e *Engine[T]) pushCreate(ctx context.Context, rec T) error {
	created, err := e.gateway.Create(ctx, rec)
	if err != nil {
		return e.failRecord(ctx, rec, synclog.ActionAdd, err)
	}
	created, err = e.transition(ctx, created, models.StatusSynced)
	if err != nil {
		return err
	}
	e.appendLog(ctx, created, synclog.ActionAdd, models.StatusSynced)
	e.bus.ItemSynced(created)
	return nil
}

func (e *Engine[T]) pushUpdate(ctx context.Context, rec T) error {
	updated, err := e.gateway.Update(ctx, rec)
	if err != nil {
		return e.failRecord(ctx, rec, synclog.ActionUpdate, err)
	}
	updated, err = e.transition(ctx, updated, models.StatusSynced)
	if err != nil {
		return err
	}
	e.appendLog(ctx, updated, synclog.ActionUpdate, models.StatusSynced)
	e.bus.ItemSynced(updated)
	return nil
}

func (e *Engine[T]) pushDelete(ctx context.Context, rec T) error {
	if err := e.gateway.Delete(ctx, rec.RemoteKey()); err != nil {
		return e.failRecord(ctx, rec, synclog.ActionDelete, err)
	}
	if err := e.store.Delete(ctx, rec.Key()); err != nil {
		return err
	}
	e.appendLog(ctx, rec, synclog.ActionDelete, models.StatusSynced)
	e.bus.ItemDeleted(rec)
	return nil
}

// failRecord handles a gateway error for one record. A 404 means the
// backend no longer has the record: the divergence is accepted, the
// local copy removed and the attempt logged as synced.
func (e *Engine[T]) failRecord(ctx context.Context, rec T, action synclog.Action, cause error) error {
	if remote.IsNotFound(cause) {
		e.logger.Info(ctx, "record gone on backend, removing local copy",
			"id", rec.Key(), "remote_id", rec.RemoteKey())
		if err := e.store.Delete(ctx, rec.Key()); err != nil {
			return err
		}
		e.appendLog(ctx, rec, action, models.StatusSynced)
		e.bus.ItemDeleted(rec)
		return nil
	}

	failed, err := e.transition(ctx, rec, models.StatusFailed)
	if err != nil {
		return errors.Join(cause, err)
	}
	e.appendLog(ctx, failed, action, models.StatusFailed)
	e.bus.ItemFailed(failed, cause)
	return cause
}

func (e *Engine[T]) pull(ctx context.Context) error {
	remoteRecs, err := e.gateway.FetchAll(ctx)
	if err != nil {
		err = fmt.Errorf("pull failed: %w", err)
		e.bus.Failure(err)
		return err
	}

	remoteSet := make(map[string]T, len(remoteRecs))
	for _, r := range remoteRecs {
		if r.RemoteKey() != "" {
			remoteSet[r.RemoteKey()] = r
		}
	}

	locals, err := e.store.GetAll(ctx)
	if err != nil {
		return err
	}

	var errs []error

	// Backend-side deletions propagate down: a confirmed local record
	// whose remote id is gone from the collection is removed.
	for _, local := range locals {
		if !local.Status().Confirmed() || local.RemoteKey() == "" {
			continue
		}
		if _, ok := remoteSet[local.RemoteKey()]; ok {
			continue
		}
		if err := e.store.Delete(ctx, local.Key()); err != nil {
			errs = append(errs, err)
			continue
		}
		e.bus.ItemDeleted(local)
	}

	for _, r := range remoteRecs {
		if r.RemoteKey() == "" {
			e.logger.Warn(ctx, "backend record without id, skipping")
			continue
		}
		local, ok, err := e.store.GetByRemoteID(ctx, r.RemoteKey())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			fresh := r.WithID(e.newID()).WithStatus(models.StatusBackend)
			if _, err := e.store.Save(ctx, fresh); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		// Last write wins at record granularity. Only a strictly newer
		// remote timestamp overwrites; local queued edits survive ties.
		if !r.ModifiedAt().After(local.ModifiedAt()) {
			continue
		}
		merged := r.WithID(local.Key()).WithStatus(models.StatusBackend)
		if _, err := e.store.Save(ctx, merged); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	e.logger.Info(ctx, "pull finished", "remote", len(remoteRecs))
	e.bus.ReloadedAll()
	return nil
}

// cleanup drops records left in a terminal or stale state after a full
// cycle. Synced records return on the next pull as backend copies,
// failed ones stay visible through the sync log.
func (e *Engine[T]) cleanup(ctx context.Context) error {
	var errs []error
	for _, status := range []models.SyncStatus{models.StatusSynced, models.StatusFailed, models.StatusInProgress} {
		recs, err := e.store.GetByStatus(ctx, status)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, rec := range recs {
			if err := e.store.Delete(ctx, rec.Key()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Retry re-queues a failed record. The intended action is re-derived
// from the record and its last log entry instead of trusting the caller:
// no remote id means the create never happened, a logged delete intent
// stays a delete, anything else is an update.
func (e *Engine[T]) Retry(ctx context.Context, id string) error {
	rec, ok, err := e.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %s not found", e.kind, id)
	}
	if rec.Status() != models.StatusFailed {
		return fmt.Errorf("%s %s is %q, only failed records can be retried", e.kind, id, rec.Status())
	}

	next := models.StatusUpdated
	if rec.RemoteKey() == "" {
		next = models.StatusPending
	} else if entry, ok, err := e.log.LastForEntity(ctx, id); err != nil {
		return err
	} else if ok && entry.Action == synclog.ActionDelete {
		next = models.StatusDeleted
	}

	if _, err := e.transition(ctx, rec, next); err != nil {
		return err
	}
	e.logger.Info(ctx, "record re-queued", "id", id, "as", next)
	return e.Push(ctx)
}

// RecoverStale demotes records stuck in-progress from a previous session
// to failed. No engine can legitimately have records in flight at cold
// start, so anything found here crashed mid-batch.
func (e *Engine[T]) RecoverStale(ctx context.Context) error {
	stale, err := e.store.GetByStatus(ctx, models.StatusInProgress)
	if err != nil {
		return err
	}
	var errs []error
	for _, rec := range stale {
		if _, err := e.transition(ctx, rec, models.StatusFailed); err != nil {
			errs = append(errs, err)
			continue
		}
		e.logger.Warn(ctx, "recovered stale in-progress record", "id", rec.Key())
	}
	return errors.Join(errs...)
}

// transition moves a record along a lifecycle edge and persists it.
// An illegal edge is a programming error and fails loudly.
func (e *Engine[T]) transition(ctx context.Context, rec T, next models.SyncStatus) (T, error) {
	if err := rec.Status().TransitionTo(next); err != nil {
		return rec, err
	}
	return e.store.Save(ctx, rec.WithStatus(next))
}

func (e *Engine[T]) appendLog(ctx context.Context, rec T, action synclog.Action, final models.SyncStatus) {
	snapshot, err := json.Marshal(rec)
	if err != nil {
		snapshot = nil
	}
	entry := synclog.Entry{
		LogID:       e.newID(),
		Entity:      e.kind,
		EntityID:    rec.Key(),
		Action:      action,
		FinalStatus: final,
		CreatedAt:   e.now(),
		Snapshot:    snapshot,
	}
	if err := e.log.Append(ctx, entry); err != nil {
		e.logger.Error(ctx, "failed to append sync log entry", "id", rec.Key(), "error", err)
	}
}
