package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rosterkeeper/internal/client/models"
	"rosterkeeper/internal/client/remote"
	"rosterkeeper/internal/client/repositories/synclog"
	"rosterkeeper/internal/client/sensor"
	"rosterkeeper/internal/logging"
)

type fakeStore struct {
	mu   stdsync.Mutex
	recs map[string]models.Group
}

func newFakeStore(recs ...models.Group) *fakeStore {
	s := &fakeStore{recs: make(map[string]models.Group)}
	for _, r := range recs {
		s.recs[r.ID] = r
	}
	return s
}

func (s *fakeStore) Save(ctx context.Context, g models.Group) (models.Group, error) {
	if err := g.Validate(); err != nil {
		return models.Group{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[g.ID] = g
	return g, nil
}

func (s *fakeStore) GetAll(ctx context.Context) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Group
	for _, g := range s.recs {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (models.Group, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.recs[id]
	return g, ok, nil
}

func (s *fakeStore) GetByStatus(ctx context.Context, status models.SyncStatus) ([]models.Group, error) {
	all, _ := s.GetAll(ctx)
	var result []models.Group
	for _, g := range all {
		if g.SyncStatus == status {
			result = append(result, g)
		}
	}
	return result, nil
}

func (s *fakeStore) GetByRemoteID(ctx context.Context, remoteID string) (models.Group, bool, error) {
	all, _ := s.GetAll(ctx)
	for _, g := range all {
		if g.RemoteID == remoteID {
			return g, true, nil
		}
	}
	return models.Group{}, false, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

type fakeGateway struct {
	mu                                             stdsync.Mutex
	createFn                                       func(models.Group) (models.Group, error)
	updateFn                                       func(models.Group) (models.Group, error)
	deleteFn                                       func(string) error
	fetchFn                                        func() ([]models.Group, error)
	createCalls, updateCalls, deleteCalls, fetches int
	nextRemote                                     int
}

func (g *fakeGateway) Create(ctx context.Context, rec models.Group) (models.Group, error) {
	g.mu.Lock()
	g.createCalls++
	fn := g.createFn
	g.nextRemote++
	remoteID := strconv.Itoa(g.nextRemote)
	g.mu.Unlock()
	if fn != nil {
		return fn(rec)
	}
	return rec.WithRemoteID(remoteID), nil
}

func (g *fakeGateway) Update(ctx context.Context, rec models.Group) (models.Group, error) {
	g.mu.Lock()
	g.updateCalls++
	fn := g.updateFn
	g.mu.Unlock()
	if fn != nil {
		return fn(rec)
	}
	return rec, nil
}

func (g *fakeGateway) Delete(ctx context.Context, remoteID string) error {
	g.mu.Lock()
	g.deleteCalls++
	fn := g.deleteFn
	g.mu.Unlock()
	if fn != nil {
		return fn(remoteID)
	}
	return nil
}

func (g *fakeGateway) FetchAll(ctx context.Context) ([]models.Group, error) {
	g.mu.Lock()
	g.fetches++
	fn := g.fetchFn
	g.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil, nil
}

type fakeLog struct {
	mu      stdsync.Mutex
	entries []synclog.Entry
}

func (l *fakeLog) Append(ctx context.Context, e synclog.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

func (l *fakeLog) LastForEntity(ctx context.Context, entityID string) (synclog.Entry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].EntityID == entityID {
			return l.entries[i], true, nil
		}
	}
	return synclog.Entry{}, false, nil
}

func (l *fakeLog) all() []synclog.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]synclog.Entry(nil), l.entries...)
}

type eventRecorder struct {
	mu     stdsync.Mutex
	events []sensor.Event
}

func (r *eventRecorder) watch(bus *sensor.Sensor[models.Group]) {
	for _, ev := range []sensor.Event{sensor.ItemSynced, sensor.ItemFailed, sensor.ItemDeleted,
		sensor.SyncStarted, sensor.SyncSuccess, sensor.SyncFailure, sensor.Reloaded} {
		bus.On(ev, func(p sensor.Payload[models.Group]) {
			r.mu.Lock()
			r.events = append(r.events, p.Event)
			r.mu.Unlock()
		})
	}
}

func (r *eventRecorder) count(ev sensor.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == ev {
			n++
		}
	}
	return n
}

func okToken(ctx context.Context) (string, error) { return "token", nil }
func noToken(ctx context.Context) (string, error) { return "", nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type testHarness struct {
	engine *Engine[models.Group]
	store  *fakeStore
	gw     *fakeGateway
	log    *fakeLog
	bus    *sensor.Sensor[models.Group]
	events *eventRecorder
}

func newHarness(token TokenFunc, recs ...models.Group) *testHarness {
	h := &testHarness{
		store:  newFakeStore(recs...),
		gw:     &fakeGateway{},
		log:    &fakeLog{},
		bus:    sensor.New[models.Group](),
		events: &eventRecorder{},
	}
	h.events.watch(h.bus)
	h.engine = NewEngine("group", h.store, h.gw, h.log, token, h.bus, testLogger())
	return h
}

func pendingGroup(id string) models.Group {
	return models.Group{ID: id, Name: "Group " + id, SyncStatus: models.StatusPending,
		LastModifiedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
}

func notFoundErr() error {
	return &remote.StatusError{Code: http.StatusNotFound, Message: "gone"}
}

func TestEngine_PushEmptyQueueIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(okToken)

	require.NoError(t, h.engine.Push(ctx))
	require.NoError(t, h.engine.Push(ctx))

	assert.Zero(t, h.gw.createCalls+h.gw.updateCalls+h.gw.deleteCalls)
	assert.Equal(t, 2, h.events.count(sensor.SyncSuccess))
	assert.Zero(t, h.events.count(sensor.SyncStarted))
}

func TestEngine_PushMissingCredentialsAbortsBatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(noToken, pendingGroup("a1"), pendingGroup("a2"))

	err := h.engine.Push(ctx)
	require.ErrorIs(t, err, ErrNoCredentials)

	// nothing was marked in-progress and no network call happened
	assert.Zero(t, h.gw.createCalls)
	for _, id := range []string{"a1", "a2"} {
		g, ok, _ := h.store.GetByID(ctx, id)
		require.True(t, ok)
		assert.Equal(t, models.StatusPending, g.SyncStatus)
	}
	assert.Equal(t, 1, h.events.count(sensor.SyncFailure))
}

func TestEngine_PushCreatesPendingRecord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(okToken, pendingGroup("a1"))

	require.NoError(t, h.engine.Push(ctx))

	g, ok, _ := h.store.GetByID(ctx, "a1")
	require.True(t, ok)
	assert.Equal(t, models.StatusSynced, g.SyncStatus)
	assert.Equal(t, "1", g.RemoteID)

	entries := h.log.all()
	require.Len(t, entries, 1)
	assert.Equal(t, synclog.ActionAdd, entries[0].Action)
	assert.Equal(t, models.StatusSynced, entries[0].FinalStatus)
	assert.Equal(t, 1, h.events.count(sensor.ItemSynced))
}

func TestEngine_PushPerRecordIsolation(t *testing.T) {
	ctx := context.Background()
	bad := pendingGroup("a2")
	bad.RemoteID = "9"
	bad.SyncStatus = models.StatusUpdated
	h := newHarness(okToken, pendingGroup("a1"), bad, pendingGroup("a3"))

	h.gw.updateFn = func(models.Group) (models.Group, error) {
		return models.Group{}, errors.New("connection refused")
	}

	err := h.engine.Push(ctx)
	require.Error(t, err)

	// healthy records still reached their terminal state
	for _, id := range []string{"a1", "a3"} {
		g, ok, _ := h.store.GetByID(ctx, id)
		require.True(t, ok)
		assert.Equal(t, models.StatusSynced, g.SyncStatus, id)
	}
	g, ok, _ := h.store.GetByID(ctx, "a2")
	require.True(t, ok)
	assert.Equal(t, models.StatusFailed, g.SyncStatus)

	assert.Equal(t, 2, h.events.count(sensor.ItemSynced))
	assert.Equal(t, 1, h.events.count(sensor.ItemFailed))
	assert.Equal(t, 1, h.events.count(sensor.SyncFailure))
}

func TestEngine_PushDemotesUpdatedWithoutRemoteID(t *testing.T) {
	ctx := context.Background()
	g := pendingGroup("a1")
	g.SyncStatus = models.StatusUpdated
	h := newHarness(okToken, g)

	require.NoError(t, h.engine.Push(ctx))

	got, ok, _ := h.store.GetByID(ctx, "a1")
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, got.SyncStatus)
	assert.Zero(t, h.gw.createCalls+h.gw.updateCalls)
}

func TestEngine_PushDeleteWithoutRemoteIDIsLocalOnly(t *testing.T) {
	ctx := context.Background()
	g := pendingGroup("a1")
	g.SyncStatus = models.StatusDeleted
	h := newHarness(okToken, g)

	require.NoError(t, h.engine.Push(ctx))

	_, ok, _ := h.store.GetByID(ctx, "a1")
	assert.False(t, ok)
	assert.Zero(t, h.gw.deleteCalls)

	entries := h.log.all()
	require.Len(t, entries, 1)
	assert.Equal(t, synclog.ActionDelete, entries[0].Action)
	assert.Equal(t, models.StatusSynced, entries[0].FinalStatus)
	assert.Equal(t, 1, h.events.count(sensor.ItemDeleted))
}

func TestEngine_PushNotFoundIsSuccessByDivergence(t *testing.T) {
	ctx := context.Background()
	g := pendingGroup("a1")
	g.RemoteID = "9"
	g.SyncStatus = models.StatusUpdated
	h := newHarness(okToken, g)

	h.gw.updateFn = func(models.Group) (models.Group, error) {
		return models.Group{}, notFoundErr()
	}

	require.NoError(t, h.engine.Push(ctx), "a 404 is not a batch failure")

	_, ok, _ := h.store.GetByID(ctx, "a1")
	assert.False(t, ok, "diverged record is removed locally")

	entries := h.log.all()
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusSynced, entries[0].FinalStatus, "divergence logs as synced, not failed")
	assert.Equal(t, 1, h.events.count(sensor.SyncSuccess))
}

func TestEngine_PullInsertsUnknownRemoteAsBackend(t *testing.T) {
	ctx := context.Background()
	h := newHarness(okToken)
	h.gw.fetchFn = func() ([]models.Group, error) {
		return []models.Group{
			{RemoteID: "1", Name: "Kitchen", LastModifiedAt: time.Now().UTC()},
		}, nil
	}

	require.NoError(t, h.engine.Pull(ctx))

	all, _ := h.store.GetAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusBackend, all[0].SyncStatus)
	assert.Equal(t, "1", all[0].RemoteID)
	assert.NotEmpty(t, all[0].ID, "pulled record gets a local id")
	assert.Equal(t, 1, h.events.count(sensor.Reloaded))
}

func TestEngine_PullDeletesConfirmedLocalMissingRemotely(t *testing.T) {
	ctx := context.Background()
	confirmed := pendingGroup("b1")
	confirmed.RemoteID = "9"
	confirmed.SyncStatus = models.StatusSynced
	queued := pendingGroup("b2")
	h := newHarness(okToken, confirmed, queued)

	require.NoError(t, h.engine.Pull(ctx))

	_, ok, _ := h.store.GetByID(ctx, "b1")
	assert.False(t, ok, "backend deletion propagates down")

	_, ok, _ = h.store.GetByID(ctx, "b2")
	assert.True(t, ok, "unconfirmed local records are never dropped by a pull")
}

func TestEngine_PullLastWriteWins(t *testing.T) {
	ctx := context.Background()
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	local := pendingGroup("c1")
	local.RemoteID = "5"
	local.SyncStatus = models.StatusBackend
	local.Name = "Local name"
	local.LastModifiedAt = t1

	tests := []struct {
		name       string
		remoteTime time.Time
		wantName   string
	}{
		{"remote strictly newer wins", t1.Add(time.Minute), "Remote name"},
		{"equal timestamps leave local untouched", t1, "Local name"},
		{"older remote leaves local untouched", t1.Add(-time.Minute), "Local name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(okToken, local)
			h.gw.fetchFn = func() ([]models.Group, error) {
				return []models.Group{
					{RemoteID: "5", Name: "Remote name", LastModifiedAt: tt.remoteTime},
				}, nil
			}

			require.NoError(t, h.engine.Pull(ctx))

			got, ok, _ := h.store.GetByID(ctx, "c1")
			require.True(t, ok, "local id survives an overwrite")
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestEngine_CycleIsNotReentrant(t *testing.T) {
	ctx := context.Background()
	h := newHarness(okToken, pendingGroup("a1"))

	entered := make(chan struct{})
	release := make(chan struct{})
	h.gw.fetchFn = func() ([]models.Group, error) {
		close(entered)
		<-release
		return nil, nil
	}

	done := make(chan error, 1)
	go func() { done <- h.engine.Cycle(ctx) }()
	<-entered

	assert.True(t, h.engine.InFlight())
	require.NoError(t, h.engine.Push(ctx), "second trigger during a batch is a no-op")
	assert.Zero(t, h.gw.createCalls, "no-op trigger performs no network calls")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.gw.createCalls, "original batch still pushed its record")
}

func TestEngine_CycleCleansUpTerminalRecords(t *testing.T) {
	ctx := context.Background()
	failed := pendingGroup("f1")
	failed.SyncStatus = models.StatusFailed
	h := newHarness(okToken, pendingGroup("a1"), failed)

	require.NoError(t, h.engine.Cycle(ctx))

	// a1 was created and confirmed, then cleaned up with the failed
	// leftover; both return via the next pull if still remote
	all, _ := h.store.GetAll(ctx)
	assert.Empty(t, all)
	assert.Equal(t, 1, h.gw.createCalls)
}

func TestEngine_RecoverStale(t *testing.T) {
	ctx := context.Background()
	stuck := pendingGroup("s1")
	stuck.SyncStatus = models.StatusInProgress
	h := newHarness(okToken, stuck)

	require.NoError(t, h.engine.RecoverStale(ctx))

	g, ok, _ := h.store.GetByID(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, models.StatusFailed, g.SyncStatus)
}

func TestEngine_RetryRederivesIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("no remote id retries as create", func(t *testing.T) {
		g := pendingGroup("r1")
		g.SyncStatus = models.StatusFailed
		h := newHarness(okToken, g)

		require.NoError(t, h.engine.Retry(ctx, "r1"))

		got, ok, _ := h.store.GetByID(ctx, "r1")
		require.True(t, ok)
		assert.Equal(t, models.StatusSynced, got.SyncStatus)
		assert.Equal(t, 1, h.gw.createCalls)
	})

	t.Run("logged delete intent retries as delete", func(t *testing.T) {
		g := pendingGroup("r2")
		g.RemoteID = "7"
		g.SyncStatus = models.StatusFailed
		h := newHarness(okToken, g)
		require.NoError(t, h.log.Append(ctx, synclog.Entry{
			LogID: "l1", Entity: "group", EntityID: "r2",
			Action: synclog.ActionDelete, FinalStatus: models.StatusFailed,
		}))

		require.NoError(t, h.engine.Retry(ctx, "r2"))

		_, ok, _ := h.store.GetByID(ctx, "r2")
		assert.False(t, ok)
		assert.Equal(t, 1, h.gw.deleteCalls)
	})

	t.Run("remote id without delete intent retries as update", func(t *testing.T) {
		g := pendingGroup("r3")
		g.RemoteID = "7"
		g.SyncStatus = models.StatusFailed
		h := newHarness(okToken, g)

		require.NoError(t, h.engine.Retry(ctx, "r3"))

		got, ok, _ := h.store.GetByID(ctx, "r3")
		require.True(t, ok)
		assert.Equal(t, models.StatusSynced, got.SyncStatus)
		assert.Equal(t, 1, h.gw.updateCalls)
	})

	t.Run("only failed records can be retried", func(t *testing.T) {
		h := newHarness(okToken, pendingGroup("r4"))
		assert.Error(t, h.engine.Retry(ctx, "r4"))
		assert.Error(t, h.engine.Retry(ctx, "missing"))
	})
}

func TestEngine_ScenarioOfflineCreateThenPullHasNoDuplicate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(okToken, pendingGroup("a1"))
	h.gw.createFn = func(g models.Group) (models.Group, error) {
		return g.WithRemoteID("42"), nil
	}

	// backend comes within reach, queued create goes up
	require.NoError(t, h.engine.Push(ctx))

	g, ok, _ := h.store.GetByID(ctx, "a1")
	require.True(t, ok)
	assert.Equal(t, "42", g.RemoteID)
	assert.Equal(t, models.StatusSynced, g.SyncStatus)

	// a later pull sees the same record remotely and matches by remote id
	h.gw.fetchFn = func() ([]models.Group, error) {
		return []models.Group{
			{RemoteID: "42", Name: g.Name, LastModifiedAt: g.LastModifiedAt},
		}, nil
	}
	require.NoError(t, h.engine.Pull(ctx))

	all, _ := h.store.GetAll(ctx)
	assert.Len(t, all, 1, "pull must not duplicate a record it already knows")
}

func TestEngine_ScenarioOfflineDeleteThenPush(t *testing.T) {
	ctx := context.Background()
	g := pendingGroup("b2")
	g.RemoteID = "7"
	g.SyncStatus = models.StatusDeleted
	h := newHarness(okToken, g)

	var deletedRemote string
	h.gw.deleteFn = func(remoteID string) error {
		deletedRemote = remoteID
		return nil
	}

	require.NoError(t, h.engine.Push(ctx))

	assert.Equal(t, "7", deletedRemote)
	all, _ := h.store.GetAll(ctx)
	assert.Empty(t, all)
}
