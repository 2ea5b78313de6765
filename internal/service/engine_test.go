package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"GolfSync/internal/errs"
	"GolfSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationsBeforeLoad_NotReady(t *testing.T) {
	cache := newMemCache()
	e := newTestEngine(cache, &fakeRemote{})
	ctx := context.Background()

	assert.Equal(t, StateUnloaded, e.State())
	_, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	assert.ErrorIs(t, err, errs.ErrNotReady)
	_, err = e.AddCompetition(ctx, "Spring Open", "2025-04-01")
	assert.ErrorIs(t, err, errs.ErrNotReady)
	assert.ErrorIs(t, e.RemoveAttendance(ctx, "p", "c"), errs.ErrNotReady)
	assert.Zero(t, cache.puts(model.CacheKeyData))
}

func TestLoad_NoTokenUsesLocalCache(t *testing.T) {
	cache := newMemCache()
	seed := model.NewAggregate()
	seed.Participants = append(seed.Participants, model.Participant{ID: "p1", Name: "Taro", Email: "t@example.com"})
	raw, err := seed.MarshalDocument()
	require.NoError(t, err)
	require.NoError(t, cache.Put(context.Background(), model.CacheKeyData, raw))

	remote := &fakeRemote{}
	e := newTestEngine(cache, remote)
	result, err := e.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceLocal, result.Source)
	assert.False(t, result.Fallback)
	assert.Equal(t, StateReady, e.State())
	assert.Len(t, e.Participants(), 1)
	reads, _ := remote.counts()
	assert.Zero(t, reads)
}

func TestLoad_EmptyCacheStartsEmpty(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	assert.Empty(t, e.Participants())
	assert.Empty(t, e.Competitions())
	assert.Equal(t, SourceLocal, e.Source())
}

func TestLoad_RemoteOverwritesCache(t *testing.T) {
	cache := newMemCache()
	require.NoError(t, cache.Put(context.Background(), model.CacheKeyData, []byte(`{"participants":[{"id":"old","name":"Old","email":"o@example.com"}]}`)))
	remote := &fakeRemote{token: "t"}
	remote.setContent(`{"participants":[{"id":"p1","name":"Taro","email":"t@example.com","createdAt":"2025-03-01T00:00:00Z"}],"competitions":[],"attendance":[],"settings":{"version":"1.0","createdAt":"2025-03-01T00:00:00Z"}}`)

	e := newTestEngine(cache, remote)
	result, err := e.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceRemote, result.Source)
	require.Len(t, e.Participants(), 1)
	assert.Equal(t, "p1", e.Participants()[0].ID)
	cached := cache.document(t)
	require.Len(t, cached.Participants, 1)
	assert.Equal(t, "p1", cached.Participants[0].ID)
	assert.Empty(t, e.Notices())
}

func TestLoad_RemoteFailureFallsBack(t *testing.T) {
	cache := newMemCache()
	require.NoError(t, cache.Put(context.Background(), model.CacheKeyData, []byte(`{"participants":[{"id":"p1","name":"Taro","email":"t@example.com"}]}`)))
	remote := &fakeRemote{token: "t", readErr: &errs.RemoteError{StatusCode: 500, Message: "Internal Server Error"}}

	e := newTestEngine(cache, remote)
	result, err := e.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.Equal(t, SourceLocal, result.Source)
	assert.Equal(t, StateReady, e.State())
	assert.Len(t, e.Participants(), 1)

	notices := e.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeLoadFallback, notices[0].Kind)
	assert.Contains(t, notices[0].Detail, "500")
}

func TestLoad_MalformedRemoteJSONFallsBack(t *testing.T) {
	cache := newMemCache()
	require.NoError(t, cache.Put(context.Background(), model.CacheKeyData, []byte(`{"competitions":[{"id":"c1","title":"Spring Open","date":"2025-04-01"}]}`)))
	remote := &fakeRemote{token: "t"}
	remote.setContent(`{"participants": [`)

	e := newTestEngine(cache, remote)
	result, err := e.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	require.Len(t, e.Competitions(), 1)
	assert.Equal(t, "c1", e.Competitions()[0].ID)
}

func TestLoad_CacheFailureIsFatal(t *testing.T) {
	cache := newMemCache()
	cache.getErr = errBoom
	e := newTestEngine(cache, &fakeRemote{})

	_, err := e.Load(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateUnloaded, e.State())
}

func TestLoad_UnreadableCacheIsCorrupt(t *testing.T) {
	cache := newMemCache()
	require.NoError(t, cache.Put(context.Background(), model.CacheKeyData, []byte(`not json`)))
	e := newTestEngine(cache, &fakeRemote{})

	_, err := e.Load(context.Background())
	assert.True(t, errs.IsCorrupt(err))
}

func TestLoad_SanitizesRemoteDocument(t *testing.T) {
	remote := &fakeRemote{token: "t"}
	remote.setContent(`{
		"participants":[{"id":"p1","name":"Taro","email":"t@example.com"}],
		"competitions":[{"id":"c1","title":"Spring Open","date":"2025-04-01"}],
		"attendance":[
			{"participantId":"p1","competitionId":"c1","status":"absent","fee":500},
			{"participantId":"ghost","competitionId":"c1","status":"present","fee":100}
		]}`)

	var hooked []Notice
	e := loadedEngine(t, newMemCache(), remote, WithNoticeHook(func(n Notice) { hooked = append(hooked, n) }))

	assert.Equal(t, model.Attendance{ParticipantID: "p1", CompetitionID: "c1", Status: model.StatusAbsent}, e.Attendance("p1", "c1"))
	assert.Len(t, e.Snapshot().Attendance, 1)

	require.Len(t, hooked, 1)
	assert.Equal(t, NoticeSanitized, hooked[0].Kind)
}

func TestAddParticipant(t *testing.T) {
	cache := newMemCache()
	e := loadedEngine(t, cache, &fakeRemote{})

	p, err := e.AddParticipant(context.Background(), "Taro", "t@example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, []model.Participant{p}, e.Participants())
	got, err := e.Participant(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// first save stamps the document settings
	doc := cache.document(t)
	require.NotNil(t, doc.Settings)
	assert.Equal(t, model.DocumentVersion, doc.Settings.Version)
	assert.Equal(t, testNow, doc.Settings.CreatedAt)
}

func TestAddParticipant_Validation(t *testing.T) {
	cache := newMemCache()
	e := loadedEngine(t, cache, &fakeRemote{})

	_, err := e.AddParticipant(context.Background(), "   ", "t@example.com")
	assert.True(t, errs.IsValidation(err))
	assert.Empty(t, e.Participants())
	assert.Zero(t, cache.puts(model.CacheKeyData))
}

func TestUpdateAndDeleteParticipant(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	ctx := context.Background()

	p, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	require.NoError(t, err)

	updated, err := e.UpdateParticipant(ctx, p.ID, "Taro Yamada", "ty@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Taro Yamada", updated.Name)

	_, err = e.UpdateParticipant(ctx, "missing", "x", "y")
	assert.True(t, errs.IsNotFound(err))
	_, err = e.UpdateParticipant(ctx, p.ID, "", "y")
	assert.True(t, errs.IsValidation(err))
	still, err := e.Participant(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Taro Yamada", still.Name)

	require.NoError(t, e.DeleteParticipant(ctx, p.ID))
	assert.True(t, errs.IsNotFound(e.DeleteParticipant(ctx, p.ID)))
	_, err = e.Participant(p.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestUpdateAndDeleteCompetition(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	ctx := context.Background()

	c, err := e.AddCompetition(ctx, "Spring Open", "2025-04-01")
	require.NoError(t, err)

	updated, err := e.UpdateCompetition(ctx, c.ID, "Spring Open", "2025-04-08")
	require.NoError(t, err)
	assert.Equal(t, model.Date("2025-04-08"), updated.Date)

	_, err = e.UpdateCompetition(ctx, c.ID, "Spring Open", "next week")
	assert.True(t, errs.IsValidation(err))
	_, err = e.UpdateCompetition(ctx, "missing", "x", "2025-04-08")
	assert.True(t, errs.IsNotFound(err))

	require.NoError(t, e.DeleteCompetition(ctx, c.ID))
	assert.True(t, errs.IsNotFound(e.DeleteCompetition(ctx, c.ID)))
	assert.Empty(t, e.Competitions())
}

func TestAttendanceLifecycle(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	ctx := context.Background()

	p, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	require.NoError(t, err)
	c, err := e.AddCompetition(ctx, "Spring Open", "2025-04-01")
	require.NoError(t, err)

	_, err = e.SetAttendance(ctx, p.ID, c.ID, model.StatusPresent, intPtr(3000))
	require.NoError(t, err)
	report, err := e.CompetitionReport(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PresentCount)
	assert.Equal(t, 3000, report.TotalFee)

	row, err := e.SetAttendance(ctx, p.ID, c.ID, model.StatusAbsent, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, row.Fee)
	assert.Equal(t, model.StatusAbsent, e.Attendance(p.ID, c.ID).Status)

	// back to present: the fee was reset and stays 0 until set again
	row, err = e.SetAttendance(ctx, p.ID, c.ID, model.StatusPresent, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, row.Fee)
	_, err = e.SetAttendance(ctx, p.ID, c.ID, model.StatusPresent, intPtr(3000))
	require.NoError(t, err)

	// deleting the competition drops its rows
	require.NoError(t, e.DeleteCompetition(ctx, c.ID))
	assert.Empty(t, e.Snapshot().Attendance)
	pr, err := e.ParticipantReport(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pr.PresentCount)
	assert.Equal(t, 0, pr.TotalFee)
}

func TestSetAttendance_KeepsFeeWhenOmitted(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	ctx := context.Background()
	p, _ := e.AddParticipant(ctx, "Taro", "t@example.com")
	c, _ := e.AddCompetition(ctx, "Spring Open", "2025-04-01")

	_, err := e.SetAttendance(ctx, p.ID, c.ID, model.StatusPresent, intPtr(2500))
	require.NoError(t, err)
	row, err := e.SetAttendance(ctx, p.ID, c.ID, model.StatusPresent, nil)
	require.NoError(t, err)
	assert.Equal(t, 2500, row.Fee)
}

func TestSetAttendance_Errors(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	ctx := context.Background()
	p, _ := e.AddParticipant(ctx, "Taro", "t@example.com")
	c, _ := e.AddCompetition(ctx, "Spring Open", "2025-04-01")

	_, err := e.SetAttendance(ctx, "ghost", c.ID, model.StatusPresent, nil)
	assert.True(t, errs.IsNotFound(err))
	_, err = e.SetAttendance(ctx, p.ID, "ghost", model.StatusPresent, nil)
	assert.True(t, errs.IsNotFound(err))
	_, err = e.SetAttendance(ctx, p.ID, c.ID, model.AttendanceStatus("maybe"), nil)
	assert.True(t, errs.IsValidation(err))
	_, err = e.SetAttendance(ctx, p.ID, c.ID, model.StatusPresent, intPtr(-1))
	assert.True(t, errs.IsValidation(err))
	assert.Empty(t, e.Snapshot().Attendance)
}

func TestSetAttendanceFee(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	ctx := context.Background()
	p, _ := e.AddParticipant(ctx, "Taro", "t@example.com")
	c, _ := e.AddCompetition(ctx, "Spring Open", "2025-04-01")

	_, err := e.SetAttendanceFee(ctx, p.ID, c.ID, 1000)
	assert.True(t, errs.IsValidation(err), "no row yet")

	_, err = e.SetAttendance(ctx, p.ID, c.ID, model.StatusAbsent, nil)
	require.NoError(t, err)
	_, err = e.SetAttendanceFee(ctx, p.ID, c.ID, 1000)
	assert.True(t, errs.IsValidation(err), "absent rows carry no fee")

	_, err = e.SetAttendance(ctx, p.ID, c.ID, model.StatusPresent, nil)
	require.NoError(t, err)
	row, err := e.SetAttendanceFee(ctx, p.ID, c.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, row.Fee)
	assert.Equal(t, model.StatusPresent, row.Status)

	_, err = e.SetAttendanceFee(ctx, p.ID, c.ID, -1)
	assert.True(t, errs.IsValidation(err))
}

func TestRemoveAttendance_Idempotent(t *testing.T) {
	cache := newMemCache()
	e := loadedEngine(t, cache, &fakeRemote{})
	ctx := context.Background()
	p, _ := e.AddParticipant(ctx, "Taro", "t@example.com")
	c, _ := e.AddCompetition(ctx, "Spring Open", "2025-04-01")
	_, err := e.SetAttendance(ctx, p.ID, c.ID, model.StatusPresent, intPtr(3000))
	require.NoError(t, err)

	require.NoError(t, e.RemoveAttendance(ctx, p.ID, c.ID))
	assert.Equal(t, model.PendingAttendance(p.ID, c.ID), e.Attendance(p.ID, c.ID))

	before := cache.puts(model.CacheKeyData)
	require.NoError(t, e.RemoveAttendance(ctx, p.ID, c.ID))
	assert.Equal(t, before, cache.puts(model.CacheKeyData), "nothing to persist")
}

func TestAttendanceViews(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	ctx := context.Background()
	p1, _ := e.AddParticipant(ctx, "Taro", "t@example.com")
	p2, _ := e.AddParticipant(ctx, "Hanako", "h@example.com")
	c, _ := e.AddCompetition(ctx, "Spring Open", "2025-04-01")
	_, err := e.SetAttendance(ctx, p2.ID, c.ID, model.StatusAbsent, nil)
	require.NoError(t, err)

	rows, err := e.AttendanceByCompetition(c.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Attendance{
		model.PendingAttendance(p1.ID, c.ID),
		{ParticipantID: p2.ID, CompetitionID: c.ID, Status: model.StatusAbsent},
	}, rows)

	rows, err = e.AttendanceByParticipant(p1.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Attendance{model.PendingAttendance(p1.ID, c.ID)}, rows)

	_, err = e.AttendanceByCompetition("ghost")
	assert.True(t, errs.IsNotFound(err))
	_, err = e.AttendanceByParticipant("ghost")
	assert.True(t, errs.IsNotFound(err))
	_, err = e.ParticipantReport("ghost")
	assert.True(t, errs.IsNotFound(err))
	_, err = e.CompetitionReport("ghost")
	assert.True(t, errs.IsNotFound(err))
}

// cascade deletes and one row per pair over a sequence of mutations
func TestCascadeAndUniqueness(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	ctx := context.Background()

	var participants, competitions []string
	for i := 0; i < 3; i++ {
		p, err := e.AddParticipant(ctx, fmt.Sprintf("P%d", i), fmt.Sprintf("p%d@example.com", i))
		require.NoError(t, err)
		participants = append(participants, p.ID)
		c, err := e.AddCompetition(ctx, fmt.Sprintf("C%d", i), "2025-05-01")
		require.NoError(t, err)
		competitions = append(competitions, c.ID)
	}
	statuses := []model.AttendanceStatus{model.StatusPresent, model.StatusAbsent, model.StatusPending}
	for round := 0; round < 3; round++ {
		for i, pid := range participants {
			for j, cid := range competitions {
				_, err := e.SetAttendance(ctx, pid, cid, statuses[(i+j+round)%3], intPtr(100*(round+1)))
				require.NoError(t, err)
			}
		}
	}

	doc := e.Snapshot()
	assert.Len(t, doc.Attendance, 9)
	for _, row := range doc.Attendance {
		if row.Status != model.StatusPresent {
			assert.Zero(t, row.Fee)
		}
	}

	require.NoError(t, e.DeleteParticipant(ctx, participants[0]))
	require.NoError(t, e.DeleteCompetition(ctx, competitions[1]))
	for _, row := range e.Snapshot().Attendance {
		assert.NotEqual(t, participants[0], row.ParticipantID)
		assert.NotEqual(t, competitions[1], row.CompetitionID)
	}
	assert.Len(t, e.Snapshot().Attendance, 4)
}

// the local cache reflects every mutation even when the remote write fails
func TestLocalDurability_RemoteSaveFails(t *testing.T) {
	cache := newMemCache()
	remote := &fakeRemote{token: "t", replaceErr: &errs.RemoteError{StatusCode: 502, Message: "Bad Gateway"}}
	e := loadedEngine(t, cache, remote)
	ctx := context.Background()

	p, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	require.NoError(t, err)
	_, err = e.AddParticipant(ctx, "Hanako", "h@example.com")
	require.NoError(t, err)
	require.NoError(t, e.Flush(ctx))

	assert.Len(t, cache.document(t).Participants, 2)
	assert.Equal(t, p.ID, cache.document(t).Participants[0].ID)

	notices := e.Notices()
	require.Len(t, notices, 1, "one notice per kind until drained")
	assert.Equal(t, NoticeRemoteSaveFailed, notices[0].Kind)
	assert.Empty(t, e.Notices())

	_, err = e.AddCompetition(ctx, "Spring Open", "2025-04-01")
	require.NoError(t, err)
	require.NoError(t, e.Flush(ctx))
	assert.Len(t, e.Notices(), 1, "raised again after draining")
}

// the cache is written before the remote write completes
func TestLocalDurability_RemotePending(t *testing.T) {
	cache := newMemCache()
	gate := make(chan struct{})
	remote := &fakeRemote{token: "t"}
	e := loadedEngine(t, cache, remote)
	remote.mu.Lock()
	remote.gate = gate
	remote.mu.Unlock()
	ctx := context.Background()

	_, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	require.NoError(t, err)
	assert.Len(t, cache.document(t).Participants, 1)
	_, replaces := remote.counts()
	assert.Zero(t, replaces)

	close(gate)
	require.NoError(t, e.Flush(ctx))
	assert.Len(t, remote.document(t).Participants, 1)
}

// startReload runs Load in the background and waits until it has taken over the aggregate
func startReload(t *testing.T, e *Engine) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		_, err := e.Load(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return e.State() == StateLoading }, time.Second, time.Millisecond)
	return done
}

func TestReload_RejectsMutationsWhileLoading(t *testing.T) {
	cache := newMemCache()
	remote := &fakeRemote{token: "t"}
	e := loadedEngine(t, cache, remote)
	ctx := context.Background()
	readGate := make(chan struct{})
	remote.mu.Lock()
	remote.readGate = readGate
	remote.mu.Unlock()

	done := startReload(t, e)
	_, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	assert.ErrorIs(t, err, errs.ErrNotReady)
	_, err = e.AddCompetition(ctx, "Spring Open", "2025-04-01")
	assert.ErrorIs(t, err, errs.ErrNotReady)
	assert.Equal(t, "loading", e.State().String())

	close(readGate)
	require.NoError(t, <-done)
	assert.Equal(t, StateReady, e.State())

	p, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	require.NoError(t, err)
	require.NoError(t, e.Flush(ctx))
	require.Len(t, e.Participants(), 1)
	assert.Equal(t, p.ID, e.Participants()[0].ID)
	assert.Len(t, cache.document(t).Participants, 1)
	assert.Len(t, remote.document(t).Participants, 1)
}

func TestReload_WaitsForPendingRemoteWrites(t *testing.T) {
	cache := newMemCache()
	remote := &fakeRemote{token: "t"}
	e := loadedEngine(t, cache, remote)
	ctx := context.Background()
	gate := make(chan struct{})
	remote.mu.Lock()
	remote.gate = gate
	remote.mu.Unlock()

	p, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	require.NoError(t, err)

	done := startReload(t, e)
	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, SourceRemote, e.Source())
	require.Len(t, e.Participants(), 1)
	assert.Equal(t, p.ID, e.Participants()[0].ID)
	require.Len(t, cache.document(t).Participants, 1)
	assert.Equal(t, p.ID, cache.document(t).Participants[0].ID)
}

func TestReload_CacheFailureKeepsPreviousData(t *testing.T) {
	cache := newMemCache()
	remote := &fakeRemote{token: "t", readErr: errBoom}
	e := loadedEngine(t, cache, remote)
	ctx := context.Background()
	_, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	require.NoError(t, err)

	cache.mu.Lock()
	cache.getErr = errBoom
	cache.mu.Unlock()
	_, err = e.Load(ctx)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateReady, e.State())
	assert.Len(t, e.Participants(), 1)
}

func TestMutation_CacheFailureLeavesNoPartialState(t *testing.T) {
	cache := newMemCache()
	remote := &fakeRemote{token: "t"}
	e := loadedEngine(t, cache, remote)
	ctx := context.Background()
	p, err := e.AddParticipant(ctx, "Taro", "t@example.com")
	require.NoError(t, err)
	require.NoError(t, e.Flush(ctx))
	_, replacesBefore := remote.counts()

	cache.setPutErr(errBoom)
	err = e.DeleteParticipant(ctx, p.ID)
	assert.ErrorIs(t, err, errBoom)

	_, err = e.Participant(p.ID)
	assert.NoError(t, err, "live aggregate unchanged")
	require.NoError(t, e.Flush(ctx))
	_, replaces := remote.counts()
	assert.Equal(t, replacesBefore, replaces, "nothing pushed remotely")
}

func TestRemoteReceivesEveryMutation(t *testing.T) {
	remote := &fakeRemote{token: "t"}
	e := loadedEngine(t, newMemCache(), remote)
	ctx := context.Background()

	p, _ := e.AddParticipant(ctx, "Taro", "t@example.com")
	c, _ := e.AddCompetition(ctx, "Spring Open", "2025-04-01")
	_, err := e.SetAttendance(ctx, p.ID, c.ID, model.StatusPresent, intPtr(3000))
	require.NoError(t, err)
	require.NoError(t, e.Flush(ctx))

	_, replaces := remote.counts()
	assert.Equal(t, 3, replaces)
	assert.Equal(t, 3000, remote.document(t).Lookup(p.ID, c.ID).Fee)
}

func TestConcurrentMutations(t *testing.T) {
	cache := newMemCache()
	e := loadedEngine(t, cache, &fakeRemote{token: "t"})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.AddParticipant(ctx, fmt.Sprintf("P%d", i), "p@example.com")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	require.NoError(t, e.Flush(ctx))

	assert.Len(t, e.Participants(), 20)
	assert.Len(t, cache.document(t).Participants, 20)
}

func TestSnapshotIsIndependent(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	_, err := e.AddParticipant(context.Background(), "Taro", "t@example.com")
	require.NoError(t, err)

	snap := e.Snapshot()
	snap.Participants[0].Name = "changed"
	assert.Equal(t, "Taro", e.Participants()[0].Name)
}

func TestExport(t *testing.T) {
	e := loadedEngine(t, newMemCache(), &fakeRemote{})
	_, err := e.AddParticipant(context.Background(), "Taro", "t@example.com")
	require.NoError(t, err)

	doc := e.Export()
	assert.Len(t, doc.Participants, 1)
	assert.Equal(t, testNow, doc.ExportDate)
	assert.Equal(t, "golf-competition-data-2025-04-02.json", doc.FileName())
}

func TestExport_FileNameMatchesExportDateAtMidnight(t *testing.T) {
	var (
		mu    sync.Mutex
		ticks int
	)
	beforeMidnight := time.Date(2025, 4, 2, 23, 59, 59, 900_000_000, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ticks++
		return beforeMidnight.Add(time.Duration(ticks) * 50 * time.Millisecond)
	}
	e := loadedEngine(t, newMemCache(), &fakeRemote{}, WithClock(clock))

	doc := e.Export()
	assert.Equal(t, model.ExportFileName(doc.ExportDate), doc.FileName())
	assert.Equal(t, "golf-competition-data-"+doc.ExportDate.Format(model.DateLayout)+".json", doc.FileName())
	// later clock readings fall on the next day but do not move the name
	assert.Equal(t, 3, clock().Day())
}
