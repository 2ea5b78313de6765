package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"GolfSync/internal/errs"
	"GolfSync/internal/interfaces"
	"GolfSync/internal/model"

	"github.com/sirupsen/logrus"
)

// State lifecycle of the engine
type State int

const (
	StateUnloaded State = iota // no load has completed, mutations are rejected
	StateLoading               // a load is replacing the aggregate, mutations are rejected
	StateReady                 // aggregate is live
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateLoading:
		return "loading"
	default:
		return "unloaded"
	}
}

// Source where the live aggregate came from
type Source string

const (
	SourceNone   Source = ""
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// LoadResult outcome of a completed load
type LoadResult struct {
	Source    Source               `json:"source"`
	Fallback  bool                 `json:"fallback"` // remote read failed, local cache used
	Sanitized model.SanitizeReport `json:"sanitized"`
}

// errNoChange aborts a mutation without persisting anything
var errNoChange = errors.New("no change")

// Engine owns the club aggregate: load state machine, mutations, queries and the persist protocol.
// Mutations are serialised; each one works on a clone that replaces the live aggregate only after
// the local cache accepted it. The remote copy is updated in the background.
type Engine struct {
	cache  interfaces.LocalCache
	remote interfaces.RemoteStore
	logger *logrus.Logger
	now    func() time.Time
	newID  func() string

	mu     sync.RWMutex
	state  State
	source Source
	data   *model.Aggregate

	loadMu sync.Mutex // one load at a time

	settingsMu sync.RWMutex
	password   string
	token      string // token saved through UpdateSettings/LoadSettings

	notices  *noticeBox
	inflight sync.WaitGroup
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides model.NewID
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithNoticeHook receives every notice when it is raised
func WithNoticeHook(hook func(Notice)) Option {
	return func(e *Engine) { e.notices.hook = hook }
}

// WithSitePassword default passphrase, replaced by saved settings
func WithSitePassword(password string) Option {
	return func(e *Engine) {
		if password != "" {
			e.password = password
		}
	}
}

// NewEngine creates an unloaded engine
func NewEngine(cache interfaces.LocalCache, remote interfaces.RemoteStore, logger *logrus.Logger, opts ...Option) *Engine {
	e := &Engine{
		cache:    cache,
		remote:   remote,
		logger:   logger,
		now:      time.Now,
		newID:    model.NewID,
		state:    StateUnloaded,
		data:     model.NewAggregate(),
		password: DefaultSitePassword,
		notices:  &noticeBox{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load runs the load state machine:
// no token -> local cache; token -> remote, falling back to the local cache on failure.
// Mutations are rejected until it finishes. Only a local cache failure is returned as an
// error; the previous state is restored in that case.
func (e *Engine) Load(ctx context.Context) (LoadResult, error) {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	prev := e.setState(StateLoading)
	result, err := e.load(ctx)
	if err != nil {
		e.setState(prev)
	}
	return result, err
}

func (e *Engine) load(ctx context.Context) (LoadResult, error) {
	if !e.remote.HasToken() {
		doc, err := e.readCache(ctx)
		if err != nil {
			return LoadResult{}, err
		}
		e.install(doc, SourceLocal)
		e.logger.WithField("participants", len(doc.Participants)).Info("loaded club data from local cache")
		return LoadResult{Source: SourceLocal}, nil
	}

	// 1. remote first, after writes acknowledged before this load have landed
	if err := e.Flush(ctx); err != nil {
		e.logger.WithError(err).Warn("reloading with remote writes still pending")
	}
	doc, err := e.remote.Read(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("remote load failed, using local cache")
		local, cerr := e.readCache(ctx)
		if cerr != nil {
			return LoadResult{}, cerr
		}
		e.install(local, SourceLocal)
		e.notices.raise(Notice{
			Kind:    NoticeLoadFallback,
			Message: "Failed to load data from the remote store. Using local data.",
			Detail:  err.Error(),
			At:      e.now().UTC(),
		})
		return LoadResult{Source: SourceLocal, Fallback: true}, nil
	}

	// 2. repair what other writers may have left behind
	report := doc.Sanitize()
	if report.Changed() {
		e.logger.WithFields(logrus.Fields{
			"dangling":   report.DanglingRows,
			"duplicates": report.DuplicateRows,
			"fee_resets": report.FeeResets,
		}).Warn("remote document repaired")
		e.notices.raise(Notice{
			Kind:    NoticeSanitized,
			Message: "Inconsistent attendance rows were repaired while loading.",
			Detail:  fmt.Sprintf("dangling=%d duplicates=%d fee_resets=%d", report.DanglingRows, report.DuplicateRows, report.FeeResets),
			At:      e.now().UTC(),
		})
	}

	// 3. mirror into the local cache
	if err := e.writeCache(ctx, doc); err != nil {
		e.logger.WithError(err).Error("could not mirror remote data into the local cache")
	}
	e.install(doc, SourceRemote)
	e.logger.WithField("participants", len(doc.Participants)).Info("loaded club data from remote store")
	return LoadResult{Source: SourceRemote, Sanitized: report}, nil
}

// setState returns the state it replaced
func (e *Engine) setState(state State) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.state
	e.state = state
	return prev
}

func (e *Engine) install(doc *model.Aggregate, source Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = doc
	e.source = source
	e.state = StateReady
}

// readCache returns the cached aggregate, or an empty one when nothing was cached yet
func (e *Engine) readCache(ctx context.Context) (*model.Aggregate, error) {
	raw, ok, err := e.cache.Get(ctx, model.CacheKeyData)
	if err != nil {
		return nil, fmt.Errorf("read local cache: %w", err)
	}
	if !ok {
		return model.NewAggregate(), nil
	}
	doc, err := model.ParseDocument(raw)
	if err != nil {
		return nil, &errs.CorruptDataError{Reason: "local cache holds an unreadable document", Err: err}
	}
	doc.Sanitize()
	return doc, nil
}

func (e *Engine) writeCache(ctx context.Context, doc *model.Aggregate) error {
	data, err := doc.MarshalDocument()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := e.cache.Put(ctx, model.CacheKeyData, data); err != nil {
		return fmt.Errorf("write local cache: %w", err)
	}
	return nil
}

// mutate applies fn to a clone of the live aggregate and persists it.
// fn returning an error leaves the live aggregate and the cache untouched.
func (e *Engine) mutate(ctx context.Context, fn func(doc *model.Aggregate) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return errs.ErrNotReady
	}

	next := e.data.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}

	next.EnsureSettings(e.now())
	if err := e.writeCache(ctx, next); err != nil {
		return err
	}
	e.data = next
	e.pushRemote(ctx, next)
	return nil
}

// pushRemote replaces the remote document in the background; failures become notices.
// snapshot is never mutated again: later mutations work on their own clone.
func (e *Engine) pushRemote(ctx context.Context, snapshot *model.Aggregate) {
	if !e.remote.HasToken() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := e.remote.Replace(ctx, snapshot); err != nil {
			e.logger.WithError(err).Warn("remote save failed, data kept in local cache")
			e.notices.raise(Notice{
				Kind:    NoticeRemoteSaveFailed,
				Message: "Failed to save data to the remote store. Data saved locally.",
				Detail:  err.Error(),
				At:      e.now().UTC(),
			})
			return
		}
		e.logger.Debug("remote document replaced")
	}()
}

// Flush waits for background remote writes; it never cancels them
func (e *Engine) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) Source() Source {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.source
}

// Snapshot deep copy of the live aggregate
func (e *Engine) Snapshot() *model.Aggregate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.Clone()
}

// read runs fn under the read lock
func (e *Engine) read(fn func(doc *model.Aggregate)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.data)
}
