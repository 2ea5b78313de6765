package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"GolfSync/internal/errs"
	"GolfSync/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// memCache in-memory LocalCache with failure injection
type memCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	getErr  error
	putErr  error
	putKeys []string
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memCache) Put(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.putKeys = append(c.putKeys, key)
	c.values[key] = append([]byte(nil), value...)
	return nil
}

func (c *memCache) setPutErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putErr = err
}

func (c *memCache) puts(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, k := range c.putKeys {
		if k == key {
			n++
		}
	}
	return n
}

// document parses the cached aggregate
func (c *memCache) document(t *testing.T) *model.Aggregate {
	t.Helper()
	c.mu.Lock()
	raw, ok := c.values[model.CacheKeyData]
	c.mu.Unlock()
	require.True(t, ok, "nothing cached under %s", model.CacheKeyData)
	doc, err := model.ParseDocument(raw)
	require.NoError(t, err)
	return doc
}

// fakeRemote in-memory RemoteStore holding the raw document bytes
type fakeRemote struct {
	mu         sync.Mutex
	token      string
	content    []byte // nil: document has never been written
	readErr    error
	replaceErr error
	reads      int
	replaces   int
	gate       chan struct{} // when set, Replace waits for it to be closed
	readGate   chan struct{} // when set, Read waits for it to be closed
	validToken string
}

func (r *fakeRemote) GetName() string { return "fake" }

func (r *fakeRemote) SetToken(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
}

func (r *fakeRemote) HasToken() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token != ""
}

func (r *fakeRemote) Read(context.Context) (*model.Aggregate, error) {
	r.mu.Lock()
	gate := r.readGate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.token == "" {
		return nil, &errs.AuthError{Reason: "GitHub token is not set"}
	}
	if r.readErr != nil {
		return nil, r.readErr
	}
	if r.content == nil {
		return model.NewDocument(time.Now()), nil
	}
	doc, err := model.ParseDocument(r.content)
	if err != nil {
		return nil, &errs.CorruptDataError{Reason: "document is not valid JSON", Err: err}
	}
	return doc, nil
}

func (r *fakeRemote) Replace(_ context.Context, doc *model.Aggregate) error {
	r.mu.Lock()
	gate := r.gate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}

	data, err := doc.MarshalDocument()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaces++
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.content = data
	return nil
}

func (r *fakeRemote) ValidateToken(context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token != "" && r.token == r.validToken
}

func (r *fakeRemote) DocumentURL() string {
	if !r.HasToken() {
		return ""
	}
	return "https://gist.github.com/fake"
}

func (r *fakeRemote) setContent(raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = []byte(raw)
}

func (r *fakeRemote) document(t *testing.T) *model.Aggregate {
	t.Helper()
	r.mu.Lock()
	raw := r.content
	r.mu.Unlock()
	require.NotNil(t, raw, "remote document was never written")
	doc, err := model.ParseDocument(raw)
	require.NoError(t, err)
	return doc
}

func (r *fakeRemote) counts() (reads, replaces int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads, r.replaces
}

var errBoom = errors.New("boom")

var testNow = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestEngine engine with a fixed clock and sequential ids (id-1, id-2, ...)
func newTestEngine(cache *memCache, remote *fakeRemote, opts ...Option) *Engine {
	var (
		mu  sync.Mutex
		seq int
	)
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	}
	return NewEngine(cache, remote, testLogger(), append(base, opts...)...)
}

// loadedEngine engine after a successful load
func loadedEngine(t *testing.T, cache *memCache, remote *fakeRemote, opts ...Option) *Engine {
	t.Helper()
	e := newTestEngine(cache, remote, opts...)
	_, err := e.Load(context.Background())
	require.NoError(t, err)
	return e
}

func intPtr(v int) *int { return &v }
