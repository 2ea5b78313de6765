package service

import (
	"sync"
	"time"
)

// NoticeKind category of a user-facing notice
type NoticeKind string

const (
	NoticeLoadFallback     NoticeKind = "load_fallback"      // remote read failed, local data in use
	NoticeRemoteSaveFailed NoticeKind = "remote_save_failed" // local save succeeded, remote did not
	NoticeSanitized        NoticeKind = "sanitized"          // loaded document needed repairs
)

// Notice one-time message for the user; failures that do not fail the operation end up here
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Detail  string     `json:"detail,omitempty"`
	At      time.Time  `json:"at"`
}

// noticeBox keeps at most one pending notice per kind until drained
type noticeBox struct {
	mu      sync.Mutex
	pending []Notice
	hook    func(Notice)
}

func (b *noticeBox) raise(n Notice) {
	b.mu.Lock()
	for _, p := range b.pending {
		if p.Kind == n.Kind {
			b.mu.Unlock()
			return
		}
	}
	b.pending = append(b.pending, n)
	hook := b.hook
	b.mu.Unlock()

	if hook != nil {
		hook(n)
	}
}

func (b *noticeBox) drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

// Notices returns and clears the pending notices, oldest first
func (e *Engine) Notices() []Notice {
	return e.notices.drain()
}
