package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"strings"

	"GolfSync/internal/model"
)

// DefaultSitePassword passphrase used until one is configured or saved
const DefaultSitePassword = "golf2025"

// LoadSettings applies the settings saved in the local cache on top of the configured defaults
func (e *Engine) LoadSettings(ctx context.Context) error {
	raw, ok, err := e.cache.Get(ctx, model.CacheKeySettings)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if !ok {
		return nil
	}
	var saved model.UserSettings
	if err := json.Unmarshal(raw, &saved); err != nil {
		e.logger.WithError(err).Warn("ignoring unreadable saved settings")
		return nil
	}

	e.settingsMu.Lock()
	if saved.SitePassword != "" {
		e.password = saved.SitePassword
	}
	if saved.GithubToken != "" {
		e.token = saved.GithubToken
	}
	e.settingsMu.Unlock()

	if saved.GithubToken != "" {
		e.remote.SetToken(saved.GithubToken)
	}
	e.logger.WithField("has_token", e.remote.HasToken()).Info("saved settings applied")
	return nil
}

// CheckPassword compares against the shared site passphrase in constant time
func (e *Engine) CheckPassword(password string) bool {
	e.settingsMu.RLock()
	defer e.settingsMu.RUnlock()
	return subtle.ConstantTimeCompare([]byte(password), []byte(e.password)) == 1
}

// UpdateSettings saves a new token and/or passphrase; empty values keep the current ones.
// A changed token reloads the aggregate from the remote store.
func (e *Engine) UpdateSettings(ctx context.Context, token, password string) (bool, error) {
	token = strings.TrimSpace(token)
	password = strings.TrimSpace(password)

	e.settingsMu.Lock()
	next := model.UserSettings{SitePassword: e.password, GithubToken: e.token}
	if password != "" {
		next.SitePassword = password
	}
	if token != "" {
		next.GithubToken = token
	}
	raw, err := json.Marshal(next)
	if err != nil {
		e.settingsMu.Unlock()
		return false, fmt.Errorf("encode settings: %w", err)
	}
	if err := e.cache.Put(ctx, model.CacheKeySettings, raw); err != nil {
		e.settingsMu.Unlock()
		return false, fmt.Errorf("write settings: %w", err)
	}
	tokenChanged := token != "" && token != e.token
	e.password = next.SitePassword
	e.token = next.GithubToken
	e.settingsMu.Unlock()

	if !tokenChanged {
		return false, nil
	}
	e.remote.SetToken(token)
	e.logger.Info("token changed, reloading club data")
	if _, err := e.Load(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// HasToken whether remote persistence is active
func (e *Engine) HasToken() bool {
	return e.remote.HasToken()
}

// ValidateToken probes the remote store with the current token
func (e *Engine) ValidateToken(ctx context.Context) bool {
	return e.remote.ValidateToken(ctx)
}

// GistURL browser URL of the remote document, empty until resolved
func (e *Engine) GistURL() string {
	return e.remote.DocumentURL()
}
