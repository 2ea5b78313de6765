package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"GolfSync/internal/adapter"
	"GolfSync/internal/config"
	"GolfSync/internal/errs"
	"GolfSync/internal/interfaces"
	"GolfSync/internal/model"
	"GolfSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

const (
	// BackendName registration name in the adapter registry
	BackendName = "gist"
	// DefaultBaseURL GitHub REST API
	DefaultBaseURL = "https://api.github.com"
	// DefaultDescription description tag identifying the club document
	DefaultDescription = "Golf Competition Manager Data"
	// DefaultFileName file inside the gist holding the aggregate
	DefaultFileName = "golf-data.json"

	webURL       = "https://gist.github.com/"
	listPageSize = 100
	maxListPages = 10
)

func init() {
	adapter.Register(BackendName, func(cfg *config.Config, logger *logrus.Logger) interfaces.RemoteStore {
		c := NewClient(&cfg.Gist, logger)
		if cfg.Gist.Token != "" {
			c.SetToken(cfg.Gist.Token)
		}
		return c
	})
}

// Client GitHub gist client holding the single club document.
// Writes are whole-document PATCHes without a revision check: the last writer wins.
type Client struct {
	baseURL     string
	description string
	fileName    string
	httpClient  *http.Client
	logger      *logrus.Logger
	now         func() time.Time

	mu     sync.Mutex
	token  string
	gistID string // resolved document id, cached for the session

	resolveMu sync.Mutex // serialises list/create so concurrent callers never create two gists
}

// NewClient creates a gist client; the token is set separately with SetToken
func NewClient(cfg *config.GistConfig, logger *logrus.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	description := cfg.Description
	if description == "" {
		description = DefaultDescription
	}
	fileName := cfg.FileName
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Client{
		baseURL:     baseURL,
		description: description,
		fileName:    fileName,
		httpClient:  httpclient.NewHTTPClient(cfg, logger),
		logger:      logger,
		now:         time.Now,
	}
}

// gistFile file entry of a gist response
type gistFile struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	RawURL    string `json:"raw_url"`
}

// gistResponse subset of the GitHub gist object
type gistResponse struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

// fileContent file entry of create/update requests
type fileContent struct {
	Content string `json:"content"`
}

type createRequest struct {
	Description string                 `json:"description"`
	Public      bool                   `json:"public"`
	Files       map[string]fileContent `json:"files"`
}

type updateRequest struct {
	Files map[string]fileContent `json:"files"`
}

// apiErrorResponse GitHub error body
type apiErrorResponse struct {
	Message string `json:"message"`
}

func (c *Client) GetName() string {
	return BackendName
}

// SetToken stores the personal access token; a different token forgets the resolved gist
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		c.gistID = ""
	}
	c.token = token
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) HasToken() bool {
	return c.Token() != ""
}

// DocumentURL https://gist.github.com/<id> once the gist has been resolved
func (c *Client) DocumentURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gistID == "" {
		return ""
	}
	return webURL + c.gistID
}

// session token and the gist id resolved with it; requests of one operation share it
type session struct {
	token  string
	gistID string
}

// LocateOrCreate finds the private gist carrying the description tag, creating it when absent.
// The id is cached until the token changes.
func (c *Client) LocateOrCreate(ctx context.Context) (string, error) {
	s, err := c.resolve(ctx)
	return s.gistID, err
}

func (c *Client) resolve(ctx context.Context) (session, error) {
	c.resolveMu.Lock()
	defer c.resolveMu.Unlock()

	c.mu.Lock()
	s := session{token: c.token, gistID: c.gistID}
	c.mu.Unlock()
	if s.token == "" {
		return session{}, &errs.AuthError{Reason: "GitHub token is not set"}
	}
	if s.gistID != "" {
		return s, nil
	}

	// 1. look for an existing document
	id, err := c.findGist(ctx, s.token)
	if err != nil {
		return session{}, &errs.NotFoundError{Kind: "gist", Err: err}
	}

	// 2. create it with an empty aggregate
	if id == "" {
		id, err = c.createGist(ctx, s.token)
		if err != nil {
			return session{}, fmt.Errorf("create gist: %w", err)
		}
		c.logger.WithField("gist_id", id).Info("created club data gist")
	}
	s.gistID = id

	c.mu.Lock()
	if c.token == s.token {
		c.gistID = id
	}
	c.mu.Unlock()
	return s, nil
}

func (c *Client) findGist(ctx context.Context, token string) (string, error) {
	for page := 1; page <= maxListPages; page++ {
		var gists []gistResponse
		path := fmt.Sprintf("/gists?per_page=%d&page=%d", listPageSize, page)
		if err := c.do(ctx, token, http.MethodGet, path, nil, &gists); err != nil {
			return "", err
		}
		for _, g := range gists {
			if g.Description == c.description && !g.Public {
				return g.ID, nil
			}
		}
		if len(gists) < listPageSize {
			break
		}
	}
	return "", nil
}

func (c *Client) createGist(ctx context.Context, token string) (string, error) {
	content, err := model.NewDocument(c.now()).MarshalDocument()
	if err != nil {
		return "", err
	}
	req := createRequest{
		Description: c.description,
		Public:      false,
		Files:       map[string]fileContent{c.fileName: {Content: string(content)}},
	}
	var created gistResponse
	if err := c.do(ctx, token, http.MethodPost, "/gists", req, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", &errs.RemoteError{StatusCode: http.StatusCreated, Message: "created gist has no id"}
	}
	return created.ID, nil
}

// Read fetches the gist and parses the aggregate from its data file
func (c *Client) Read(ctx context.Context) (*model.Aggregate, error) {
	s, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}

	var g gistResponse
	if err := c.do(ctx, s.token, http.MethodGet, "/gists/"+s.gistID, nil, &g); err != nil {
		c.forgetOn404(s.gistID, err)
		return nil, err
	}

	file, ok := g.Files[c.fileName]
	if !ok {
		return nil, &errs.CorruptDataError{Reason: fmt.Sprintf("file %s not found in gist", c.fileName)}
	}
	content := []byte(file.Content)
	if file.Truncated && file.RawURL != "" {
		// GitHub truncates large files in the API response; the raw URL serves the full content
		content, err = c.send(ctx, s.token, http.MethodGet, file.RawURL, nil)
		if err != nil {
			return nil, err
		}
	}

	doc, err := model.ParseDocument(content)
	if err != nil {
		return nil, &errs.CorruptDataError{Reason: "document is not valid JSON", Err: err}
	}
	return doc, nil
}

// Replace overwrites the data file with the whole aggregate
func (c *Client) Replace(ctx context.Context, doc *model.Aggregate) error {
	s, err := c.resolve(ctx)
	if err != nil {
		return err
	}

	content, err := doc.MarshalDocument()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	req := updateRequest{
		Files: map[string]fileContent{c.fileName: {Content: string(content)}},
	}
	if err := c.do(ctx, s.token, http.MethodPatch, "/gists/"+s.gistID, req, nil); err != nil {
		c.forgetOn404(s.gistID, err)
		return err
	}
	c.logger.WithField("gist_id", s.gistID).WithField("bytes", len(content)).Debug("gist updated")
	return nil
}

// ValidateToken probes GET /user; every failure reports false
func (c *Client) ValidateToken(ctx context.Context) bool {
	if err := c.do(ctx, c.Token(), http.MethodGet, "/user", nil, nil); err != nil {
		c.logger.WithError(err).Debug("token validation failed")
		return false
	}
	return true
}

// forgetOn404 drops a cached id that no longer exists so the next call locates again
func (c *Client) forgetOn404(id string, err error) {
	var re *errs.RemoteError
	if !errors.As(err, &re) || re.StatusCode != http.StatusNotFound {
		return
	}
	c.mu.Lock()
	if c.gistID == id {
		c.gistID = ""
	}
	c.mu.Unlock()
}

// do sends a JSON request and decodes a JSON response into out (when non-nil)
func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	respBody, err := c.send(ctx, token, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &errs.RemoteError{Message: method + " " + path + ": unexpected response body", Err: err}
	}
	return nil
}

// send performs an authenticated request and returns the raw body of a 2xx response
func (c *Client) send(ctx context.Context, token, method, url string, body any) ([]byte, error) {
	if token == "" {
		return nil, &errs.AuthError{Reason: "GitHub token is not set"}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("method", method).Warn("GitHub request failed")
		return nil, &errs.RemoteError{Message: method + " request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.RemoteError{Message: "read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiErrorResponse
		_ = json.Unmarshal(respBody, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.WithFields(logrus.Fields{
			"method":  method,
			"status":  resp.StatusCode,
			"message": msg,
		}).Warn("GitHub API error")
		remoteErr := &errs.RemoteError{StatusCode: resp.StatusCode, Message: msg}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &errs.AuthError{Reason: "GitHub rejected the token", Err: remoteErr}
		}
		return nil, remoteErr
	}
	return respBody, nil
}
