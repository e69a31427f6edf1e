package feed

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sethgrid/pelioscope/internal/clock"
)

var (
	ErrStreamCanceled = errors.New("feed: stream canceled by server")
	ErrAuthRevoked    = errors.New("feed: auth token revoked")
	ErrStreamClosed   = errors.New("feed: stream closed")
)

type FirebaseConfig struct {
	// URL is the database root, e.g. https://example-default-rtdb.firebaseio.com.
	URL  string
	Path string
	// Auth is an optional database secret or ID token.
	Auth   string
	Client *http.Client
	Clock  clock.Clock
}

// Firebase reads and writes the detector record through the Realtime
// Database REST API.
type Firebase struct {
	endpoint string
	client   *http.Client
	clock    clock.Clock
	logger   *zap.Logger
}

func NewFirebase(cfg FirebaseConfig, logger *zap.Logger) (*Firebase, error) {
	if cfg.URL == "" {
		return nil, errors.New("feed: firebase url is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse firebase url: %w", err)
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.Trim(cfg.Path, "/") + ".json"
	if cfg.Auth != "" {
		q := u.Query()
		q.Set("auth", cfg.Auth)
		u.RawQuery = q.Encode()
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Firebase{endpoint: u.String(), client: cfg.Client, clock: cfg.Clock, logger: logger}, nil
}

// Subscribe streams the record over server-sent events.
func (f *Firebase) Subscribe(ctx context.Context, fn func(*Record)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open firebase stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("firebase stream: unexpected status %s", resp.Status)
	}

	var node map[string]json.RawMessage
	return readEvents(resp.Body, func(name string, data []byte) error {
		switch name {
		case "put", "patch":
			var msg struct {
				Path string          `json:"path"`
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(data, &msg); err != nil {
				f.logger.Warn("skipping malformed firebase event", zap.String("event", name), zap.Error(err))
				return nil
			}
			next, err := applyEvent(node, name, msg.Path, msg.Data)
			if err != nil {
				f.logger.Warn("skipping firebase event", zap.String("path", msg.Path), zap.Error(err))
				return nil
			}
			node = next
			rec, err := decodeFields(node)
			if err != nil {
				f.logger.Warn("skipping undecodable record", zap.Error(err))
				return nil
			}
			fn(rec)
		case "keep-alive":
		case "cancel":
			return ErrStreamCanceled
		case "auth_revoked":
			return ErrAuthRevoked
		default:
			f.logger.Debug("ignoring firebase event", zap.String("event", name))
		}
		return nil
	})
}

// applyEvent folds a put or patch into the node. Only the node itself and
// its direct children are tracked; deeper paths are ignored.
func applyEvent(node map[string]json.RawMessage, kind, path string, data json.RawMessage) (map[string]json.RawMessage, error) {
	key := strings.Trim(path, "/")
	if strings.Contains(key, "/") {
		return node, nil
	}

	if kind == "patch" {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return node, fmt.Errorf("patch data is not an object: %w", err)
		}
		if key == "" {
			return mergeFields(node, fields), nil
		}
		// a patch below a child replaces fields of a nested object we do not track
		return node, nil
	}

	if key != "" {
		return mergeFields(node, map[string]json.RawMessage{key: data}), nil
	}
	if isNull(data) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return node, fmt.Errorf("put data is not an object: %w", err)
	}
	return fields, nil
}

// readEvents parses a text/event-stream body and calls fn per event.
func readEvents(r io.Reader, fn func(name string, data []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var name string
	var data bytes.Buffer
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if name != "" || data.Len() > 0 {
				if err := fn(name, data.Bytes()); err != nil {
					return err
				}
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read firebase stream: %w", err)
	}
	return ErrStreamClosed
}

func (f *Firebase) SetSystemStatus(ctx context.Context, active bool) error {
	return f.patch(ctx, statusUpdate(active, f.clock.Now()))
}

func (f *Firebase) PushDetection(ctx context.Context, label string, confidence float64) error {
	return f.patch(ctx, detectionUpdate(label, confidence, f.clock.Now()))
}

func (f *Firebase) patch(ctx context.Context, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update firebase record: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("firebase update: unexpected status %s", resp.Status)
	}
	return nil
}
