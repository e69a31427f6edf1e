// Package feed connects the companion to the realtime emotion detector.
// The detector writes its latest reading to a single record; sources
// deliver that record as it changes and forward start/stop requests back.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultPath is the node the detector writes to.
const DefaultPath = "live_monitoring/current"

const (
	StatusActive = "active"
	StatusIdle   = "idle"
)

// Record is the detector's current reading. Every field is optional; older
// detectors write label and timestamp instead of emotion and last_updated.
// Timestamps are milliseconds since the Unix epoch.
type Record struct {
	Emotion      string   `json:"emotion,omitempty"`
	Label        string   `json:"label,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	LastUpdated  *float64 `json:"last_updated,omitempty"`
	Timestamp    *float64 `json:"timestamp,omitempty"`
	SystemStatus *string  `json:"systemStatus,omitempty"`
	LastRequest  *float64 `json:"last_request,omitempty"`
}

// RawLabel returns emotion, falling back to label.
func (r Record) RawLabel() string {
	if r.Emotion != "" {
		return r.Emotion
	}
	return r.Label
}

// UpdatedAt returns last_updated, falling back to timestamp. The zero time
// means the record carries neither.
func (r Record) UpdatedAt() time.Time {
	switch {
	case r.LastUpdated != nil:
		return time.UnixMilli(int64(*r.LastUpdated))
	case r.Timestamp != nil:
		return time.UnixMilli(int64(*r.Timestamp))
	}
	return time.Time{}
}

// Running reports whether the detector is running. A record without a
// systemStatus is assumed to come from a running detector.
func (r Record) Running() bool {
	return r.SystemStatus == nil || *r.SystemStatus == StatusActive
}

// Source is a live connection to the detector record.
type Source interface {
	// Subscribe calls fn with the current record and every change to it
	// until ctx is done or the stream fails. A nil record means the node
	// does not exist.
	Subscribe(ctx context.Context, fn func(*Record)) error
	// SetSystemStatus asks the detector to start or stop.
	SetSystemStatus(ctx context.Context, active bool) error
	// PushDetection writes a detection as if the detector made it.
	PushDetection(ctx context.Context, label string, confidence float64) error
}

func statusUpdate(active bool, now time.Time) map[string]any {
	status := StatusIdle
	if active {
		status = StatusActive
	}
	return map[string]any{
		"systemStatus": status,
		"last_request": now.UnixMilli(),
	}
}

func detectionUpdate(label string, confidence float64, now time.Time) map[string]any {
	return map[string]any{
		"emotion":      label,
		"confidence":   confidence,
		"last_updated": now.UnixMilli(),
	}
}

// decodeFields turns a node's fields into a Record. No fields means no node.
func decodeFields(fields map[string]json.RawMessage) (*Record, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &rec, nil
}

// mergeFields applies an update to a node. A null value removes the field.
func mergeFields(dst, update map[string]json.RawMessage) map[string]json.RawMessage {
	if dst == nil {
		dst = make(map[string]json.RawMessage, len(update))
	}
	for k, v := range update {
		if isNull(v) {
			delete(dst, k)
			continue
		}
		dst[k] = v
	}
	return dst
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
