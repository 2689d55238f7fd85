package events

import (
	"encoding/json"
	"time"

	"bidscout-engine/internal/domain"
)

const (
	TypeJobNew = "job.new"
	Version    = 1
)

type Event struct {
	Type     string          `json:"type"`
	Version  int             `json:"v"`
	At       time.Time       `json:"at"`
	RunID    string          `json:"run_id,omitempty"`
	Platform domain.Platform `json:"platform,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(runID, typ string, platform domain.Platform, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Event{
		Type:     typ,
		Version:  Version,
		At:       time.Now().UTC(),
		RunID:    runID,
		Platform: platform,
		Data:     raw,
	})
}

// NewJob is the envelope sent for each newly reconciled record.
func NewJob(runID string, rec domain.JobRecord) ([]byte, error) {
	return MakeEvent(runID, TypeJobNew, rec.Platform, rec)
}
