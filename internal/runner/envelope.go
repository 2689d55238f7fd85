package runner

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
)

const (
	OpScrape       = "scrape"
	OpLogin        = "login"
	OpSendProposal = "sendProposal"
)

type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Envelope is the part every result document shares.
type Envelope struct {
	Success   bool       `json:"success"`
	Operation string     `json:"operation"`
	Platform  string     `json:"platform,omitempty"`
	RunID     string     `json:"runId"`
	Timestamp string     `json:"timestamp"`
	Duration  int64      `json:"duration"` // milliseconds
	Error     *ErrorBody `json:"error,omitempty"`
}

// Failed is the document for an operation that could not even start, such
// as one with a bad flag or an unreadable config.
func Failed(op, platform string, err error) Envelope {
	e := Envelope{
		Operation: op,
		Platform:  platform,
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	e.fail(err)
	return e
}

// OK reports whether the process should exit 0.
func (e Envelope) OK() bool { return e.Success }

func (e *Envelope) fail(err error) {
	e.Success = false
	e.Error = &ErrorBody{Type: string(apperrors.TypeOf(err)), Message: message(err)}
}

func (e *Envelope) finish(start time.Time) {
	e.Duration = time.Since(start).Milliseconds()
}

// message is the user-facing text: the domain message without the type
// prefix or wrapped internals.
func message(err error) string {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		if de.Err != nil {
			return de.Message + ": " + de.Err.Error()
		}
		return de.Message
	}
	return err.Error()
}

type PlatformResult struct {
	Platform domain.Platform    `json:"platform"`
	Success  bool               `json:"success"`
	Stats    domain.RunStats    `json:"stats"`
	Projects []domain.JobRecord `json:"-"`
	Error    *ErrorBody         `json:"error,omitempty"`
}

type ScrapeResult struct {
	Envelope
	Stats    domain.RunStats    `json:"stats"`
	Projects []domain.JobRecord `json:"projects"`
	// Platforms breaks the run down when more than one platform ran.
	Platforms []PlatformResult `json:"platforms,omitempty"`
}

type LoginResult struct {
	Envelope
	SessionData *domain.SessionState `json:"sessionData,omitempty"`
}

type ProposalResult struct {
	Envelope
	Message     string `json:"message,omitempty"`
	ProjectLink string `json:"projectLink"`
	Counterpart string `json:"counterpart,omitempty"`
}
