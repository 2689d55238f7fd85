package domain

import "time"

type SubmissionResult struct {
	Success     bool          `json:"success"`
	Platform    Platform      `json:"platform"`
	JobLink     string        `json:"projectLink"`
	Counterpart string        `json:"counterpart,omitempty"`
	Message     string        `json:"message,omitempty"`
	ErrorKind   string        `json:"errorType,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"-"`
}
