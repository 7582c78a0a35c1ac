package types

import "github.com/google/uuid"

// SubmitRequest is the wire form of a launch request as consumed from the
// submissions queue. Zero-valued fields fall back to launcher defaults
// during mapping.
type SubmitRequest struct {
	JobUID         string       `json:"job_uid"`
	UserID         string       `json:"user_id"`
	ConfigPath     string       `json:"config_path,omitempty"`
	Executable     string       `json:"executable,omitempty"`
	SubmitDir      string       `json:"submit_dir,omitempty"`
	Environment    string       `json:"environment,omitempty"`
	Profile        string       `json:"profile,omitempty"`
	Directives     DirectiveSet `json:"directives"`
	WalltimeSpec   string       `json:"walltime,omitempty"` // HH:MM:SS
	TimeoutSeconds int          `json:"timeout_seconds,omitempty"`
}

type CancelJobRequest struct {
	JobUID uuid.UUID `json:"job_uid"`
}
