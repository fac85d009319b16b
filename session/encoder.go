package session

import (
	"encoding/json"
	"fmt"
)

const (
	schemaVersionCurrent = 1
)

// envelope is the persisted wire form: a schema version plus the persisted
// subset of the session. Transient fields are excluded by their json tags.
type envelope struct {
	SchemaVersion int     `json:"v"`
	Session       Session `json:"session"`
}

// Encode serializes the persisted subset of s under the current schema
// version.
func Encode(s *Session) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("encode nil session")
	}
	return json.Marshal(envelope{
		SchemaVersion: schemaVersionCurrent,
		Session:       *s,
	})
}

// Decode parses a persisted blob. Unknown schema versions are rejected so a
// future incompatible format is discarded instead of misread; the decoded
// session is normalized before it is returned.
func Decode(data []byte) (*Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if env.SchemaVersion != schemaVersionCurrent {
		return nil, fmt.Errorf("unsupported session schema version %d", env.SchemaVersion)
	}

	s := env.Session
	s.Normalize()
	return &s, nil
}
