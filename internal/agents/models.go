package agents

import (
	"time"

	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
)

// Agent is one row of the synced assistant catalog: a voice assistant
// configured at a provider, mirrored locally so call records can be
// correlated by external_assistant_id.
//
// Uniqueness invariant: (provider, external_assistant_id) identifies at most
// one row, same contract as call records.
type Agent struct {
	ID       string           `json:"id" db:"id"`
	Provider calllog.Provider `json:"provider" db:"provider"`

	ExternalAssistantID string `json:"external_assistant_id" db:"external_assistant_id"`
	Name                string `json:"name,omitempty" db:"name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
