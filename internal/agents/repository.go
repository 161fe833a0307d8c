package agents

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
)

// NOTE: Assumes table agents (id, provider, external_assistant_id, name,
// created_at, updated_at) with UNIQUE (provider, external_assistant_id).

var ErrNotFound = errors.New("agents: not found")

type Repository interface {
	FindByProviderAndExternalID(ctx context.Context, provider calllog.Provider, externalAssistantID string) (Agent, bool, error)
	Upsert(ctx context.Context, a Agent) (Agent, error)
	List(ctx context.Context, provider calllog.Provider) ([]Agent, error)
}

type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

func (r *PostgresRepo) FindByProviderAndExternalID(ctx context.Context, provider calllog.Provider, externalAssistantID string) (Agent, bool, error) {
	const q = `
SELECT id, provider, external_assistant_id, name, created_at, updated_at
FROM agents
WHERE provider = $1 AND external_assistant_id = $2
`
	var a Agent
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, q, provider, externalAssistantID).Scan(
		&a.ID, &a.Provider, &a.ExternalAssistantID, &name, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Agent{}, false, nil
		}
		return Agent{}, false, err
	}
	a.Name = name.String
	return a, true, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, a Agent) (Agent, error) {
	now := r.clock().UTC()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	const q = `
INSERT INTO agents (id, provider, external_assistant_id, name, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$5)
ON CONFLICT (provider, external_assistant_id)
DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
RETURNING id, provider, external_assistant_id, name, created_at, updated_at
`
	var out Agent
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, q, a.ID, a.Provider, a.ExternalAssistantID, nullString(a.Name), now).Scan(
		&out.ID, &out.Provider, &out.ExternalAssistantID, &name, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return Agent{}, err
	}
	out.Name = name.String
	return out, nil
}

func (r *PostgresRepo) List(ctx context.Context, provider calllog.Provider) ([]Agent, error) {
	const q = `
SELECT id, provider, external_assistant_id, name, created_at, updated_at
FROM agents
WHERE ($1 = '' OR provider = $1)
ORDER BY name
`
	rows, err := r.db.QueryContext(ctx, q, string(provider))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		var a Agent
		var name sql.NullString
		if err := rows.Scan(&a.ID, &a.Provider, &a.ExternalAssistantID, &name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Name = name.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu    sync.Mutex
	byKey map[string]Agent
	clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byKey: map[string]Agent{}, clock: time.Now}
}

func (r *MemoryRepo) key(p calllog.Provider, id string) string { return string(p) + "|" + id }

func (r *MemoryRepo) FindByProviderAndExternalID(_ context.Context, provider calllog.Provider, externalAssistantID string) (Agent, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byKey[r.key(provider, externalAssistantID)]
	return a, ok, nil
}

func (r *MemoryRepo) Upsert(_ context.Context, a Agent) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.key(a.Provider, a.ExternalAssistantID)
	now := r.clock().UTC()
	if existing, ok := r.byKey[key]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	r.byKey[key] = a
	return a, nil
}

func (r *MemoryRepo) List(_ context.Context, provider calllog.Provider) ([]Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Agent
	for _, a := range r.byKey {
		if provider != "" && a.Provider != provider {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
