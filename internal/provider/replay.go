package provider

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// Schema for the recorded_responses table, applied by OpenReplayStore.
const replaySchema = `
CREATE TABLE IF NOT EXISTS recorded_responses (
	prompt_hash TEXT PRIMARY KEY,
	prompt TEXT NOT NULL,
	response TEXT NOT NULL,
	provider TEXT NOT NULL DEFAULT '',
	recorded_at INTEGER NOT NULL
);
`

// ReplayStore persists real backend responses keyed by prompt so the mock
// provider can replay them deterministically in later runs.
type ReplayStore struct {
	db *sql.DB
}

// OpenReplayStore opens (or creates) a SQLite-backed store at path.
func OpenReplayStore(path string) (*ReplayStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open replay store: %w", err)
	}
	if _, err := db.Exec(replaySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init replay store: %w", err)
	}
	return &ReplayStore{db: db}, nil
}

// Put records a response for a prompt, overwriting any earlier recording.
func (s *ReplayStore) Put(ctx context.Context, providerName, prompt, response string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recorded_responses (prompt_hash, prompt, response, provider, recorded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(prompt_hash) DO UPDATE SET response=excluded.response, provider=excluded.provider, recorded_at=excluded.recorded_at`,
		promptHash(prompt), prompt, response, providerName, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("record response: %w", err)
	}
	return nil
}

// Get returns the recorded response for a prompt, if one exists.
func (s *ReplayStore) Get(ctx context.Context, prompt string) (string, bool, error) {
	var response string
	err := s.db.QueryRowContext(ctx,
		`SELECT response FROM recorded_responses WHERE prompt_hash = ?`,
		promptHash(prompt)).Scan(&response)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup response: %w", err)
	}
	return response, true, nil
}

func (s *ReplayStore) Close() error {
	return s.db.Close()
}

func promptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// RecordingProvider passes calls through to a real backend and saves each
// successful response into a ReplayStore. Recording failures are logged,
// never surfaced; a broken store must not break extraction.
type RecordingProvider struct {
	inner  Provider
	name   string
	store  *ReplayStore
	logger *slog.Logger
}

func NewRecordingProvider(inner Provider, name string, store *ReplayStore, logger *slog.Logger) *RecordingProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordingProvider{inner: inner, name: name, store: store, logger: logger}
}

func (p *RecordingProvider) GenerateResponse(ctx context.Context, prompt string, opts Options) (string, error) {
	resp, err := p.inner.GenerateResponse(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	if putErr := p.store.Put(ctx, p.name, prompt, resp); putErr != nil {
		p.logger.Warn("provider.replay.record_failed", "provider", p.name, "error", putErr)
	}
	return resp, nil
}

func (p *RecordingProvider) GenerateJSON(ctx context.Context, prompt string, opts Options) ([]byte, error) {
	raw, err := p.inner.GenerateJSON(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	if putErr := p.store.Put(ctx, p.name, prompt, string(raw)); putErr != nil {
		p.logger.Warn("provider.replay.record_failed", "provider", p.name, "error", putErr)
	}
	return raw, nil
}
