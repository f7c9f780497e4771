package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"themegen/internal/domain"
	"themegen/internal/infra"
	"themegen/internal/sqlinline"
)

// PGStore keeps build history in Postgres through a marker-checked executor.
type PGStore struct {
	SQL infra.SQLExecutor
}

func NewPGStore(sql infra.SQLExecutor) *PGStore {
	return &PGStore{SQL: sql}
}

// Migrate creates the history table when it does not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.SQL.Exec(ctx, sqlinline.QCreateBuildsTable); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

func (s *PGStore) Save(ctx context.Context, b domain.Build) error {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return fmt.Errorf("history: build id %q: %w", b.ID, domain.ErrInvalidRequest)
	}
	var result []byte
	if b.Result != nil {
		if result, err = json.Marshal(b.Result); err != nil {
			return fmt.Errorf("history: encode result: %w", err)
		}
	}
	var finished *time.Time
	if !b.FinishedAt.IsZero() {
		finished = &b.FinishedAt
	}
	platforms := b.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	_, err = s.SQL.Exec(ctx, sqlinline.QUpsertBuild,
		id, b.Branch, platforms, string(b.Status), b.OutputDir, result, b.Error, b.StartedAt, finished)
	if err != nil {
		return fmt.Errorf("history: save %s: %w", b.ID, err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (domain.Build, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Build{}, domain.ErrNotFound
	}
	b, err := scanBuild(s.SQL.QueryRow(ctx, sqlinline.QSelectBuildByID, parsed))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Build{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Build{}, fmt.Errorf("history: get %s: %w", id, err)
	}
	return b, nil
}

func (s *PGStore) List(ctx context.Context, branch string, limit int) ([]domain.Build, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.SQL.Query(ctx, sqlinline.QListBuilds, branch, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []domain.Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("history: list scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (domain.Build, error) {
	var (
		b        domain.Build
		id       uuid.UUID
		status   string
		result   []byte
		finished *time.Time
	)
	if err := row.Scan(&id, &b.Branch, &b.Platforms, &status, &b.OutputDir, &result, &b.Error, &b.StartedAt, &finished); err != nil {
		return domain.Build{}, err
	}
	b.ID = id.String()
	b.Status = domain.BuildStatus(status)
	if finished != nil {
		b.FinishedAt = *finished
	}
	if len(result) > 0 {
		b.Result = &domain.BuildResult{}
		if err := json.Unmarshal(result, b.Result); err != nil {
			return domain.Build{}, fmt.Errorf("decode result: %w", err)
		}
	}
	return b, nil
}

var _ Store = (*PGStore)(nil)
