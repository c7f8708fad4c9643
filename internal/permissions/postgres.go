package permissions

import (
	"context"
	"database/sql"
	"errors"

	"github.com/keen360/portal/internal/ids"
	"github.com/keen360/portal/internal/pgerr"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, grant *Grant) error {
	if grant.ID == "" {
		grant.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into permissions (id, user_id, competition_access)
		values ($1,$2,$3)
		returning created_at
	`, grant.ID, grant.UserID, grant.CompetitionAccess)
	if err := row.Scan(&grant.CreatedAt); err != nil {
		if pgerr.IsUniqueViolation(err) {
			return ErrConflict
		}
		if pgerr.IsForeignKeyViolation(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *PGStore) List(ctx context.Context) ([]Grant, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, user_id, competition_access, created_at
		from permissions order by created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGrants(rows)
}

func (s *PGStore) ListForUser(ctx context.Context, userID string) ([]Grant, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, user_id, competition_access, created_at
		from permissions where user_id=$1 order by created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGrants(rows)
}

func (s *PGStore) Delete(ctx context.Context, grantID string) error {
	res, err := s.db.ExecContext(ctx, `delete from permissions where id=$1`, grantID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func collectGrants(rows *sql.Rows) ([]Grant, error) {
	var grants []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.ID, &g.UserID, &g.CompetitionAccess, &g.CreatedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
