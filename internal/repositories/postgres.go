package repositories

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

func (s *PGStore) Create(ctx context.Context, repo *Repository) error {
	if repo.ID == "" {
		repo.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into repositories (id, user_id, repository_name, repository_url, description)
		values ($1,$2,$3,$4,$5)
		returning created_at, updated_at
	`, repo.ID, repo.UserID, repo.RepositoryName, repo.RepositoryURL, repo.Description)
	if err := row.Scan(&repo.CreatedAt, &repo.UpdatedAt); err != nil {
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

func (s *PGStore) ListForOwner(ctx context.Context, ownerID string) ([]Repository, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, user_id, repository_name, repository_url, description, created_at, updated_at
		from repositories where user_id=$1 order by created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Repository
	for rows.Next() {
		var repo Repository
		if err := rows.Scan(&repo.ID, &repo.UserID, &repo.RepositoryName, &repo.RepositoryURL,
			&repo.Description, &repo.CreatedAt, &repo.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, repo)
	}
	return result, rows.Err()
}

// Find filters by owner unless ownerID is empty, so non-owned records are
// indistinguishable from absent ones.
func (s *PGStore) Find(ctx context.Context, id, ownerID string) (*Repository, error) {
	var row *sql.Row
	if ownerID == "" {
		row = s.db.QueryRowContext(ctx, `
			select id, user_id, repository_name, repository_url, description, created_at, updated_at
			from repositories where id=$1
		`, id)
	} else {
		row = s.db.QueryRowContext(ctx, `
			select id, user_id, repository_name, repository_url, description, created_at, updated_at
			from repositories where id=$1 and user_id=$2
		`, id, ownerID)
	}

	var repo Repository
	err := row.Scan(&repo.ID, &repo.UserID, &repo.RepositoryName, &repo.RepositoryURL,
		&repo.Description, &repo.CreatedAt, &repo.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &repo, nil
}

func (s *PGStore) Update(ctx context.Context, repo *Repository) error {
	row := s.db.QueryRowContext(ctx, `
		update repositories
		set repository_name=$1, repository_url=$2, description=$3, updated_at=now()
		where id=$4
		returning updated_at
	`, repo.RepositoryName, repo.RepositoryURL, repo.Description, repo.ID)
	if err := row.Scan(&repo.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if pgerr.IsUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id, ownerID string) error {
	var (
		res sql.Result
		err error
	)
	if ownerID == "" {
		res, err = s.db.ExecContext(ctx, `delete from repositories where id=$1`, id)
	} else {
		res, err = s.db.ExecContext(ctx, `delete from repositories where id=$1 and user_id=$2`, id, ownerID)
	}
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
