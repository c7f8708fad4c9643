package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

const userColumns = `id, first_name, last_name, birth_date, email, phone_number, password_hash,
		competition, agreed_to_rules, team_signup, team_members, is_active, is_superuser,
		created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	members, err := json.Marshal(u.TeamMembers)
	if err != nil {
		return fmt.Errorf("marshal team members: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, first_name, last_name, birth_date, email, phone_number,
			password_hash, competition, agreed_to_rules, team_signup, team_members,
			is_active, is_superuser)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		returning created_at, updated_at
	`, u.ID, u.FirstName, u.LastName, u.BirthDate.Time, u.Email, u.PhoneNumber,
		u.PasswordHash, u.Competition, u.AgreedToRules, u.TeamSignup, members,
		u.IsActive, u.IsSuperuser)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgerr.IsUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *PGStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, email)
	return scanUser(row)
}

func (s *PGStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// Delete removes the identity. Grants and repository records go with it
// via on delete cascade.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u         User
		birthDate time.Time
		members   []byte
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &birthDate, &u.Email, &u.PhoneNumber,
		&u.PasswordHash, &u.Competition, &u.AgreedToRules, &u.TeamSignup, &members,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.BirthDate = Date{Time: birthDate}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &u.TeamMembers); err != nil {
			return nil, fmt.Errorf("decode team members: %w", err)
		}
	}
	return &u, nil
}
