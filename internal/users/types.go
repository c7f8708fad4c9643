package users

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("users: invalid input")
	ErrConflict     = errors.New("users: already exists")
	ErrNotFound     = errors.New("users: not found")
)

const dateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return fmt.Errorf("%w: birth_date is required", ErrInvalidInput)
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("%w: birth_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	d.Time = parsed
	return nil
}

// TeamMember is an optional co-registrant named during team signup.
type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// User is a registered identity. The password hash never leaves the
// service: it is excluded from every serialized representation.
type User struct {
	ID            string       `json:"id"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	BirthDate     Date         `json:"birth_date"`
	Email         string       `json:"email"`
	PhoneNumber   string       `json:"phone_number"`
	PasswordHash  string       `json:"-"`
	Competition   string       `json:"competition"`
	AgreedToRules bool         `json:"agreed_to_rules"`
	TeamSignup    bool         `json:"team_signup"`
	TeamMembers   []TeamMember `json:"team_members,omitempty"`
	IsActive      bool         `json:"is_active"`
	IsSuperuser   bool         `json:"is_superuser"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
