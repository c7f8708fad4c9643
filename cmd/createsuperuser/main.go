// Command createsuperuser provisions an administrative account directly
// in the database. Superusers are never created through the public API.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/keen360/portal/internal/auth"
	"github.com/keen360/portal/internal/users"
)

func main() {
	log.SetFlags(0)
	var (
		dsn   = flag.String("dsn", os.Getenv("PORTAL_PG_DSN"), "PostgreSQL DSN")
		email = flag.String("email", "", "superuser email (prompted when empty)")
		phone = flag.String("phone", "", "superuser phone number (prompted when empty)")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or PORTAL_PG_DSN")
	}

	reader := bufio.NewReader(os.Stdin)
	if *email == "" {
		*email = promptLine(reader, "Email")
	}
	if *phone == "" {
		*phone = promptLine(reader, "Phone number")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Fatalf("read password: %v", err)
	}
	fmt.Print("Password (again): ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Fatalf("read password: %v", err)
	}
	if string(password) != string(confirm) {
		log.Fatal("passwords do not match")
	}

	hash, err := auth.HashPassword(string(password))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user := &users.User{
		FirstName:     "Admin",
		LastName:      "Admin",
		BirthDate:     users.Date{Time: time.Now().UTC()},
		Email:         strings.ToLower(strings.TrimSpace(*email)),
		PhoneNumber:   strings.TrimSpace(*phone),
		PasswordHash:  hash,
		AgreedToRules: true,
		IsActive:      true,
		IsSuperuser:   true,
	}
	if err := users.NewPGStore(db).Create(ctx, user); err != nil {
		log.Fatalf("create superuser: %v", err)
	}

	fmt.Printf("Superuser %s created (id %s)\n", user.Email, user.ID)
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Printf("%s: ", prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("read %s: %v", strings.ToLower(prompt), err)
	}
	return strings.TrimSpace(line)
}
