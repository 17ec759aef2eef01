package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/config"
	"github.com/mrlokans/bamboo/internal/database"
	"github.com/mrlokans/bamboo/internal/database/users"
	"github.com/mrlokans/bamboo/internal/entities"
)

// CreateUserCommand creates an account directly in the database, useful
// for bootstrapping the first admin before the API has any users.
type CreateUserCommand struct {
	MobilePhone  string
	Password     string
	FullName     string
	Email        string
	Role         string
	DatabasePath string
}

// NewCreateUserCommand creates a new CreateUserCommand
func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

// ParseFlags parses command line flags
func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.MobilePhone, "phone", "", "Mobile phone number (login identity, required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (required)")
	fs.StringVar(&cmd.FullName, "name", "", "Full name")
	fs.StringVar(&cmd.Email, "email", "", "Email address")
	fs.StringVar(&cmd.Role, "role", string(entities.RoleAdmin), "Role: user, student, teacher or admin")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the SQLite database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an account directly in the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -phone +8613800138000 -password secret123\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-user -phone +8613800138000 -password secret123 -role teacher\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.MobilePhone == "" {
		return fmt.Errorf("-phone is required")
	}
	if cmd.Password == "" {
		return fmt.Errorf("-password is required")
	}
	if !entities.ValidRole(entities.Role(cmd.Role)) {
		return fmt.Errorf("unknown role: %s", cmd.Role)
	}

	return nil
}

// Run executes the create-user command
func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase("sqlite", cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	hashed, err := auth.HashPassword(cmd.Password, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	repo := users.NewRepository(db.DB)
	user := &entities.User{
		MobilePhone:    cmd.MobilePhone,
		FullName:       cmd.FullName,
		Email:          cmd.Email,
		HashedPassword: hashed,
		Role:           entities.Role(cmd.Role),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created %s account %s (hash %s)\n", user.Role, user.MobilePhone, user.Hash)
	return nil
}
