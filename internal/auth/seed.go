package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/oriontek/customer-core/internal/infrastructure/logging"
)

// seedPasswordBytes is the number of random bytes for a generated seed password.
const seedPasswordBytes = 16

// SeedParams configures the accounts provisioned at startup.
type SeedParams struct {
	// SuperAdminEmail is the email of the bootstrap SUPERADMIN account.
	SuperAdminEmail string

	// SuperAdminPassword is the bootstrap password. When empty, a random
	// password is generated and logged once — it must be changed immediately.
	SuperAdminPassword string

	// AdminEmail and AdminPassword provision a convenience ADMIN account.
	// Only honoured in the development environment.
	AdminEmail    string
	AdminPassword string

	// Environment is the deployment environment (development, staging, production).
	Environment string
}

// Seed provisions the bootstrap accounts. The SUPERADMIN account is ensured
// in every environment; the development ADMIN account only in development.
// Seeding is idempotent — accounts that already exist are left untouched.
func Seed(ctx context.Context, users UserRepository, params SeedParams, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}

	if err := seedAccount(ctx, users, seedSpec{
		email:     params.SuperAdminEmail,
		password:  params.SuperAdminPassword,
		firstName: "Super",
		lastName:  "Admin",
		role:      RoleSuperAdmin,
	}, logger); err != nil {
		return fmt.Errorf("seeding superadmin: %w", err)
	}

	if params.Environment == "development" && params.AdminEmail != "" {
		if err := seedAccount(ctx, users, seedSpec{
			email:     params.AdminEmail,
			password:  params.AdminPassword,
			firstName: "Dev",
			lastName:  "Admin",
			role:      RoleAdmin,
		}, logger); err != nil {
			return fmt.Errorf("seeding development admin: %w", err)
		}
	}

	return nil
}

type seedSpec struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      Role
}

func seedAccount(ctx context.Context, users UserRepository, spec seedSpec, logger *logging.Logger) error {
	email := NormalizeEmail(spec.email)
	if !IsValidEmail(email) {
		return fmt.Errorf("invalid seed email %q", spec.email)
	}

	_, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		logger.Debug("seed account exists, skipping", "email", email, "role", spec.role)
		return nil
	case !errors.Is(err, ErrUserNotFound):
		return fmt.Errorf("checking seed account: %w", err)
	}

	password := spec.password
	generated := false
	if password == "" {
		b := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generating seed password: %w", err)
		}
		password = hex.EncodeToString(b)
		generated = true
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	user := &User{
		Email:        email,
		FirstName:    spec.firstName,
		LastName:     spec.lastName,
		PasswordHash: hash,
		Role:         spec.role,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("creating seed account: %w", err)
	}

	if generated {
		// The only place a plaintext password is ever logged. One-time
		// bootstrap credential for an operator who provided no password.
		logger.Warn("seed account created with generated password",
			"email", email,
			"role", spec.role,
			"password", password,
			"action_required", "change this password immediately",
		)
	} else {
		logger.Info("seed account created", "email", email, "role", spec.role)
	}

	return nil
}
