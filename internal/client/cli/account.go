package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/budgetkeeper/internal/client/auth"
	"github.com/iudanet/budgetkeeper/internal/validation"
)

func (c *Cli) runRegister(ctx context.Context, _ []string) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password (min 8 chars, upper, lower, digit, symbol): ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	resp, err := c.auth.Register(ctx, validation.Registration{
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("Email: %s\n", resp.Email)
	if resp.Message != "" {
		c.io.Println(resp.Message)
	}
	c.io.Println()
	c.io.Println("Open the activation link from the e-mail or run 'budgetkeeper activate <token>'.")

	return nil
}

func (c *Cli) runActivate(ctx context.Context, args []string) error {
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		var err error
		if token, err = c.io.ReadInput("Activation token: "); err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	}

	if err := c.auth.Activate(ctx, token); err != nil {
		return err
	}

	c.io.Println("✓ Account activated. Run 'budgetkeeper login' to start.")
	return nil
}

func (c *Cli) runLogin(ctx context.Context, _ []string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	session, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("Role: %s\n", session.Role)
	c.io.Printf("Token expires: %s\n", session.ExpiresAt.Local().Format(time.RFC3339))

	return nil
}

func (c *Cli) runLogout(ctx context.Context, _ []string) error {
	if err := c.auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")

	return nil
}

func (c *Cli) runStatus(ctx context.Context, _ []string) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	session, err := c.auth.Session(ctx)
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'budgetkeeper login' to authenticate.")
		return nil
	case errors.Is(err, auth.ErrSessionExpired):
		c.io.Println("Status: Session expired")
		c.io.Printf("Email: %s\n", session.Email)
		c.io.Println("⚠️  Token has expired. Please login again.")
		return nil
	case err != nil:
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Server: %s\n", session.Server)
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("Role: %s\n", session.Role)
	c.io.Printf("Token expires: %s\n", session.ExpiresAt.Local().Format(time.RFC3339))
	c.io.Printf("Time remaining: %s\n", time.Until(session.ExpiresAt).Round(time.Second))

	return nil
}

func (c *Cli) runWhoami(ctx context.Context, _ []string) error {
	user, err := c.auth.Whoami(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("ID: %d\n", user.ID)
	c.io.Printf("Email: %s\n", user.Email)
	c.io.Printf("Role: %s\n", user.Role)
	c.io.Printf("Active: %t\n", user.IsActive)
	c.io.Printf("Registered: %s\n", user.CreatedAt.Local().Format(time.DateOnly))
	if user.LastLogin != nil {
		c.io.Printf("Last login: %s\n", user.LastLogin.Local().Format(time.RFC3339))
	}

	return nil
}
