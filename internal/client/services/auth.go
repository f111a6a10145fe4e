// Package services contains application services for the Juiz Lab client.
// This file defines the authentication service: sign-in, which writes the
// first credential of a session, and account registration.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/credstore"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
	"github.com/dmitrijs2005/juizlab/internal/client/notifier"
	"github.com/dmitrijs2005/juizlab/internal/common"
	"github.com/dmitrijs2005/juizlab/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange username/password for a credential, store it and
//     announce the change to mounted views.
//   - Register: create a new account on the server.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (models.Identity, error)
	Register(ctx context.Context, username, email string, password []byte) error
}

type authService struct {
	client   client.Client
	store    credstore.Store
	notifier notifier.Notifier
	logger   logging.Logger
}

func NewAuthService(c client.Client, store credstore.Store, n notifier.Notifier, logger logging.Logger) AuthService {
	return &authService{client: c, store: store, notifier: n, logger: logger}
}

// Login stores the issued credential before confirming it, so a failed
// confirmation leaves the session to the managers' regular checks.
func (a *authService) Login(ctx context.Context, username string, password []byte) (models.Identity, error) {
	defer common.WipeByteArray(password)

	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		return models.Identity{}, &client.ValidationError{Message: "username and password are required"}
	}

	cred, err := a.client.ObtainToken(ctx, username, password)
	if err != nil {
		return models.Identity{}, fmt.Errorf("login error: %w", err)
	}
	if err := a.store.Save(ctx, cred); err != nil {
		return models.Identity{}, fmt.Errorf("credential saving error: %w", err)
	}

	id, err := a.client.Check(ctx, cred.AccessToken)
	switch {
	case err == nil:
		if _, err := a.store.CacheIdentityFor(ctx, cred, id); err != nil {
			a.logger.Warn(ctx, "cache identity", "err", err)
		}
	case errors.Is(err, client.ErrUnauthorized):
		if _, cerr := a.store.ClearIf(ctx, cred); cerr != nil {
			a.logger.Warn(ctx, "clear rejected credential", "err", cerr)
		}
		return models.Identity{}, fmt.Errorf("login error: %w", err)
	default:
		a.logger.Warn(ctx, "identity confirmation failed after login", "err", err)
		id = models.Identity{Authenticated: true, Username: username}
	}

	if err := a.notifier.Notify(ctx, notifier.AuthChange("")); err != nil {
		a.logger.Warn(ctx, "broadcast auth change", "err", err)
	}
	a.logger.Info(ctx, "signed in", "username", id.Username)
	return id, nil
}

func (a *authService) Register(ctx context.Context, username, email string, password []byte) error {
	defer common.WipeByteArray(password)

	problems := map[string][]string{}
	if strings.TrimSpace(username) == "" {
		problems["username"] = []string{"username is required"}
	}
	if !strings.Contains(email, "@") {
		problems["email"] = []string{"a valid email is required"}
	}
	if len(password) == 0 {
		problems["password"] = []string{"password is required"}
	}
	if len(problems) > 0 {
		return &client.ValidationError{Fields: problems}
	}

	if err := a.client.Register(ctx, strings.TrimSpace(username), email, password); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}
