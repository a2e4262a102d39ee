// Package identity resolves who is viewing the roster and which roles
// they hold.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nhle/kitchen-roster/internal/credential"
	"github.com/nhle/kitchen-roster/internal/model"
)

// EnvUser overrides the keyring session when set.
const EnvUser = "ROSTER_USER"

// ErrNoSession is returned when no user is signed in.
var ErrNoSession = errors.New("no user signed in; run `roster login <user-id>`")

// Secrets stores the session user.
type Secrets interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Directory looks up users and their roles.
type Directory interface {
	GetUsers(ctx context.Context) ([]model.User, error)
	GetRoleIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// Provider supplies the viewer for a roster session.
type Provider struct {
	secrets Secrets
	dir     Directory
	getenv  func(string) string
}

// NewProvider creates a Provider.
func NewProvider(secrets Secrets, dir Directory) *Provider {
	return &Provider{secrets: secrets, dir: dir, getenv: os.Getenv}
}

// Current returns the signed-in user and the roles they hold now.
func (p *Provider) Current(ctx context.Context) (model.Viewer, error) {
	userID, err := p.userID()
	if err != nil {
		return model.Viewer{}, err
	}
	return p.ViewerFor(ctx, userID)
}

// ViewerFor builds the viewer for userID from the directory.
func (p *Provider) ViewerFor(ctx context.Context, userID string) (model.Viewer, error) {
	roles, err := p.dir.GetRoleIDsForUser(ctx, userID)
	if err != nil {
		return model.Viewer{}, fmt.Errorf("resolving roles for %s: %w", userID, err)
	}
	return model.Viewer{UserID: userID, Roles: model.NewRoleSet(roles...)}, nil
}

// Login records userID as the session user after checking it exists.
func (p *Provider) Login(ctx context.Context, userID string) (model.User, error) {
	userID = strings.TrimSpace(userID)
	users, err := p.dir.GetUsers(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("looking up user %s: %w", userID, err)
	}
	for _, u := range users {
		if u.ID == userID || (u.Email != "" && strings.EqualFold(u.Email, userID)) {
			if err := p.secrets.Set(credential.SessionUserKey, u.ID); err != nil {
				return model.User{}, err
			}
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("unknown user %q", userID)
}

// Logout clears the session user.
func (p *Provider) Logout() error {
	return p.secrets.Delete(credential.SessionUserKey)
}

func (p *Provider) userID() (string, error) {
	if id := strings.TrimSpace(p.getenv(EnvUser)); id != "" {
		return id, nil
	}
	if p.secrets == nil {
		return "", ErrNoSession
	}
	id, err := p.secrets.Get(credential.SessionUserKey)
	if err != nil {
		if credential.IsNotFound(err) {
			return "", ErrNoSession
		}
		return "", err
	}
	if strings.TrimSpace(id) == "" {
		return "", ErrNoSession
	}
	return id, nil
}
