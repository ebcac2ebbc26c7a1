package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/USSTM/facility-portal/internal/accounts"
	"github.com/USSTM/facility-portal/internal/audit"
	"github.com/USSTM/facility-portal/internal/config"
	"github.com/USSTM/facility-portal/internal/logging"
	"github.com/USSTM/facility-portal/internal/permissions"
	"github.com/USSTM/facility-portal/internal/rbac"
	"github.com/USSTM/facility-portal/internal/session"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRoleUnassigned     = errors.New("account role has no portal")
)

type accountFinder interface {
	GetByEmail(ctx context.Context, email string) (*accounts.Account, error)
}

type tokenIssuer interface {
	GenerateToken(ctx context.Context, sessionID, userID string) (string, error)
}

type auditor interface {
	Log(ctx context.Context, ev audit.Event) audit.Result
}

// checked against when the email is unknown so both paths cost a bcrypt
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("facility-portal"), bcrypt.DefaultCost)

// AuthService signs accounts in by writing a session slot and handing back a
// token that points at it.
type AuthService struct {
	accounts  accountFinder
	sessions  session.Store
	tokens    tokenIssuer
	templates permissions.Templates
	audit     auditor
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(accts accountFinder, sessions session.Store, tokens tokenIssuer, templates permissions.Templates, notifier auditor, cfg config.SessionConfig) *AuthService {
	if templates == nil {
		templates = permissions.DefaultTemplates()
	}
	return &AuthService{
		accounts:  accts,
		sessions:  sessions,
		tokens:    tokens,
		templates: templates,
		audit:     notifier,
		ttl:       cfg.TTL,
		now:       time.Now,
	}
}

type LoginResult struct {
	Token     string
	SessionID string
	Session   *session.Session
	ExpiresAt time.Time
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, accounts.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	p, ok := rbac.PortalForRole(acc.Role)
	if !ok {
		return nil, ErrRoleUnassigned
	}

	sess := &session.Session{
		UserID:         acc.ID.String(),
		Role:           acc.Role,
		Portal:         p,
		VendorID:       acc.VendorID,
		RawPermissions: s.permissionsFor(acc).JSON(),
		LoggedInAt:     s.now().UTC(),
	}

	id := uuid.NewString()
	if err := s.sessions.Put(ctx, id, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	token, err := s.tokens.GenerateToken(ctx, id, sess.UserID)
	if err != nil {
		_ = s.sessions.Clear(ctx, id)
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	if s.audit != nil {
		s.audit.Log(session.WithSession(ctx, id, sess), audit.Event{
			Action:   "login",
			Entity:   "session",
			EntityID: id,
		})
	}
	logging.Info("user logged in", "user_id", sess.UserID, "portal", sess.Portal)

	return &LoginResult{
		Token:     token,
		SessionID: id,
		Session:   sess,
		ExpiresAt: sess.LoggedInAt.Add(s.ttl),
	}, nil
}

// Logout drops the session slot. Unknown or already cleared sessions are fine.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if s.audit != nil {
		s.audit.Log(ctx, audit.Event{Action: "logout", Entity: "session", EntityID: sessionID})
	}
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// a stored per-user record wins over the role template
func (s *AuthService) permissionsFor(acc *accounts.Account) permissions.Set {
	if len(acc.Permissions) > 0 {
		return permissions.Normalize(acc.Permissions)
	}
	return s.templates.ForRole(acc.Role).Permissions
}
