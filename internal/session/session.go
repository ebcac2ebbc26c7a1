package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/USSTM/facility-portal/internal/permissions"
	"github.com/USSTM/facility-portal/internal/portal"
	"github.com/USSTM/facility-portal/internal/rbac"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrCorrupt  = errors.New("stored session is corrupt")
)

// Session is the identity and permission bundle of one signed-in client.
// Permissions are kept as stored; read them through Permissions().
type Session struct {
	UserID         string          `json:"userId"`
	Role           rbac.Role       `json:"role"`
	Portal         portal.Portal   `json:"portal"`
	VendorID       string          `json:"vendorId,omitempty"`
	RawPermissions json.RawMessage `json:"permissions,omitempty"`
	LoggedInAt     time.Time       `json:"loggedInAt"`
}

// Permissions returns the normalized permission set of the session.
func (s *Session) Permissions() permissions.Set {
	if s == nil {
		return permissions.Default()
	}
	return permissions.Normalize(s.RawPermissions)
}

// ValidateIntegrity checks the session's internal consistency: portal and
// role are present, a vendor session carries a vendor id, and the role is
// permitted on the portal. Nil or partially written sessions are invalid.
func ValidateIntegrity(s *Session) bool {
	if s == nil || s.Portal == "" || s.Role == "" {
		return false
	}
	if s.Portal == portal.Vendor && strings.TrimSpace(s.VendorID) == "" {
		return false
	}
	return rbac.IsRoleAllowed(s.Portal, s.Role)
}

// Decode parses stored session bytes. Invalid JSON is reported as ErrCorrupt.
func Decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, ErrCorrupt
	}
	return &s, nil
}

func Encode(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

type contextKey string

const (
	sessionKey   contextKey = "session"
	sessionIDKey contextKey = "session_id"
	resolvedKey  contextKey = "session_resolved"
)

// WithResolved marks the session lookup for ctx as finished, whether or not
// a session was found.
func WithResolved(ctx context.Context) context.Context {
	return context.WithValue(ctx, resolvedKey, true)
}

// Resolved is false until the lookup finished. Consumers must not decide
// anything about an unresolved request.
func Resolved(ctx context.Context) bool {
	resolved, _ := ctx.Value(resolvedKey).(bool)
	return resolved
}

// WithSession attaches the resident session and its id to ctx.
func WithSession(ctx context.Context, id string, s *Session) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, id)
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}

func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}
