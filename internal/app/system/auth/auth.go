// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	deviceIDKey = "device_id"

	deviceCookieMaxAge = 365 * 24 * 60 * 60
)

// Identity sources.
const (
	SourceHeader  = "header"
	SourceDevice  = "device"
	SourceSession = "session"
)

// Identity is the user a request acts for.
type Identity struct {
	UserID   string
	Name     string
	Email    string
	PhotoURL string
	Source   string
}

type ctxKey string

const identityKey ctxKey = "identity"

// CurrentIdentity returns the identity resolved by LoadIdentity.
func CurrentIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	return id, ok
}

// WithTestIdentity injects id into the request context. Used by tests.
func WithTestIdentity(r *http.Request, id Identity) *http.Request {
	return withIdentity(r, id)
}

func withIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

// Options configures a SessionManager.
type Options struct {
	SessionKey    string
	SessionName   string
	SessionDomain string
	Secure        bool

	// IdentityHeader names a header set by a trusted upstream identity
	// provider (for example X-Forwarded-User). Empty disables it.
	IdentityHeader string
	EmailHeader    string
	NameHeader     string

	// DeviceID, when set, is used for every request without an upstream
	// identity (single-device installs and the CLI).
	DeviceID string

	// DisableSessionDevice stops minting per-browser device ids.
	DisableSessionDevice bool
}

// SessionManager resolves request identities.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	opts  Options
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. In secure (prod) mode an
// empty session key is an error; otherwise a random per-process key is
// generated so local runs work without configuration.
func NewSessionManager(opts Options, logger *zap.Logger) (*SessionManager, error) {
	key := []byte(opts.SessionKey)
	switch {
	case len(key) == 0 && opts.Secure:
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	case len(key) == 0:
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, errors.New("session key: random source unavailable")
		}
		logger.Warn("session key not configured; using a random key, device ids reset on restart")
	case len(key) < 32:
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}

	if opts.SessionName == "" {
		opts.SessionName = "runtracker-session"
	}

	store := sessions.NewCookieStore(key)
	cookieOpts := &sessions.Options{
		Domain:   opts.SessionDomain,
		Path:     "/",
		MaxAge:   deviceCookieMaxAge,
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.Options = cookieOpts
	store.MaxAge(deviceCookieMaxAge)

	logger.Info("session store initialized",
		zap.Bool("secure", opts.Secure),
		zap.String("domain", opts.SessionDomain),
		zap.String("identity_header", opts.IdentityHeader),
		zap.Bool("fixed_device_id", opts.DeviceID != ""))

	return &SessionManager{store: store, name: opts.SessionName, opts: opts, log: logger}, nil
}

// LoadIdentity resolves the caller's identity and stores it in the
// request context. Resolution order: trusted upstream header, the
// configured device id, then a device id kept in the session cookie
// (minted on first visit).
func (sm *SessionManager) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := sm.fromHeader(r); ok {
			next.ServeHTTP(w, withIdentity(r, id))
			return
		}
		if sm.opts.DeviceID != "" {
			next.ServeHTTP(w, withIdentity(r, Identity{UserID: sm.opts.DeviceID, Source: SourceDevice}))
			return
		}
		if sm.opts.DisableSessionDevice {
			next.ServeHTTP(w, r)
			return
		}

		id, err := sm.fromSession(w, r)
		if err != nil {
			sm.log.Warn("device session unavailable", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withIdentity(r, id))
	})
}

// RequireIdentity rejects requests without an identity with 401.
func (sm *SessionManager) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentIdentity(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
	})
}

func (sm *SessionManager) fromHeader(r *http.Request) (Identity, bool) {
	if sm.opts.IdentityHeader == "" {
		return Identity{}, false
	}
	user := strings.TrimSpace(r.Header.Get(sm.opts.IdentityHeader))
	if user == "" {
		return Identity{}, false
	}
	id := Identity{UserID: user, Source: SourceHeader}
	if sm.opts.EmailHeader != "" {
		id.Email = strings.TrimSpace(r.Header.Get(sm.opts.EmailHeader))
	}
	if sm.opts.NameHeader != "" {
		id.Name = strings.TrimSpace(r.Header.Get(sm.opts.NameHeader))
	}
	return id, true
}

func (sm *SessionManager) fromSession(w http.ResponseWriter, r *http.Request) (Identity, error) {
	// a cookie signed with an old key yields a fresh session and an error;
	// the fresh session is still usable
	sess, err := sm.store.Get(r, sm.name)
	if sess == nil {
		return Identity{}, fmt.Errorf("get session: %w", err)
	}
	if v, ok := sess.Values[deviceIDKey].(string); ok && v != "" {
		return Identity{UserID: v, Source: SourceSession}, nil
	}

	deviceID := uuid.NewString()
	sess.Values[deviceIDKey] = deviceID
	if err := sess.Save(r, w); err != nil {
		return Identity{}, fmt.Errorf("save session: %w", err)
	}
	sm.log.Info("minted device identity", zap.String("device_id", deviceID))
	return Identity{UserID: deviceID, Source: SourceSession}, nil
}
