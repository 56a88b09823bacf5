// Package session ties requests to a logged-in username. The browser holds
// a signed token naming a server-side session record, so logging out or
// deleting the account invalidates every copy of the token.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"echochats/models"
	"echochats/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "session"

	storeTimeout = 10 * time.Second
)

var ErrNoSession = errors.New("no session")

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Manager struct {
	store  store.SessionStore
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(s store.SessionStore, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store:  s,
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Start creates a session for username and sets the cookie on the response.
func (m *Manager) Start(c *gin.Context, username string) error {
	now := m.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if err := m.store.Create(ctx, sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	token, err := m.sign(sess)
	if err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}

// Load returns the session behind the request's cookie. Invalid, expired
// and revoked tokens all yield ErrNoSession.
func (m *Manager) Load(c *gin.Context) (*models.Session, error) {
	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		return nil, ErrNoSession
	}

	claims, err := m.parse(token)
	if err != nil {
		return nil, ErrNoSession
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	sess, err := m.store.Get(ctx, claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if sess.Username != claims.Username {
		return nil, ErrNoSession
	}
	return sess, nil
}

// End destroys the current session, if any, and clears the cookie.
func (m *Manager) End(c *gin.Context) error {
	defer m.clearCookie(c)

	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		return nil
	}
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()
	return m.store.Delete(ctx, claims.ID)
}

// EndAll destroys every session of username and clears the cookie.
func (m *Manager) EndAll(c *gin.Context, username string) error {
	defer m.clearCookie(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()
	return m.store.DeleteByUsername(ctx, username)
}

func (m *Manager) sign(sess *models.Session) (string, error) {
	claims := &Claims{
		Username: sess.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.Username,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

func (m *Manager) clearCookie(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
}

