package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const credFileName = "credentials.json"

// EnvVar is the variable that overrides the saved token.
const EnvVar = "LEADS_TOKEN"

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // from the JWT exp claim, if any
}

// Credentials is the token file under one directory (~/.leads by default).
type Credentials struct {
	dir string
}

func New(dir string) *Credentials { return &Credentials{dir: dir} }

// Default uses ~/.leads.
func Default() (*Credentials, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("home: %w", err)
	}
	return New(filepath.Join(home, ".leads")), nil
}

func (c *Credentials) path() string { return filepath.Join(c.dir, credFileName) }

// Get returns the token to use. envToken (the value of LEADS_TOKEN) wins
// over the file. A nil TokenInfo with a nil error means not logged in.
func (c *Credentials) Get(envToken string) (*TokenInfo, error) {
	// 1) env override
	if tok := stripBearer(envToken); tok != "" {
		return &TokenInfo{Token: tok, Source: "env", ExpiresAt: Expiry(tok)}, nil
	}

	// 2) file
	b, err := os.ReadFile(c.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// Set saves token, owner-only. The expiry is taken from the token when it
// is a JWT with an exp claim.
func (c *Credentials) Set(token string) error {
	token = stripBearer(token)
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: Expiry(token),
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(c.path(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Delete removes the token file. Not being logged in is not an error.
func (c *Credentials) Delete() error {
	if err := os.Remove(c.path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Claims decodes a JWT payload without verifying its signature; the
// server does the verifying. Opaque tokens return an error.
func Claims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse jwt: %w", err)
	}
	return claims, nil
}

// Expiry is the exp claim of a JWT, or nil.
func Expiry(token string) *time.Time {
	claims, err := Claims(token)
	if err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

// stripBearer trims s and drops a leading "Bearer" scheme, so a bare
// "Bearer" is an empty token.
func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	const scheme = "bearer"
	if len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme) {
		rest := s[len(scheme):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return strings.TrimSpace(rest)
		}
	}
	return s
}
