package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/google/uuid"
)

const (
	// sessionSecretBytes is the amount of randomness in each token secret
	sessionSecretBytes = 32
	// tokenSeparator splits the public token id from the secret
	tokenSeparator = "|"
)

// SessionService issues, validates and revokes opaque bearer tokens.
// Tokens never expire; they live until the owner logs out on that device.
type SessionService struct {
	tokens TokenStore
	users  UserStore
}

func NewSessionService(tokens TokenStore, users UserStore) *SessionService {
	return &SessionService{tokens: tokens, users: users}
}

// CreateSession creates a new token for user on deviceName and returns the
// plaintext. Repeated logins from the same device each get their own token.
func (s *SessionService) CreateSession(ctx context.Context, user models.User, deviceName string) (string, error) {
	token, plaintext, err := s.NewToken(deviceName)
	if err != nil {
		return "", err
	}
	token.UserID = user.ID
	if err := s.tokens.Create(ctx, &token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return plaintext, nil
}

// NewToken builds an unsaved token for deviceName and returns it with the
// plaintext to hand to the client. The caller sets UserID and persists it.
func (s *SessionService) NewToken(deviceName string) (models.AccessToken, string, error) {
	secretBytes := make([]byte, sessionSecretBytes)
	if _, err := rand.Read(secretBytes); err != nil {
		return models.AccessToken{}, "", fmt.Errorf("generate token secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	token := models.AccessToken{
		ID:        uuid.New(),
		Name:      deviceName,
		TokenHash: hashTokenSecret(secret),
	}
	return token, token.ID.String() + tokenSeparator + secret, nil
}

// ValidateSession resolves a plaintext token to its owner. Every failure mode
// (malformed, unknown, revoked, wrong secret, owner gone) is ErrUnauthenticated;
// only infrastructure errors come back as something else.
func (s *SessionService) ValidateSession(ctx context.Context, plaintext string) (models.User, models.AccessToken, error) {
	idPart, secret, ok := strings.Cut(plaintext, tokenSeparator)
	if !ok || secret == "" {
		return models.User{}, models.AccessToken{}, ErrUnauthenticated
	}
	tokenID, err := uuid.Parse(idPart)
	if err != nil {
		return models.User{}, models.AccessToken{}, ErrUnauthenticated
	}

	token, err := s.tokens.FindByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, models.AccessToken{}, ErrUnauthenticated
		}
		return models.User{}, models.AccessToken{}, fmt.Errorf("load token: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(token.TokenHash), []byte(hashTokenSecret(secret))) != 1 {
		return models.User{}, models.AccessToken{}, ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, models.AccessToken{}, ErrUnauthenticated
		}
		return models.User{}, models.AccessToken{}, fmt.Errorf("load token owner: %w", err)
	}

	if err := s.tokens.Touch(ctx, token.ID); err != nil {
		log.Printf("WARN: failed to record token use for %s: %v", token.ID, err)
	}

	return user, token, nil
}

// InvalidateSession deletes the token. An already-deleted token is not an error.
func (s *SessionService) InvalidateSession(ctx context.Context, tokenID uuid.UUID) error {
	if err := s.tokens.Delete(ctx, tokenID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func hashTokenSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
