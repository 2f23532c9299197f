package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/pkg/utils"
)

const emailTakenMessage = "The email address is already registered. Please use a different email or log in."

type LoginInput struct {
	Email      string
	Password   string
	DeviceName string
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Firstname  string
	Lastname   string
	DeviceName string
}

// AuthService implements login and registration on top of the credential
// store and the session service.
type AuthService struct {
	users    UserStore
	sessions *SessionService
}

func NewAuthService(users UserStore, sessions *SessionService) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Login checks credentials and issues a token for the device.
// An unknown email yields ErrEmailNotFound and a bad password ErrWrongPassword.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, error) {
	verr := NewValidationError()
	requireField(verr, "email", in.Email)
	if strings.TrimSpace(in.Email) != "" && !utils.IsValidEmail(in.Email) {
		verr.Add("email", "The email field must be a valid email address.")
	}
	requireField(verr, "password", in.Password)
	requireString(verr, "device_name", in.DeviceName)
	if err := verr.OrNil(); err != nil {
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrEmailNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	ok, err := utils.VerifyPassword(in.Password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", ErrWrongPassword
	}

	return s.sessions.CreateSession(ctx, user, in.DeviceName)
}

// Register creates the user and issues a first token, exactly like Login.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	verr := NewValidationError()
	requireString(verr, "name", in.Name)
	requireString(verr, "email", in.Email)
	if strings.TrimSpace(in.Email) != "" && !utils.IsValidEmail(in.Email) {
		verr.Add("email", "The email field must be a valid email address.")
	}
	requireField(verr, "password", in.Password)
	requireString(verr, "firstname", in.Firstname)
	requireString(verr, "lastname", in.Lastname)
	requireString(verr, "device_name", in.DeviceName)
	if err := verr.OrNil(); err != nil {
		return "", err
	}

	email := utils.NormalizeEmail(in.Email)
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return "", emailTaken()
	case !errors.Is(err, ErrNotFound):
		return "", fmt.Errorf("check existing user: %w", err)
	}

	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Firstname:    strings.TrimSpace(in.Firstname),
		Lastname:     strings.TrimSpace(in.Lastname),
	}
	token, plaintext, err := s.sessions.NewToken(in.DeviceName)
	if err != nil {
		return "", err
	}
	if err := s.users.CreateWithToken(ctx, &user, &token); err != nil {
		// a concurrent registration won the unique index
		if errors.Is(err, ErrDuplicate) {
			return "", emailTaken()
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	return plaintext, nil
}

func emailTaken() error {
	verr := NewValidationError()
	verr.Add("email", emailTakenMessage)
	return verr
}

// maxStringLength matches the VARCHAR(255) columns.
const maxStringLength = 255

func requireField(verr *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		verr.Add(field, fmt.Sprintf("The %s field is required.", fieldLabel(field)))
	}
}

// requireString is requireField plus the column length limit, counted in characters.
func requireString(verr *ValidationError, field, value string) {
	requireField(verr, field, value)
	if utf8.RuneCountInString(value) > maxStringLength {
		verr.Add(field, fmt.Sprintf("The %s field must not be greater than %d characters.", fieldLabel(field), maxStringLength))
	}
}

func fieldLabel(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
