package handlers

import (
	"net/http"

	"github.com/AnshRaj112/moodjournal-backend/internal/middleware"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

// UserResponse is the public view of the authenticated user.
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Login issues a token for {email, password, device_name}.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r, maxFieldsBody)
	if err != nil {
		if tooLarge(err) {
			err = bodyTooLargeError()
		}
		writeAuthError(w, r, "login", err, "error")
		return
	}

	token, err := h.auth.Login(r.Context(), services.LoginInput{
		Email:      fields["email"],
		Password:   fields["password"],
		DeviceName: fields["device_name"],
	})
	if err != nil {
		writeAuthError(w, r, "login", err, "error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"login successful": token})
}

// Register creates an account and issues its first token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r, maxFieldsBody)
	if err != nil {
		if tooLarge(err) {
			err = bodyTooLargeError()
		}
		writeAuthError(w, r, "register", err, "user already exist")
		return
	}

	token, err := h.auth.Register(r.Context(), services.RegisterInput{
		Name:       fields["name"],
		Email:      fields["email"],
		Password:   fields["password"],
		Firstname:  fields["firstname"],
		Lastname:   fields["lastname"],
		DeviceName: fields["device_name"],
	})
	if err != nil {
		writeAuthError(w, r, "register", err, "user already exist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"register successfull": token})
}

// Logout revokes the token the request authenticated with. Other devices
// stay signed in.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeAuthError(w, r, "logout", services.ErrUnauthenticated, "error")
		return
	}
	if err := h.sessions.InvalidateSession(r.Context(), token.ID); err != nil {
		writeAuthError(w, r, "logout", err, "error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"success": "token successfully deleted"})
}

// User returns the caller's profile.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeAuthError(w, r, "user", services.ErrUnauthenticated, "error")
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
	})
}
