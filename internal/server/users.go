package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"taskhive/internal/storage/sqlite"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userPayload is the public identity shape returned by auth endpoints.
type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponse struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

// handleRegister creates a new account and logs it in.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, "email is required")
	}
	if req.Password == "" {
		errs = append(errs, "password is required")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Validation failed", Errors: errs})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.fail(c, err, "", "Registration failed")
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), req.Name, req.Email, string(hash))
	if err != nil {
		s.fail(c, err, "", "Registration failed")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.fail(c, err, "", "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		User:  userPayload{ID: user.ID, Name: user.Name, Email: user.Email},
		Token: token,
	})
}

// handleLogin verifies credentials and issues a token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := s.store.UserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, sqlite.ErrNotFound) {
		badRequest(c, "Invalid email or password")
		return
	}
	if err != nil {
		s.fail(c, err, "", "Login failed")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		badRequest(c, "Invalid email or password")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.fail(c, err, "", "Login failed")
		return
	}

	c.JSON(http.StatusOK, authResponse{
		User:  userPayload{ID: user.ID, Name: user.Name, Email: user.Email},
		Token: token,
	})
}

// handleCurrentUser returns the authenticated requester's identity.
func (s *Server) handleCurrentUser(c *gin.Context) {
	user, err := s.store.UserByID(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err, "User not found", "Failed to get user")
		return
	}
	c.JSON(http.StatusOK, userPayload{ID: user.ID, Name: user.Name, Email: user.Email})
}

// handleUserByID fetches any user by id. The credential hash is never
// serialized.
func (s *Server) handleUserByID(c *gin.Context) {
	id, ok := parseUUID(c, "id", "user ID")
	if !ok {
		return
	}

	user, err := s.store.UserByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "User not found", "Failed to get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// handleValidateToken confirms the bearer token resolved to a user.
func (s *Server) handleValidateToken(c *gin.Context) {
	c.JSON(http.StatusOK, true)
}
