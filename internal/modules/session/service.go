// Package session keeps the signed-in user and token of the single local operator.
// Credentials are not verified: any non-empty email and password sign in.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/events"
	"github.com/aristath/stockboard/internal/storage"
)

const moduleName = "session"

// ErrUnauthenticated is returned by operations that need a signed-in user or token.
var ErrUnauthenticated = errors.New("not authenticated")

// Role of a user
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is the profile of the current operator
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}

// ProfilePatch updates individual profile fields
type ProfilePatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// State is the document stored under auth-storage
type State struct {
	User            *User  `json:"user"`
	Token           string `json:"token,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Store persists whole documents under fixed keys
type Store interface {
	Load(key string, v interface{}) (bool, error)
	Save(key string, v interface{}) error
}

// Emitter publishes session events
type Emitter interface {
	EmitTyped(module string, data events.EventData)
}

// Service manages the session state
type Service struct {
	mu    sync.Mutex
	state State

	store   Store
	emitter Emitter
	newID   func() string
	log     zerolog.Logger
}

// NewService creates a signed-out session service
func NewService(store Store, emitter Emitter, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		emitter: emitter,
		newID:   func() string { return uuid.New().String() },
		log:     log.With().Str("service", "session").Logger(),
	}
}

// Load restores the persisted session, if any
func (s *Service) Load() error {
	if s.store == nil {
		return nil
	}

	var st State
	found, err := s.store.Load(storage.KeyAuth, &st)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !found {
		return nil
	}
	// an authenticated session needs both a user and a token
	if st.IsAuthenticated && (st.User == nil || st.Token == "") {
		s.log.Warn().Msg("Discarding inconsistent stored session")
		st = State{}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the session state
func (s *Service) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Login signs in as an administrator
func (s *Service) Login(email, password string) (State, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return State{}, domain.NewValidationError("email", "must not be empty")
	}
	if password == "" {
		return State{}, domain.NewValidationError("password", "must not be empty")
	}

	return s.update("login", func(st *State) error {
		st.User = &User{
			ID:       s.newID(),
			Username: "admin",
			Email:    email,
			Role:     RoleAdmin,
		}
		st.Token = s.newToken()
		st.IsAuthenticated = true
		return nil
	})
}

// Logout clears the session
func (s *Service) Logout() (State, error) {
	return s.update("logout", func(st *State) error {
		*st = State{}
		return nil
	})
}

// Register records a new user without signing in
func (s *Service) Register(username, email, password string) (State, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return State{}, domain.NewValidationError("email", "must not be empty")
	}
	if password == "" {
		return State{}, domain.NewValidationError("password", "must not be empty")
	}
	if strings.TrimSpace(username) == "" {
		username = "user"
	}

	return s.update("register", func(st *State) error {
		st.User = &User{
			ID:       s.newID(),
			Username: strings.TrimSpace(username),
			Email:    email,
			Role:     RoleUser,
		}
		return nil
	})
}

// UpdateProfile applies the non-nil fields of patch to the current user
func (s *Service) UpdateProfile(patch ProfilePatch) (State, error) {
	if patch.Username != nil && strings.TrimSpace(*patch.Username) == "" {
		return State{}, domain.NewValidationError("username", "must not be empty")
	}

	return s.update("profile", func(st *State) error {
		if st.User == nil {
			return ErrUnauthenticated
		}
		u := *st.User
		if patch.Username != nil {
			u.Username = strings.TrimSpace(*patch.Username)
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.Avatar != nil {
			u.Avatar = *patch.Avatar
		}
		st.User = &u
		return nil
	})
}

// RefreshToken replaces the current token
func (s *Service) RefreshToken() (State, error) {
	return s.update("refresh", func(st *State) error {
		if st.Token == "" {
			return ErrUnauthenticated
		}
		st.Token = s.newToken()
		return nil
	})
}

func (s *Service) newToken() string {
	return "token-" + s.newID()
}

func (s *Service) update(action string, fn func(*State) error) (State, error) {
	s.mu.Lock()
	next := cloneState(s.state)
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return State{}, err
	}
	if s.store != nil {
		if err := s.store.Save(storage.KeyAuth, next); err != nil {
			s.mu.Unlock()
			s.log.Error().Err(err).Str("action", action).Msg("Failed to persist session")
			return State{}, fmt.Errorf("failed to persist session: %w", err)
		}
	}
	s.state = next
	s.mu.Unlock()

	s.log.Info().Str("action", action).Bool("authenticated", next.IsAuthenticated).Msg("Session updated")
	if s.emitter != nil {
		data := &events.SessionChangedData{Authenticated: next.IsAuthenticated, Action: action}
		if next.User != nil {
			data.UserID = next.User.ID
		}
		s.emitter.EmitTyped(moduleName, data)
	}
	return cloneState(next), nil
}

func cloneState(st State) State {
	out := st
	if st.User != nil {
		u := *st.User
		out.User = &u
	}
	return out
}
