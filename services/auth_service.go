package services

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"rosterhub/auth"
	"rosterhub/errors"
	"rosterhub/repositories"
)

type IAuthService interface {
	Login(email, password string) (Session, error)
	Register(cmd RegisterCommand) (Session, error)
}

type RegisterCommand struct {
	Name           string
	Email          string
	Password       string
	OrganizationID string
}

// Session is what a client keeps after register or login.
type Session struct {
	Token     string `json:"token"`
	ProfileID string `json:"profileId"`
	Name      string `json:"name"`
}

type AuthService struct {
	log      *slog.Logger
	profiles repositories.IProfileRepository
	tokens   *auth.TokenManager
}

func NewAuthService(log *slog.Logger, profiles repositories.IProfileRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{log: log, profiles: profiles, tokens: tokens}
}

func (s *AuthService) Register(cmd RegisterCommand) (Session, error) {
	// Business rules are checked before any expensive hashing
	if err := auth.ValidateRegister(auth.RegisterRequest{
		Name:           cmd.Name,
		Email:          cmd.Email,
		Password:       cmd.Password,
		OrganizationID: cmd.OrganizationID,
	}); err != nil {
		if stderrors.Is(err, errors.ErrInvalidPassword) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}

	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	profile, err := s.profiles.CreateProfile(cmd.Name, cmd.Email, hashedPassword)
	if err != nil {
		return Session{}, err
	}

	if cmd.OrganizationID != "" {
		if err := s.profiles.AddMember(cmd.OrganizationID, profile.ID); err != nil {
			return Session{}, fmt.Errorf("failed to join organization: %w", err)
		}
	}
	s.log.Info("Profile registered", "profile_id", profile.ID, "organization_id", cmd.OrganizationID)

	return s.sessionFor(profile)
}

func (s *AuthService) Login(email, password string) (Session, error) {
	profile, err := s.profiles.GetProfileByEmail(email)
	if err != nil {
		// Same answer for unknown e-mail and wrong password
		return Session{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, profile.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}
	return s.sessionFor(profile)
}

func (s *AuthService) sessionFor(profile repositories.Profile) (Session, error) {
	token, err := s.tokens.Generate(profile.ID, profile.Roles)
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}
	return Session{Token: token, ProfileID: profile.ID, Name: profile.Name}, nil
}
