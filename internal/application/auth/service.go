package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/shared"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/apiclient"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/config"
)

// Service handles login, registration and logout against the API.
type Service struct {
	api      *apiclient.Client
	auth     *Authenticator
	session  *Session
	paths    config.AuthConfig
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new auth service
func NewService(api *apiclient.Client, authenticator *Authenticator, paths config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:      api,
		auth:     authenticator,
		session:  authenticator.Session(),
		paths:    paths,
		validate: validator.New(),
		logger:   logger.Named("auth"),
		now:      time.Now,
	}
}

// Login exchanges credentials for a token pair, stores it, then fetches
// the current user. A failed user lookup does not undo the login.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Username and password are required")
	}

	s.logger.Info("Login attempt", zap.String("username", input.Username))

	resp, err := s.api.Post(ctx, s.paths.LoginPath, "", input)
	if err != nil {
		s.logger.Warn("Login rejected", zap.String("username", input.Username), zap.Error(err))
		return nil, err
	}

	var pair Credentials
	if err := apiclient.DecodeJSON(resp, &pair); err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("login response carries no access token")
	}

	if err := s.session.SetTokens(ctx, pair.Access, pair.Refresh); err != nil {
		return nil, fmt.Errorf("storing tokens: %w", err)
	}

	result := &LoginResult{Credentials: pair}

	if s.paths.CurrentUserPath != "" {
		user, err := s.fetchCurrentUser(ctx, input.Username)
		if err != nil {
			s.logger.Warn("Failed to load current user", zap.Error(err))
		} else {
			if err := s.session.SetUser(ctx, user); err != nil {
				return nil, fmt.Errorf("storing user: %w", err)
			}
			result.User = &user
		}
	}

	s.logger.Info("Login successful", zap.String("username", input.Username))
	return result, nil
}

// fetchCurrentUser reads the current user endpoint, which serves either a
// single object or a (possibly paginated) list of users.
func (s *Service) fetchCurrentUser(ctx context.Context, username string) (retail.User, error) {
	var user retail.User
	err := s.auth.Do(ctx, func(ctx context.Context, access string) error {
		resp, err := s.api.Get(ctx, s.paths.CurrentUserPath, access)
		if err != nil {
			return err
		}

		if users, err := apiclient.DecodeList[retail.User](resp.Body); err == nil && len(users) > 0 {
			user = users[0]
			for _, u := range users {
				if u.Username == username {
					user = u
					break
				}
			}
			return nil
		}

		if err := apiclient.DecodeJSON(resp, &user); err != nil {
			return err
		}
		if user.Username == "" && user.ID == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	return user, err
}

// Register creates a new account. It does not log in.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	if err := s.validate.Struct(input); err != nil {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}

	if _, err := s.api.Post(ctx, s.paths.RegisterPath, "", input); err != nil {
		s.logger.Warn("Registration rejected", zap.String("username", input.Username), zap.Error(err))
		return err
	}

	s.logger.Info("Account registered", zap.String("username", input.Username))
	return nil
}

// Logout clears the session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("Logged out")
	return nil
}

// Status reports the current session without contacting the API.
func (s *Service) Status() Status {
	creds := s.session.Current()
	st := Status{
		LoggedIn:        !creds.Empty(),
		HasRefreshToken: creds.Refresh != "",
	}
	if u, ok := s.session.User(); ok {
		st.User = &u
	}
	if creds.Empty() {
		return st
	}

	claims, err := InspectToken(creds.Access)
	if err != nil {
		s.logger.Debug("Access token is not a readable JWT", zap.Error(err))
		return st
	}
	if !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt
		st.AccessExpiresAt = &exp
		st.AccessExpired = claims.Expired(s.now())
	}
	return st
}
