package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/misd-it/misdesk/internal/auth"
	"github.com/misd-it/misdesk/internal/config"
	"github.com/misd-it/misdesk/internal/domain"
	"github.com/misd-it/misdesk/internal/repository"
	apperrors "github.com/misd-it/misdesk/pkg/util"
)

// StaffService manages staff identities: sign-up, sign-in, role grants
// and removal with its unassign cascade.
type StaffService struct {
	profiles repository.ProfileRepository
	tickets  repository.TicketRepository
	tokens   *auth.TokenManager
	cache    auth.RoleCache
	cfg      config.AuthConfig
	logger   *zap.Logger
}

// StaffDependencies bundles collaborators for the staff service.
type StaffDependencies struct {
	ProfileRepo repository.ProfileRepository
	TicketRepo  repository.TicketRepository
	Tokens      *auth.TokenManager
	RoleCache   auth.RoleCache
	Logger      *zap.Logger
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.AuthConfig, deps StaffDependencies) *StaffService {
	return &StaffService{
		profiles: deps.ProfileRepo,
		tickets:  deps.TicketRepo,
		tokens:   deps.Tokens,
		cache:    deps.RoleCache,
		cfg:      cfg,
		logger:   deps.Logger,
	}
}

// SignUpInput describes account creation.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
}

// SignInResult carries the issued token.
type SignInResult struct {
	Profile   *domain.Profile
	Token     string
	ExpiresAt time.Time
}

// Register creates a profile with the default minimal role set. This is
// the public bootstrap path; team-page additions go through AddTeamMember.
func (s *StaffService) Register(ctx context.Context, input SignUpInput) (*domain.Profile, error) {
	return s.createProfile(ctx, input)
}

// AddTeamMember creates an account from the team management page.
func (s *StaffService) AddTeamMember(ctx context.Context, actor Actor, input SignUpInput) (*domain.Profile, error) {
	if !actor.Permissions.Has(auth.PermCanAddTeams) {
		return nil, apperrors.NewForbidden("missing permission: Can Add Teams")
	}
	return s.createProfile(ctx, input)
}

func (s *StaffService) createProfile(ctx context.Context, input SignUpInput) (*domain.Profile, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	if len(input.DisplayName) < 2 {
		return nil, apperrors.NewValidationError("display name must be at least 2 characters", nil)
	}
	if !strings.Contains(input.Email, "@") {
		return nil, apperrors.NewValidationError("invalid email address", nil)
	}
	if len(input.Password) < 6 {
		return nil, apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	if existing, err := s.profiles.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("this email is already registered", nil)
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	profile := &domain.Profile{
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: hash,
		Roles:        []string{string(auth.PermCanView)},
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// A concurrent registration can slip past the lookup above and
		// land on the profiles.email unique constraint.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewConflict("this email is already registered", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// SignIn verifies credentials and issues a JWT.
func (s *StaffService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(profile.ID, profile.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &SignInResult{Profile: profile, Token: token, ExpiresAt: expiresAt}, nil
}

// List returns all staff profiles.
func (s *StaffService) List(ctx context.Context, actor Actor) ([]domain.Profile, error) {
	if !actor.Permissions.Has(auth.PermCanView) {
		return nil, apperrors.NewForbidden("missing permission: Can View")
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return profiles, nil
}

// UpdateRoles replaces a profile's permission set. Unknown permission
// strings are rejected; Can View is always forced back in.
func (s *StaffService) UpdateRoles(ctx context.Context, actor Actor, profileID string, roles []string) (*domain.Profile, error) {
	if !actor.Permissions.Has(auth.PermCanEditTeams) {
		return nil, apperrors.NewForbidden("missing permission: Can Edit Teams")
	}

	perms, unknown := auth.ParsePermissions(roles)
	if len(unknown) > 0 {
		return nil, apperrors.NewValidationError("unsupported permissions", map[string]any{"roles": unknown})
	}
	if len(perms) == 0 {
		perms = auth.NewPermissionSet(auth.PermCanView)
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	profile.Roles = perms.Strings()
	if err := s.profiles.UpdateRoles(ctx, profileID, profile.Roles); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, profileID)
	}
	return profile, nil
}

// Delete removes a staff identity. Tickets referencing it as assignee
// are unassigned, not deleted, before the profile row is removed.
func (s *StaffService) Delete(ctx context.Context, actor Actor, profileID string) error {
	if !actor.Permissions.Has(auth.PermCanDelete) {
		return apperrors.NewForbidden("missing permission: Can Delete")
	}

	if _, err := s.profiles.GetByID(ctx, profileID); err != nil {
		return apperrors.MapError(err)
	}

	if err := s.tickets.UnassignByAssignee(ctx, profileID); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.profiles.Delete(ctx, profileID); err != nil {
		return apperrors.MapError(err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, profileID)
	}
	s.logger.Info("staff profile deleted", zap.String("profile_id", profileID))
	return nil
}
