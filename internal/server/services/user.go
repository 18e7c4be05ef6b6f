package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/cryptox"
	"github.com/dmitrijs2005/imagekeeper/internal/dbx"
	"github.com/dmitrijs2005/imagekeeper/internal/logging"
	"github.com/dmitrijs2005/imagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/imagekeeper/internal/server/config"
	"github.com/dmitrijs2005/imagekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
	"github.com/dmitrijs2005/imagekeeper/internal/server/notify"
	"github.com/dmitrijs2005/imagekeeper/internal/server/otp"
	"github.com/dmitrijs2005/imagekeeper/internal/server/pending"
	"github.com/dmitrijs2005/imagekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/imagekeeper/internal/server/storage"
)

const avatarFolder = "user-profiles"

// UserDeps are the collaborators of UserService besides the database.
type UserDeps struct {
	Pending    pending.Store
	OTP        *otp.Generator
	Tokens     *auth.Issuer
	Dispatcher *notify.Dispatcher
	Media      storage.MediaHost
	Logger     logging.Logger
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	deps        UserDeps
	logger      logging.Logger

	otpExpiry         time.Duration
	minPasswordLength int
	echoOTP           bool

	now func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, deps UserDeps) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &UserService{
		db:                db,
		repomanager:       m,
		deps:              deps,
		logger:            logger.With("module", "users"),
		otpExpiry:         cfg.OTPExpiry,
		minPasswordLength: cfg.MinPasswordLength,
		echoOTP:           cfg.EchoOTPWithoutMailer,
		now:               time.Now,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterResult is returned by Register and ResendOTP. EchoOTP is only
// filled when no mailer is configured and echoing was switched on.
type RegisterResult struct {
	Email   string
	EchoOTP string
}

type LoginResult struct {
	Token string
	User  models.PublicUser
}

type ProfileInput struct {
	Username *string
	Email    *string
	Password *string
	Avatar   *Upload
}

type ProfileResult struct {
	User      models.PublicUser
	NoChanges bool
}

// normalizeEmail only trims: email keys are case-sensitive.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func validateEmail(email string) error {
	if email == "" {
		return common.NewValidationError("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return common.NewValidationError("email", "invalid email address")
	}
	return nil
}

func (s *UserService) validatePassword(field, password string) error {
	if len(password) < s.minPasswordLength {
		return common.NewValidationError(field, fmt.Sprintf("password must be at least %d characters", s.minPasswordLength))
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (res *RegisterResult, err error) {
	defer func() { countResult(metrics.AuthRegistrationsTotal, err) }()

	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)

	if username == "" {
		return nil, common.NewValidationError("username", "username is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.validatePassword("password", in.Password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	_, err = repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.NewConflictError("Email already registered")
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("%w: lookup user: %v", common.ErrorInternal, err)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	code, err := s.deps.OTP.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	rec := &models.PendingRegistration{
		Email:     email,
		OTP:       code,
		ExpiresAt: s.now().Add(s.otpExpiry),
		User: models.PendingUser{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
		},
	}
	if err := s.deps.Pending.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: store pending registration: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "registration pending", "email", email)

	return s.deliver(ctx, email, code), nil
}

// ResendOTP issues a fresh code for an existing pending registration.
func (s *UserService) ResendOTP(ctx context.Context, email string) (*RegisterResult, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	code, err := s.deps.OTP.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if _, err := s.deps.Pending.Reissue(ctx, email, code, s.now().Add(s.otpExpiry)); err != nil {
		return nil, err
	}

	return s.deliver(ctx, email, code), nil
}

// deliver sends the code. A failed delivery is logged and counted but
// never fails the caller: the pending record stays and a new code can be
// requested.
func (s *UserService) deliver(ctx context.Context, email, code string) *RegisterResult {
	res := &RegisterResult{Email: email}

	if !s.deps.Dispatcher.Configured() {
		s.logger.Warn(ctx, "no mailer configured, otp not sent", "email", email)
		if s.echoOTP {
			res.EchoOTP = code
		}
		return res
	}

	if err := s.deps.Dispatcher.Dispatch(ctx, email, code, s.otpExpiry); err != nil {
		metrics.NotifyFailuresTotal.Inc()
		s.logger.Error(ctx, "otp delivery failed", "email", email, "error", err)
	}
	return res
}

// VerifyOTP consumes the pending registration for email and creates the
// verified user. It returns the new user's id.
func (s *UserService) VerifyOTP(ctx context.Context, email, code string) (id string, err error) {
	defer func() { countResult(metrics.AuthVerificationsTotal, err) }()

	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return "", err
	}
	if !s.deps.OTP.Valid(code) {
		return "", common.NewValidationError("otp", fmt.Sprintf("otp must be %d digits", s.deps.OTP.Length()))
	}

	rec, err := s.deps.Pending.Consume(ctx, email, code, s.now())
	if err != nil {
		return "", err
	}

	user := &models.User{
		Username:        rec.User.Username,
		Email:           rec.User.Email,
		PasswordHash:    rec.User.PasswordHash,
		IsEmailVerified: true,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return "", common.NewConflictError("Email already registered")
		}
		if rerr := s.deps.Pending.Restore(ctx, rec); rerr != nil {
			s.logger.Error(ctx, "restore pending registration", "email", email, "error", rerr)
		}
		return "", fmt.Errorf("%w: create user: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user verified", "user_id", user.ID)
	return user.ID, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (res *LoginResult, err error) {
	defer func() { countResult(metrics.AuthLoginsTotal, err) }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewValidationError("", "email and password are required")
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup user: %v", common.ErrorInternal, err)
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		return nil, common.ErrEmailNotVerified
	}

	token, err := s.deps.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	metrics.TokensIssuedTotal.Inc()

	return &LoginResult{Token: token, User: user.Public()}, nil
}

// ResetPassword sets a new password for an authenticated user.
func (s *UserService) ResetPassword(ctx context.Context, userID, newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" {
		return common.NewValidationError("newPassword", "new password and confirmation are required")
	}
	if newPassword != confirmPassword {
		return common.ErrPasswordMismatch
	}
	if err := s.validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset", "user_id", userID)
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := user.Public()
	return &p, nil
}

// UpdateProfile applies the given changes to the authenticated user. The
// avatar's spooled file is removed on every path.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*ProfileResult, error) {
	defer in.Avatar.Remove()

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var upd models.ProfileUpdate

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, common.NewValidationError("username", "username cannot be empty")
		}
		if name != user.Username {
			upd.Username = &name
		}
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			other, err := repo.GetByEmail(ctx, email)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, common.NewConflictError("Email already in use by another account")
			case err != nil && !errors.Is(err, common.ErrorNotFound):
				return nil, fmt.Errorf("%w: lookup user: %v", common.ErrorInternal, err)
			}
			upd.Email = &email
		}
	}

	if in.Password != nil {
		if err := s.validatePassword("password", *in.Password); err != nil {
			return nil, err
		}
	}

	var avatar *storage.RemoteObject
	if in.Avatar != nil {
		format, err := detectFormat(in.Avatar.Filename, in.Avatar.File)
		if err != nil {
			return nil, err
		}
		avatar, err = s.deps.Media.Upload(ctx, avatarFolder, in.Avatar.Filename, in.Avatar.File, in.Avatar.File.Size, "image/"+format)
		if err != nil {
			return nil, err
		}
		upd.ProfilePictureURL = &avatar.URL
	}

	if upd.Empty() && in.Password == nil {
		return &ProfileResult{User: user.Public(), NoChanges: true}, nil
	}

	var hash string
	if in.Password != nil {
		if hash, err = cryptox.HashPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	updated := user
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := s.repomanager.Users(tx)
		if hash != "" {
			if err := txRepo.UpdatePassword(ctx, userID, hash); err != nil {
				return err
			}
		}
		if !upd.Empty() {
			u, err := txRepo.UpdateProfile(ctx, userID, upd)
			if err != nil {
				return err
			}
			updated = u
		}
		return nil
	})
	if err != nil {
		if avatar != nil {
			s.discardRemote(ctx, avatar.ObjectID)
		}
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.NewConflictError("Email already in use by another account")
		}
		return nil, err
	}

	s.logger.Info(ctx, "profile updated", "user_id", userID)
	return &ProfileResult{User: updated.Public()}, nil
}

func (s *UserService) discardRemote(ctx context.Context, objectID string) {
	if err := s.deps.Media.Delete(ctx, objectID); err != nil {
		s.logger.Warn(ctx, "remove orphaned avatar", "object_id", objectID, "error", err)
	}
}
