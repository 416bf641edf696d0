package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/constants"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/internal/model"
	"github.com/openpress/blogcms/pkg/mailer"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStore is the persistence surface the auth flows need. The login
// failure path keeps the counter write and the freeze write as separate
// operations; a single attempt performs exactly one of them.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateLoginFailure(ctx context.Context, id uint, errorLoginCount int) error
	FreezeAccount(ctx context.Context, id uint) error
	UpdateLoginSuccess(ctx context.Context, id uint, refreshToken string) error
	UpdatePasswordAndToken(ctx context.Context, id uint, passwordHash, refreshToken string) error
	ClearRefreshToken(ctx context.Context, id uint) error
}

// OtpStore persists the single per-email Otp row. GetByEmail reports a miss
// with gorm.ErrRecordNotFound.
type OtpStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Otp, error)
	Create(ctx context.Context, otp *model.Otp) error
	Save(ctx context.Context, otp *model.Otp) error
}

// LoginResult carries a freshly issued session. The handler turns it into
// the accessToken/refreshToken cookie pair.
type LoginResult struct {
	UserID       uint
	Email        string
	AccessToken  string
	RefreshToken string
}

// AuthService implements registration, login with progressive lockout, and
// the shared OTP state machine behind both the forget-password and
// change-password flows.
type AuthService struct {
	users  UserStore
	otps   OtpStore
	tokens *TokenService
	mail   mailer.Mailer
	otpCfg config.OtpConfig
	logger *zap.Logger

	// now is swapped out by tests to step through the expiry windows and
	// calendar-day resets.
	now func() time.Time
}

func NewAuthService(users UserStore, otps OtpStore, tokens *TokenService, mail mailer.Mailer, otpCfg config.OtpConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		otps:   otps,
		tokens: tokens,
		mail:   mail,
		otpCfg: otpCfg,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a new READER account.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (uint, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if existing != nil {
		return 0, apperrors.ErrUserExist
	}

	hash, err := hashPassword(password)
	if err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     constants.RoleReader,
		Status:   constants.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.logger.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("email", email),
	)

	return user.ID, nil
}

// Login checks the password under the lockout policy and issues a fresh
// token pair on success. Frozen accounts are rejected before the password is
// even compared, and stay frozen until manually cleared.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.Status == constants.StatusFreeze {
		return nil, apperrors.ErrAccountFreeze
	}

	if !checkPassword(user.Password, password) {
		// The counter lives on a calendar day: a wrong attempt on a new day
		// starts over at 1, otherwise the account freezes once the counter
		// has already reached the limit. Exactly one of the two writes
		// happens per attempt.
		isSameDate := sameCalendarDay(user.UpdatedAt, s.now())
		switch {
		case !isSameDate:
			err = s.users.UpdateLoginFailure(ctx, user.ID, 1)
		case user.ErrorLoginCount >= s.otpCfg.ErrorLimit:
			err = s.users.FreezeAccount(ctx, user.ID)
		default:
			err = s.users.UpdateLoginFailure(ctx, user.ID, user.ErrorLoginCount+1)
		}
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}

		s.logger.Warn("Login failed",
			zap.Uint("user_id", user.ID),
			zap.String("email", email),
			zap.Int("error_login_count", user.ErrorLoginCount),
		)
		return nil, apperrors.ErrInvalidCredentials
	}

	result, err := s.issueSession(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLoginSuccess(ctx, user.ID, result.RefreshToken); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.logger.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("email", email),
	)

	return result, nil
}

// Logout verifies the refresh token and invalidates it server side.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return apperrors.ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUnauthenticated
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.ClearRefreshToken(ctx, user.ID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return nil
}

// RequestOtp is the shared request phase of the forget-password and
// change-password flows. It generates and stores a hashed one-time code,
// emails the plaintext code, and returns the rememberToken the client must
// echo back at verify time.
func (s *AuthService) RequestOtp(ctx context.Context, email string, purpose mailer.Purpose) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	otpCode, err := generateOtp(s.otpCfg.Digits)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	rememberToken := uuid.NewString()

	otpHash, err := hashPassword(otpCode)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	row, err := s.otps.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = &model.Otp{
			Email:         email,
			OtpHash:       otpHash,
			RememberToken: rememberToken,
			Count:         1,
			Error:         0,
		}
		if err := s.otps.Create(ctx, row); err != nil {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}

	case err != nil:
		return "", apperrors.WrapError(apperrors.ErrInternal, err)

	default:
		if sameCalendarDay(row.UpdatedAt, s.now()) {
			// The request over the daily cap is rejected without touching
			// the row at all.
			if row.Count >= s.otpCfg.RequestLimit {
				return "", apperrors.ErrOtpRequestLimit
			}
			row.Count++
		} else {
			row.Count = 1
			row.Error = 0
		}
		row.OtpHash = otpHash
		row.RememberToken = rememberToken
		if err := s.otps.Save(ctx, row); err != nil {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	// The row is already mutated at this point; a failed send still burns
	// one of the day's requests.
	if err := s.mail.SendOtp(ctx, user.Email, otpCode, purpose); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.logger.Info("OTP requested",
		zap.String("email", email),
		zap.String("purpose", string(purpose)),
		zap.Int("count", row.Count),
	)

	return rememberToken, nil
}

// RequestOtpForUser resolves the account by id and runs the request phase
// against its email. Used by the authenticated change-password flow so the
// target mailbox can never be chosen by the request body.
func (s *AuthService) RequestOtpForUser(ctx context.Context, userID uint, purpose mailer.Purpose) (string, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperrors.ErrUserNotFound
		}
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token, err := s.RequestOtp(ctx, user.Email, purpose)
	return user.Email, token, err
}

// VerifyOtp is the shared verify phase. A successful verification trades the
// rememberToken for a verifyToken; a wrong continuation token trips the hard
// block for the rest of the day before the response is sent.
func (s *AuthService) VerifyOtp(ctx context.Context, email, otpCode, rememberToken string) (string, error) {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	row, err := s.otps.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrOtpTokenInvalid
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	isSameDate := sameCalendarDay(row.UpdatedAt, s.now())
	if isSameDate && row.Error >= s.otpCfg.ErrorLimit {
		return "", apperrors.ErrOtpWrongLimit
	}

	if rememberToken != row.RememberToken {
		// Wrong continuation token is treated as an attack: block the email
		// for the rest of the day, durably, before responding.
		row.Error = s.otpCfg.ErrorLimit
		if err := s.otps.Save(ctx, row); err != nil {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
		return "", apperrors.ErrOtpTokenInvalid
	}

	if s.now().Sub(row.UpdatedAt) > s.otpCfg.VerifyWindow {
		return "", apperrors.ErrOtpExpired
	}

	if !checkPassword(row.OtpHash, otpCode) {
		if isSameDate {
			row.Error++
		} else {
			row.Error = 1
		}
		if err := s.otps.Save(ctx, row); err != nil {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
		return "", apperrors.ErrOtpIncorrect
	}

	row.Error = 0
	row.Count = 1
	row.VerifyToken = uuid.NewString()
	if err := s.otps.Save(ctx, row); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.logger.Info("OTP verified",
		zap.String("email", email),
	)

	return row.VerifyToken, nil
}

// ResetPassword is the consume phase of the anonymous forget-password flow.
func (s *AuthService) ResetPassword(ctx context.Context, email, verifyToken, newPassword string) (*LoginResult, error) {
	return s.consumeOtp(ctx, email, verifyToken, newPassword, nil)
}

// SetNewPassword is the consume phase of the authenticated change-password
// flow; the old password is re-verified before the new one is written.
func (s *AuthService) SetNewPassword(ctx context.Context, email, verifyToken, oldPassword, newPassword string) (*LoginResult, error) {
	return s.consumeOtp(ctx, email, verifyToken, newPassword, &oldPassword)
}

func (s *AuthService) consumeOtp(ctx context.Context, email, verifyToken, newPassword string, oldPassword *string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	row, err := s.otps.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTokenMismatch
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if row.Error >= s.otpCfg.ErrorLimit {
		return nil, apperrors.ErrRequestAttack
	}

	if verifyToken != row.VerifyToken {
		row.Error = s.otpCfg.ErrorLimit
		if err := s.otps.Save(ctx, row); err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		return nil, apperrors.ErrTokenMismatch
	}

	// The consume window is measured from the verify step's write.
	if s.now().Sub(row.UpdatedAt) > s.otpCfg.ConsumeWindow {
		return nil, apperrors.ErrRequestExpired
	}

	if oldPassword != nil && !checkPassword(user.Password, *oldPassword) {
		return nil, apperrors.ErrOldPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	result, err := s.issueSession(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdatePasswordAndToken(ctx, user.ID, hash, result.RefreshToken); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.logger.Info("Password updated via OTP flow",
		zap.Uint("user_id", user.ID),
		zap.String("email", email),
	)

	return result, nil
}

func (s *AuthService) issueSession(ctx context.Context, userID uint, email string) (*LoginResult, error) {
	accessToken, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(userID, email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &LoginResult{
		UserID:       userID,
		Email:        email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// sameCalendarDay reports whether both instants fall on the same calendar
// date in server local time. Counters reset at local midnight, not on a
// rolling 24h window.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// generateOtp returns a fixed-length numeric code; leading zeros are kept.
func generateOtp(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
