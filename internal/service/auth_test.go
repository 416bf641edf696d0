package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/constants"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/internal/model"
	"github.com/openpress/blogcms/pkg/mailer"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[uint]*model.User
	nextID uint
	clock  *fakeClock
}

func newFakeUserStore(clock *fakeClock) *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*model.User), nextID: 1, clock: clock}
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = s.clock.Now()
	user.UpdatedAt = s.clock.Now()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) UpdateLoginFailure(_ context.Context, id uint, errorLoginCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.ErrorLoginCount = errorLoginCount
	u.UpdatedAt = s.clock.Now()
	return nil
}

func (s *fakeUserStore) FreezeAccount(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.Status = constants.StatusFreeze
	u.UpdatedAt = s.clock.Now()
	return nil
}

func (s *fakeUserStore) UpdateLoginSuccess(_ context.Context, id uint, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.ErrorLoginCount = 0
	u.RandToken = refreshToken
	u.UpdatedAt = s.clock.Now()
	return nil
}

func (s *fakeUserStore) UpdatePasswordAndToken(_ context.Context, id uint, passwordHash, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.Password = passwordHash
	u.RandToken = refreshToken
	u.UpdatedAt = s.clock.Now()
	return nil
}

func (s *fakeUserStore) ClearRefreshToken(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].RandToken = ""
	return nil
}

func (s *fakeUserStore) get(id uint) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *s.users[id]
	return &copied
}

type fakeOtpStore struct {
	mu    sync.Mutex
	rows  map[string]*model.Otp
	clock *fakeClock
}

func newFakeOtpStore(clock *fakeClock) *fakeOtpStore {
	return &fakeOtpStore{rows: make(map[string]*model.Otp), clock: clock}
}

func (s *fakeOtpStore) GetByEmail(_ context.Context, email string) (*model.Otp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *fakeOtpStore) Create(_ context.Context, otp *model.Otp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp.CreatedAt = s.clock.Now()
	otp.UpdatedAt = s.clock.Now()
	copied := *otp
	s.rows[otp.Email] = &copied
	return nil
}

func (s *fakeOtpStore) Save(_ context.Context, otp *model.Otp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp.UpdatedAt = s.clock.Now()
	copied := *otp
	s.rows[otp.Email] = &copied
	return nil
}

func (s *fakeOtpStore) get(email string) *model.Otp {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *s.rows[email]
	return &copied
}

type fakeMailer struct {
	mu      sync.Mutex
	lastOtp string
	sent    int
	fail    bool
}

func (m *fakeMailer) SendOtp(_ context.Context, _ string, otp string, _ mailer.Purpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.lastOtp = otp
	m.sent++
	return nil
}

type authFixture struct {
	svc   *AuthService
	users *fakeUserStore
	otps  *fakeOtpStore
	mail  *fakeMailer
	clock *fakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)}
	users := newFakeUserStore(clock)
	otps := newFakeOtpStore(clock)
	mail := &fakeMailer{}

	otpCfg := config.OtpConfig{
		Digits:        6,
		RequestLimit:  5,
		ErrorLimit:    5,
		VerifyWindow:  2 * time.Minute,
		ConsumeWindow: 5 * time.Minute,
	}

	svc := NewAuthService(users, otps, NewTokenService(testTokenConfig()), mail, otpCfg, zap.NewNop())
	svc.now = clock.Now

	return &authFixture{svc: svc, users: users, otps: otps, mail: mail, clock: clock}
}

func (f *authFixture) addUser(t *testing.T, email, password string) uint {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &model.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		Role:     constants.RoleReader,
		Status:   constants.StatusActive,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func wantDomainErr(t *testing.T, err error, want *apperrors.DomainError) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)
	id := f.addUser(t, "alice@example.com", "secret-pass")

	result, err := f.svc.Login(context.Background(), "alice@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.UserID != id {
		t.Errorf("UserID = %d, want %d", result.UserID, id)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("expected both tokens to be issued")
	}

	stored := f.users.get(id)
	if stored.RandToken != result.RefreshToken {
		t.Error("refresh token was not persisted")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), "ghost@example.com", "whatever")
	wantDomainErr(t, err, apperrors.ErrUserNotFound)
}

func TestLoginLockoutSequence(t *testing.T) {
	f := newAuthFixture(t)
	id := f.addUser(t, "bob@example.com", "right-pass")
	ctx := context.Background()

	// Five wrong attempts on the same day raise the counter to five but the
	// account stays active.
	for i := 1; i <= 5; i++ {
		_, err := f.svc.Login(ctx, "bob@example.com", "wrong-pass")
		wantDomainErr(t, err, apperrors.ErrInvalidCredentials)

		stored := f.users.get(id)
		if stored.ErrorLoginCount != i {
			t.Fatalf("attempt %d: ErrorLoginCount = %d, want %d", i, stored.ErrorLoginCount, i)
		}
		if stored.Status != constants.StatusActive {
			t.Fatalf("attempt %d: status = %q, want ACTIVE", i, stored.Status)
		}
	}

	// The sixth wrong attempt freezes the account but still reports plain
	// invalid credentials.
	_, err := f.svc.Login(ctx, "bob@example.com", "wrong-pass")
	wantDomainErr(t, err, apperrors.ErrInvalidCredentials)
	if got := f.users.get(id).Status; got != constants.StatusFreeze {
		t.Fatalf("status after sixth failure = %q, want FREEZE", got)
	}

	// From now on even the correct password is rejected with the freeze
	// error, before any password check.
	_, err = f.svc.Login(ctx, "bob@example.com", "right-pass")
	wantDomainErr(t, err, apperrors.ErrAccountFreeze)
}

func TestLoginCounterResetsOnNewDay(t *testing.T) {
	f := newAuthFixture(t)
	id := f.addUser(t, "carol@example.com", "right-pass")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = f.svc.Login(ctx, "carol@example.com", "wrong-pass")
	}
	if got := f.users.get(id).ErrorLoginCount; got != 5 {
		t.Fatalf("ErrorLoginCount = %d, want 5", got)
	}

	// Next day the counter starts over instead of freezing.
	f.clock.Advance(24 * time.Hour)
	_, err := f.svc.Login(ctx, "carol@example.com", "wrong-pass")
	wantDomainErr(t, err, apperrors.ErrInvalidCredentials)

	stored := f.users.get(id)
	if stored.ErrorLoginCount != 1 {
		t.Errorf("ErrorLoginCount = %d, want 1", stored.ErrorLoginCount)
	}
	if stored.Status != constants.StatusActive {
		t.Errorf("status = %q, want ACTIVE", stored.Status)
	}
}

func TestLoginSuccessResetsCounter(t *testing.T) {
	f := newAuthFixture(t)
	id := f.addUser(t, "dave@example.com", "right-pass")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = f.svc.Login(ctx, "dave@example.com", "wrong-pass")
	}

	if _, err := f.svc.Login(ctx, "dave@example.com", "right-pass"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := f.users.get(id).ErrorLoginCount; got != 0 {
		t.Errorf("ErrorLoginCount = %d, want 0", got)
	}
}

func TestOtpForgetPasswordRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	id := f.addUser(t, "erin@example.com", "old-pass")
	ctx := context.Background()

	rememberToken, err := f.svc.RequestOtp(ctx, "erin@example.com", mailer.PurposeForgetPassword)
	if err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}
	if rememberToken == "" {
		t.Fatal("empty rememberToken")
	}
	if f.mail.sent != 1 {
		t.Fatalf("sent = %d, want 1", f.mail.sent)
	}
	if len(f.mail.lastOtp) != 6 {
		t.Fatalf("otp %q is not 6 digits", f.mail.lastOtp)
	}

	row := f.otps.get("erin@example.com")
	if row.OtpHash == f.mail.lastOtp {
		t.Fatal("otp stored in plaintext")
	}

	verifyToken, err := f.svc.VerifyOtp(ctx, "erin@example.com", f.mail.lastOtp, rememberToken)
	if err != nil {
		t.Fatalf("VerifyOtp: %v", err)
	}
	if verifyToken == "" || verifyToken == rememberToken {
		t.Fatalf("verifyToken %q must be fresh and distinct", verifyToken)
	}

	result, err := f.svc.ResetPassword(ctx, "erin@example.com", verifyToken, "new-pass-123")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("expected a fresh session after reset")
	}

	stored := f.users.get(id)
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("new-pass-123")) != nil {
		t.Error("new password was not persisted")
	}
	if stored.RandToken != result.RefreshToken {
		t.Error("refresh token was not persisted")
	}
}

func TestOtpRequestDailyCap(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "frank@example.com", "pass-12345")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := f.svc.RequestOtp(ctx, "frank@example.com", mailer.PurposeForgetPassword); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}

	before := f.otps.get("frank@example.com")

	_, err := f.svc.RequestOtp(ctx, "frank@example.com", mailer.PurposeForgetPassword)
	wantDomainErr(t, err, apperrors.ErrOtpRequestLimit)

	// The over-limit request must not mutate the row or send mail.
	after := f.otps.get("frank@example.com")
	if after.Count != before.Count || after.RememberToken != before.RememberToken {
		t.Error("over-limit request mutated the otp row")
	}
	if f.mail.sent != 5 {
		t.Errorf("sent = %d, want 5", f.mail.sent)
	}
}

func TestOtpRequestCountResetsOnNewDay(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "gina@example.com", "pass-12345")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := f.svc.RequestOtp(ctx, "gina@example.com", mailer.PurposeForgetPassword); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}

	f.clock.Advance(24 * time.Hour)
	if _, err := f.svc.RequestOtp(ctx, "gina@example.com", mailer.PurposeForgetPassword); err != nil {
		t.Fatalf("request on new day: %v", err)
	}
	if got := f.otps.get("gina@example.com").Count; got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
}

func TestVerifyWrongRememberTokenHardBlocks(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "hank@example.com", "pass-12345")
	ctx := context.Background()

	if _, err := f.svc.RequestOtp(ctx, "hank@example.com", mailer.PurposeForgetPassword); err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}

	_, err := f.svc.VerifyOtp(ctx, "hank@example.com", f.mail.lastOtp, "forged-token")
	wantDomainErr(t, err, apperrors.ErrOtpTokenInvalid)

	if got := f.otps.get("hank@example.com").Error; got != 5 {
		t.Fatalf("Error = %d, want 5 after forged token", got)
	}

	// The block holds for the rest of the day even with the right token.
	row := f.otps.get("hank@example.com")
	_, err = f.svc.VerifyOtp(ctx, "hank@example.com", f.mail.lastOtp, row.RememberToken)
	wantDomainErr(t, err, apperrors.ErrOtpWrongLimit)
}

func TestVerifyWrongOtpIncrementsError(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "iris@example.com", "pass-12345")
	ctx := context.Background()

	rememberToken, err := f.svc.RequestOtp(ctx, "iris@example.com", mailer.PurposeForgetPassword)
	if err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}

	_, err = f.svc.VerifyOtp(ctx, "iris@example.com", "000000", rememberToken)
	if f.mail.lastOtp == "000000" {
		t.Skip("random otp collided with the guess")
	}
	wantDomainErr(t, err, apperrors.ErrOtpIncorrect)

	if got := f.otps.get("iris@example.com").Error; got != 1 {
		t.Errorf("Error = %d, want 1", got)
	}
}

func TestVerifyExpiredWindow(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "jack@example.com", "pass-12345")
	ctx := context.Background()

	rememberToken, err := f.svc.RequestOtp(ctx, "jack@example.com", mailer.PurposeForgetPassword)
	if err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}

	f.clock.Advance(3 * time.Minute)

	_, err = f.svc.VerifyOtp(ctx, "jack@example.com", f.mail.lastOtp, rememberToken)
	wantDomainErr(t, err, apperrors.ErrOtpExpired)

	// Expiry is not a wrong attempt.
	if got := f.otps.get("jack@example.com").Error; got != 0 {
		t.Errorf("Error = %d, want 0", got)
	}
}

func TestConsumeWrongVerifyToken(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "kate@example.com", "pass-12345")
	ctx := context.Background()

	rememberToken, err := f.svc.RequestOtp(ctx, "kate@example.com", mailer.PurposeForgetPassword)
	if err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}
	if _, err := f.svc.VerifyOtp(ctx, "kate@example.com", f.mail.lastOtp, rememberToken); err != nil {
		t.Fatalf("VerifyOtp: %v", err)
	}

	_, err = f.svc.ResetPassword(ctx, "kate@example.com", "forged-token", "new-pass-123")
	wantDomainErr(t, err, apperrors.ErrTokenMismatch)

	// A later consume attempt, even with the real token, hits the attack
	// block.
	row := f.otps.get("kate@example.com")
	_, err = f.svc.ResetPassword(ctx, "kate@example.com", row.VerifyToken, "new-pass-123")
	wantDomainErr(t, err, apperrors.ErrRequestAttack)
}

func TestConsumeExpiredWindow(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "liam@example.com", "pass-12345")
	ctx := context.Background()

	rememberToken, err := f.svc.RequestOtp(ctx, "liam@example.com", mailer.PurposeForgetPassword)
	if err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}
	verifyToken, err := f.svc.VerifyOtp(ctx, "liam@example.com", f.mail.lastOtp, rememberToken)
	if err != nil {
		t.Fatalf("VerifyOtp: %v", err)
	}

	f.clock.Advance(6 * time.Minute)

	_, err = f.svc.ResetPassword(ctx, "liam@example.com", verifyToken, "new-pass-123")
	wantDomainErr(t, err, apperrors.ErrRequestExpired)
}

func TestSetNewPasswordChecksOldPassword(t *testing.T) {
	f := newAuthFixture(t)
	id := f.addUser(t, "mona@example.com", "old-pass-123")
	ctx := context.Background()

	rememberToken, err := f.svc.RequestOtp(ctx, "mona@example.com", mailer.PurposeChangePassword)
	if err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}
	verifyToken, err := f.svc.VerifyOtp(ctx, "mona@example.com", f.mail.lastOtp, rememberToken)
	if err != nil {
		t.Fatalf("VerifyOtp: %v", err)
	}

	_, err = f.svc.SetNewPassword(ctx, "mona@example.com", verifyToken, "not-the-old-pass", "new-pass-123")
	wantDomainErr(t, err, apperrors.ErrOldPassword)

	// With the right old password the change goes through.
	if _, err := f.svc.SetNewPassword(ctx, "mona@example.com", verifyToken, "old-pass-123", "new-pass-123"); err != nil {
		t.Fatalf("SetNewPassword: %v", err)
	}
	stored := f.users.get(id)
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("new-pass-123")) != nil {
		t.Error("new password was not persisted")
	}
}

func TestRequestOtpFailsWhenMailFails(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "nate@example.com", "pass-12345")
	f.mail.fail = true

	_, err := f.svc.RequestOtp(context.Background(), "nate@example.com", mailer.PurposeForgetPassword)
	if err == nil {
		t.Fatal("expected error when mail dispatch fails")
	}

	// The row was already written, so the failed send still burned a
	// request.
	if got := f.otps.get("nate@example.com").Count; got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "olga@example.com", "pass-12345")

	_, err := f.svc.Register(context.Background(), "Olga", "olga@example.com", "pass-12345")
	wantDomainErr(t, err, apperrors.ErrUserExist)
}
