package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/priceview/backend/internal/domain"
)

const resetCodeTTL = 15 * time.Minute

// AuthConfig holds token and account settings for the auth service.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	// AdminEmail is promoted to the admin role on Google sign-in.
	AdminEmail string
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	FullName  *string
	Username  *string
	Email     *string
	Birthdate *string
	Address   *string
}

// AuthService implements account lifecycle and token issuance on top of a
// user store, a mailer and a Google ID-token verifier.
type AuthService struct {
	users  domain.UserStore
	mailer domain.Mailer
	google domain.GoogleVerifier
	cfg    AuthConfig
	log    zerolog.Logger
	now    func() time.Time
}

// NewAuthService creates an auth service.
func NewAuthService(users domain.UserStore, mailer domain.Mailer, google domain.GoogleVerifier, cfg AuthConfig, log zerolog.Logger) *AuthService {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	return &AuthService{
		users:  users,
		mailer: mailer,
		google: google,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// SignUp registers a new unverified client account and emails the
// verification code. Email delivery happens off the request path; a
// delivery failure is logged, not returned.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:            email,
		PasswordHash:     string(hash),
		Role:             domain.RoleClient,
		IsActive:         true,
		IsVerified:       false,
		VerificationCode: randomHex(3),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	id, err := s.users.Insert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	user.ID = id

	go func(email, code string) {
		if err := s.mailer.SendVerificationCode(email, code); err != nil {
			s.log.Error().Err(err).Str("email", email).Msg("sending verification email failed")
		}
	}(user.Email, user.VerificationCode)

	return user, nil
}

// SignIn checks credentials and returns an access token. Only verified
// accounts may sign in.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Token, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, domain.ErrEmailNotVerified
	}
	return s.issueToken(user)
}

// VerifyEmail marks an account verified when the code matches.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.VerificationCode == "" || user.VerificationCode != code {
		return domain.ErrInvalidCode
	}
	return s.users.Update(ctx, user.ID, map[string]any{
		"is_verified":       true,
		"verification_code": "",
	})
}

// ForgotPassword stores an expiring 6-digit reset code and emails it.
// The reply is identical whether or not the account exists, so the
// endpoint does not reveal registered emails.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if user == nil {
		return nil
	}

	code := randomDigits(6)
	expires := s.now().UTC().Add(resetCodeTTL)
	if err := s.users.Update(ctx, user.ID, map[string]any{
		"reset_code":         code,
		"reset_code_expires": expires,
	}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}

	go func(email, code string) {
		if err := s.mailer.SendPasswordResetCode(email, code); err != nil {
			s.log.Error().Err(err).Str("email", email).Msg("sending reset email failed")
		}
	}(user.Email, code)

	return nil
}

// ResetPassword sets a new password when the reset code matches and has
// not expired, then clears the code.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if user == nil || user.ResetCode == "" || user.ResetCode != code {
		return domain.ErrInvalidCode
	}
	if user.ResetCodeExpires == nil || user.ResetCodeExpires.Before(s.now().UTC()) {
		return domain.ErrCodeExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.users.Update(ctx, user.ID, map[string]any{
		"password_hash":      string(hash),
		"reset_code":         nil,
		"reset_code_expires": nil,
	})
}

// GoogleSignIn verifies a Google ID-token credential and signs the account
// in, creating a verified user on first contact. The configured admin
// email is promoted to the admin role.
func (s *AuthService) GoogleSignIn(ctx context.Context, credential string) (*domain.Token, error) {
	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}

	if user == nil {
		user, err = s.createGoogleUser(ctx, identity)
		if err != nil {
			return nil, err
		}
	} else {
		fields := map[string]any{}
		if user.GoogleID == "" {
			fields["google_id"] = identity.Subject
			user.GoogleID = identity.Subject
		}
		if user.Picture == "" && identity.Picture != "" {
			fields["picture"] = identity.Picture
			user.Picture = identity.Picture
		}
		if !user.IsVerified {
			fields["is_verified"] = true
			user.IsVerified = true
		}
		if identity.Email == s.cfg.AdminEmail && user.Role != domain.RoleAdmin {
			fields["role"] = domain.RoleAdmin
			user.Role = domain.RoleAdmin
		}
		if len(fields) > 0 {
			if err := s.users.Update(ctx, user.ID, fields); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
			}
		}
	}

	return s.issueToken(user)
}

func (s *AuthService) createGoogleUser(ctx context.Context, identity *domain.GoogleIdentity) (*domain.User, error) {
	role := domain.RoleClient
	if identity.Email == s.cfg.AdminEmail {
		role = domain.RoleAdmin
	}

	// Google accounts never use this password; it only keeps the
	// password_hash field populated.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:        identity.Email,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     identity.Name,
		GoogleID:     identity.Subject,
		Picture:      identity.Picture,
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.users.Insert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	user.ID = id
	return user, nil
}

// CurrentUser loads the account a token subject refers to.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies the provided profile fields. Changing email to one
// already registered fails with ErrEmailTaken.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, upd ProfileUpdate) (*domain.User, error) {
	fields := map[string]any{}
	if upd.FullName != nil {
		fields["full_name"] = *upd.FullName
	}
	if upd.Username != nil {
		fields["username"] = *upd.Username
	}
	if upd.Birthdate != nil {
		fields["birthdate"] = *upd.Birthdate
	}
	if upd.Address != nil {
		fields["address"] = *upd.Address
	}
	if upd.Email != nil && *upd.Email != user.Email {
		existing, err := s.users.FindByEmail(ctx, *upd.Email)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
		}
		if existing != nil {
			return nil, domain.ErrEmailTaken
		}
		fields["email"] = *upd.Email
	}
	fields["updated_at"] = s.now().UTC()

	if err := s.users.Update(ctx, user.ID, fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	updated, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if updated == nil {
		return nil, domain.ErrUserNotFound
	}
	return updated, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, current, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.users.Update(ctx, user.ID, map[string]any{
		"password_hash": string(hash),
		"updated_at":    s.now().UTC(),
	})
}

// ParseToken validates an access token and returns its subject email.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}

func (s *AuthService) issueToken(user *domain.User) (*domain.Token, error) {
	claims := jwt.MapClaims{
		"sub": user.Email,
		"exp": s.now().Add(s.cfg.TokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &domain.Token{AccessToken: signed, TokenType: "bearer", Role: user.Role}, nil
}

func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func randomDigits(n int) string {
	max := big.NewInt(10)
	digits := make([]byte, n)
	for i := range digits {
		v, _ := rand.Int(rand.Reader, max)
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}
