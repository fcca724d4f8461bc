package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/priceview/backend/internal/domain"
)

type fakeUserStore struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	updates map[string]map[string]any // keyed by id hex
	err     error
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	store := &fakeUserStore{
		byEmail: map[string]*domain.User{},
		updates: map[string]map[string]any{},
	}
	for _, u := range users {
		store.byEmail[u.Email] = u
	}
	return store
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byEmail[email], f.err
}

func (f *fakeUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, f.err
}

func (f *fakeUserStore) Insert(ctx context.Context, u *domain.User) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return primitive.NilObjectID, f.err
	}
	id := primitive.NewObjectID()
	u.ID = id
	f.byEmail[u.Email] = u
	return id, nil
}

func (f *fakeUserStore) Update(ctx context.Context, id primitive.ObjectID, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updates[id.Hex()] = fields
	return nil
}

type fakeMailer struct {
	mu         sync.Mutex
	verifySent []string
	resetSent  []string
}

func (f *fakeMailer) SendVerificationCode(email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifySent = append(f.verifySent, email)
	return nil
}

func (f *fakeMailer) SendPasswordResetCode(email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetSent = append(f.resetSent, email)
	return nil
}

type fakeGoogleVerifier struct {
	identity *domain.GoogleIdentity
	err      error
}

func (f *fakeGoogleVerifier) Verify(ctx context.Context, credential string) (*domain.GoogleIdentity, error) {
	return f.identity, f.err
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing fixture password: %v", err)
	}
	return string(hash)
}

func newAuthTestService(store *fakeUserStore, mail *fakeMailer, google *fakeGoogleVerifier) *AuthService {
	svc := NewAuthService(store, mail, google, AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		AdminEmail: "admin@example.com",
	}, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSignUp(t *testing.T) {
	t.Run("creates unverified client account", func(t *testing.T) {
		store := newFakeUserStore()
		mail := &fakeMailer{}
		svc := newAuthTestService(store, mail, &fakeGoogleVerifier{})

		user, err := svc.SignUp(context.Background(), "new@example.com", "password123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Role != domain.RoleClient {
			t.Errorf("Role = %q, want client", user.Role)
		}
		if user.IsVerified {
			t.Error("new account should not be verified")
		}
		if user.VerificationCode == "" {
			t.Error("verification code was not generated")
		}
		if user.PasswordHash == "password123" {
			t.Error("password stored in plaintext")
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		store := newFakeUserStore(&domain.User{ID: primitive.NewObjectID(), Email: "taken@example.com"})
		svc := newAuthTestService(store, &fakeMailer{}, &fakeGoogleVerifier{})

		_, err := svc.SignUp(context.Background(), "taken@example.com", "password123")
		if !errors.Is(err, domain.ErrEmailTaken) {
			t.Errorf("error = %v, want ErrEmailTaken", err)
		}
	})
}

func TestSignIn(t *testing.T) {
	verified := &domain.User{
		ID:           primitive.NewObjectID(),
		Email:        "user@example.com",
		PasswordHash: "",
		Role:         domain.RoleClient,
		IsVerified:   true,
	}

	t.Run("issues token for valid credentials", func(t *testing.T) {
		u := *verified
		u.PasswordHash = hashOf(t, "correct-horse")
		svc := newAuthTestService(newFakeUserStore(&u), &fakeMailer{}, &fakeGoogleVerifier{})
		// Parsing validates exp against the real clock.
		svc.now = time.Now

		token, err := svc.SignIn(context.Background(), "user@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken == "" || token.TokenType != "bearer" {
			t.Errorf("unexpected token: %+v", token)
		}

		email, err := svc.ParseToken(token.AccessToken)
		if err != nil {
			t.Fatalf("issued token does not parse: %v", err)
		}
		if email != "user@example.com" {
			t.Errorf("token subject = %q, want user@example.com", email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		u := *verified
		u.PasswordHash = hashOf(t, "correct-horse")
		svc := newAuthTestService(newFakeUserStore(&u), &fakeMailer{}, &fakeGoogleVerifier{})

		_, err := svc.SignIn(context.Background(), "user@example.com", "wrong")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := newAuthTestService(newFakeUserStore(), &fakeMailer{}, &fakeGoogleVerifier{})

		_, err := svc.SignIn(context.Background(), "ghost@example.com", "whatever")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unverified account", func(t *testing.T) {
		u := *verified
		u.PasswordHash = hashOf(t, "correct-horse")
		u.IsVerified = false
		svc := newAuthTestService(newFakeUserStore(&u), &fakeMailer{}, &fakeGoogleVerifier{})

		_, err := svc.SignIn(context.Background(), "user@example.com", "correct-horse")
		if !errors.Is(err, domain.ErrEmailNotVerified) {
			t.Errorf("error = %v, want ErrEmailNotVerified", err)
		}
	})
}

func TestVerifyEmail(t *testing.T) {
	t.Run("matching code verifies and clears", func(t *testing.T) {
		u := &domain.User{
			ID:               primitive.NewObjectID(),
			Email:            "user@example.com",
			VerificationCode: "abc123",
		}
		store := newFakeUserStore(u)
		svc := newAuthTestService(store, &fakeMailer{}, &fakeGoogleVerifier{})

		if err := svc.VerifyEmail(context.Background(), "user@example.com", "abc123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fields := store.updates[u.ID.Hex()]
		if fields["is_verified"] != true || fields["verification_code"] != "" {
			t.Errorf("update fields = %+v", fields)
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		u := &domain.User{ID: primitive.NewObjectID(), Email: "user@example.com", VerificationCode: "abc123"}
		svc := newAuthTestService(newFakeUserStore(u), &fakeMailer{}, &fakeGoogleVerifier{})

		err := svc.VerifyEmail(context.Background(), "user@example.com", "zzz999")
		if !errors.Is(err, domain.ErrInvalidCode) {
			t.Errorf("error = %v, want ErrInvalidCode", err)
		}
	})
}

func TestResetPassword(t *testing.T) {
	makeUser := func(code string, expires time.Time) *domain.User {
		return &domain.User{
			ID:               primitive.NewObjectID(),
			Email:            "user@example.com",
			ResetCode:        code,
			ResetCodeExpires: &expires,
		}
	}

	t.Run("valid code within expiry", func(t *testing.T) {
		u := makeUser("123456", time.Date(2024, 6, 1, 12, 10, 0, 0, time.UTC))
		store := newFakeUserStore(u)
		svc := newAuthTestService(store, &fakeMailer{}, &fakeGoogleVerifier{})

		if err := svc.ResetPassword(context.Background(), "user@example.com", "123456", "newpassword"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fields := store.updates[u.ID.Hex()]
		if fields["password_hash"] == nil || fields["reset_code"] != nil {
			t.Errorf("update fields = %+v", fields)
		}
	})

	t.Run("expired code", func(t *testing.T) {
		u := makeUser("123456", time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC))
		svc := newAuthTestService(newFakeUserStore(u), &fakeMailer{}, &fakeGoogleVerifier{})

		err := svc.ResetPassword(context.Background(), "user@example.com", "123456", "newpassword")
		if !errors.Is(err, domain.ErrCodeExpired) {
			t.Errorf("error = %v, want ErrCodeExpired", err)
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		u := makeUser("123456", time.Date(2024, 6, 1, 12, 10, 0, 0, time.UTC))
		svc := newAuthTestService(newFakeUserStore(u), &fakeMailer{}, &fakeGoogleVerifier{})

		err := svc.ResetPassword(context.Background(), "user@example.com", "654321", "newpassword")
		if !errors.Is(err, domain.ErrInvalidCode) {
			t.Errorf("error = %v, want ErrInvalidCode", err)
		}
	})
}

func TestForgotPassword(t *testing.T) {
	t.Run("unknown email succeeds silently", func(t *testing.T) {
		store := newFakeUserStore()
		svc := newAuthTestService(store, &fakeMailer{}, &fakeGoogleVerifier{})

		if err := svc.ForgotPassword(context.Background(), "ghost@example.com"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(store.updates) != 0 {
			t.Errorf("updates = %+v, want none", store.updates)
		}
	})

	t.Run("known email stores an expiring code", func(t *testing.T) {
		u := &domain.User{ID: primitive.NewObjectID(), Email: "user@example.com"}
		store := newFakeUserStore(u)
		svc := newAuthTestService(store, &fakeMailer{}, &fakeGoogleVerifier{})

		if err := svc.ForgotPassword(context.Background(), "user@example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fields := store.updates[u.ID.Hex()]
		code, _ := fields["reset_code"].(string)
		if len(code) != 6 {
			t.Errorf("reset code = %q, want 6 digits", code)
		}
		expires, _ := fields["reset_code_expires"].(time.Time)
		want := time.Date(2024, 6, 1, 12, 15, 0, 0, time.UTC)
		if !expires.Equal(want) {
			t.Errorf("expiry = %v, want %v", expires, want)
		}
	})
}

func TestGoogleSignIn(t *testing.T) {
	identity := &domain.GoogleIdentity{
		Subject: "google-sub-1",
		Email:   "google@example.com",
		Name:    "Google User",
		Picture: "https://lh3/avatar.jpg",
	}

	t.Run("first contact creates a verified account", func(t *testing.T) {
		store := newFakeUserStore()
		svc := newAuthTestService(store, &fakeMailer{}, &fakeGoogleVerifier{identity: identity})

		token, err := svc.GoogleSignIn(context.Background(), "credential")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.Role != domain.RoleClient {
			t.Errorf("Role = %q, want client", token.Role)
		}
		created := store.byEmail["google@example.com"]
		if created == nil || !created.IsVerified || created.GoogleID != "google-sub-1" {
			t.Errorf("created user = %+v", created)
		}
	})

	t.Run("admin email gets admin role", func(t *testing.T) {
		admin := &domain.GoogleIdentity{Subject: "sub", Email: "admin@example.com"}
		store := newFakeUserStore()
		svc := newAuthTestService(store, &fakeMailer{}, &fakeGoogleVerifier{identity: admin})

		token, err := svc.GoogleSignIn(context.Background(), "credential")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.Role != domain.RoleAdmin {
			t.Errorf("Role = %q, want admin", token.Role)
		}
	})

	t.Run("existing unverified account becomes verified", func(t *testing.T) {
		u := &domain.User{ID: primitive.NewObjectID(), Email: "google@example.com", IsVerified: false}
		store := newFakeUserStore(u)
		svc := newAuthTestService(store, &fakeMailer{}, &fakeGoogleVerifier{identity: identity})

		if _, err := svc.GoogleSignIn(context.Background(), "credential"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fields := store.updates[u.ID.Hex()]
		if fields["is_verified"] != true {
			t.Errorf("update fields = %+v, want is_verified true", fields)
		}
	})

	t.Run("invalid credential", func(t *testing.T) {
		svc := newAuthTestService(newFakeUserStore(), &fakeMailer{}, &fakeGoogleVerifier{err: domain.ErrInvalidToken})

		_, err := svc.GoogleSignIn(context.Background(), "bogus")
		if !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})
}

func TestChangePassword(t *testing.T) {
	u := &domain.User{
		ID:           primitive.NewObjectID(),
		Email:        "user@example.com",
		PasswordHash: "",
	}

	t.Run("wrong current password", func(t *testing.T) {
		user := *u
		user.PasswordHash = hashOf(t, "current")
		svc := newAuthTestService(newFakeUserStore(&user), &fakeMailer{}, &fakeGoogleVerifier{})

		err := svc.ChangePassword(context.Background(), &user, "wrong", "next")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("correct current password updates hash", func(t *testing.T) {
		user := *u
		user.PasswordHash = hashOf(t, "current")
		store := newFakeUserStore(&user)
		svc := newAuthTestService(store, &fakeMailer{}, &fakeGoogleVerifier{})

		if err := svc.ChangePassword(context.Background(), &user, "current", "next-password"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.updates[user.ID.Hex()]["password_hash"] == nil {
			t.Error("password hash was not updated")
		}
	})
}

func TestParseToken(t *testing.T) {
	svc := newAuthTestService(newFakeUserStore(), &fakeMailer{}, &fakeGoogleVerifier{})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.ParseToken("not-a-jwt"); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := newAuthTestService(newFakeUserStore(), &fakeMailer{}, &fakeGoogleVerifier{})
		other.cfg.JWTSecret = "different"
		token, err := other.issueToken(&domain.User{Email: "x@example.com", Role: domain.RoleClient})
		if err != nil {
			t.Fatalf("issuing token: %v", err)
		}
		if _, err := svc.ParseToken(token.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})
}
