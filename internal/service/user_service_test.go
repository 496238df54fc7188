package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.ID]; !exists {
		return repository.ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	user, exists := m.users[id]
	if !exists {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.users[id]; !exists {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *mockUserRepository) ListByRole(ctx context.Context, role string) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, user := range m.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *mockUserRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, id := range ids {
		if user, exists := m.users[id]; exists {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Phone == phone {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func createUserInput(email, username, phone, password string) CreateUserInput {
	return CreateUserInput{
		Email:     email,
		Username:  username,
		Password:  password,
		FirstName: "Jane",
		LastName:  "Doe",
		Phone:     phone,
		Gender:    "FEMALE",
		Role:      domain.RoleAttendant,
	}
}

// Staff account creation stores a bcrypt hash, never the plaintext
func TestProperty_CreateUserHashesPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, username string, phone string, password string) bool {
			userRepo := newMockUserRepository()
			service := NewUserService(userRepo, newMockRefreshTokenRepository(), "test-secret")
			ctx := context.Background()

			user, err := service.CreateUser(ctx, createUserInput(email, username, phone, password))
			if err != nil {
				return true // uniqueness collision in generated inputs, skip
			}

			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
				t.Logf("FAIL: Password hash is not a valid bcrypt hash: %v", err)
				return false
			}

			stored, err := userRepo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Could not find stored user: %v", err)
				return false
			}
			return stored.PasswordHash == user.PasswordHash
		},
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[a-z]{5,12}`),
		gen.RegexMatch(`07[0-9]{8}`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreateUser_AppliesDefaultAvatar(t *testing.T) {
	service := NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), "test-secret")

	user, err := service.CreateUser(context.Background(), createUserInput("jane@example.com", "jane", "0712345678", "password123"))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Image != DefaultUserImage {
		t.Errorf("expected default avatar, got %s", user.Image)
	}
}

func TestCreateUser_RejectsDuplicates(t *testing.T) {
	service := NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), "test-secret")
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, createUserInput("jane@example.com", "jane", "0712345678", "password123")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, err := service.CreateUser(ctx, createUserInput("jane@example.com", "other", "0700000000", "password123"))
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	_, err = service.CreateUser(ctx, createUserInput("other@example.com", "other", "0712345678", "password123"))
	if !errors.Is(err, ErrPhoneExists) {
		t.Errorf("expected ErrPhoneExists, got %v", err)
	}

	_, err = service.CreateUser(ctx, createUserInput("other@example.com", "jane", "0700000000", "password123"))
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestLogin_ByEmailOrUsername(t *testing.T) {
	service := NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), "test-secret")
	ctx := context.Background()

	created, err := service.CreateUser(ctx, createUserInput("jane@example.com", "jane", "0712345678", "password123"))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, _, user, err := service.Login(ctx, "jane@example.com", "", "password123"); err != nil || user.ID != created.ID {
		t.Errorf("login by email failed: %v", err)
	}
	if _, _, user, err := service.Login(ctx, "", "jane", "password123"); err != nil || user.ID != created.ID {
		t.Errorf("login by username failed: %v", err)
	}
	if _, _, _, err := service.Login(ctx, "jane@example.com", "", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, _, _, err := service.Login(ctx, "", "", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials when no identifier is given, got %v", err)
	}
}

// Access tokens carry the user's ID and role as claims
func TestProperty_AccessTokensCarryIdentityClaims(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("access tokens contain user ID and role claims", prop.ForAll(
		func(email string, username string, phone string, password string, role string) bool {
			userRepo := newMockUserRepository()
			service := NewUserService(userRepo, newMockRefreshTokenRepository(), "test-secret-key")
			ctx := context.Background()

			input := createUserInput(email, username, phone, password)
			input.Role = role
			user, err := service.CreateUser(ctx, input)
			if err != nil {
				return true // skip collisions
			}

			accessToken, _, _, err := service.Login(ctx, email, "", password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(accessToken)
			if err != nil {
				t.Logf("FAIL: Token validation failed: %v", err)
				return false
			}

			if claims.UserID != user.ID {
				t.Logf("FAIL: User ID claim mismatch. Expected %s, got %s", user.ID, claims.UserID)
				return false
			}
			if claims.Role != role {
				t.Logf("FAIL: Role claim mismatch. Expected %s, got %s", role, claims.Role)
				return false
			}
			if claims.ExpiresAt == nil || claims.IssuedAt == nil {
				t.Logf("FAIL: Token missing expiration or issued-at claim")
				return false
			}
			return true
		},
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[a-z]{5,12}`),
		gen.RegexMatch(`07[0-9]{8}`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.OneConstOf(domain.RoleAdmin, domain.RoleAttendant),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	service := NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), "test-secret-key")
	ctx := context.Background()

	created, err := service.CreateUser(ctx, createUserInput("jane@example.com", "jane", "0712345678", "password123"))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, refreshToken, _, err := service.Login(ctx, "jane@example.com", "", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	newAccessToken, err := service.RefreshToken(ctx, refreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}

	claims, err := service.ValidateToken(newAccessToken)
	if err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
	if claims.UserID != created.ID {
		t.Errorf("user ID mismatch in refreshed token")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		t.Errorf("refreshed token is already expired")
	}
}

func TestLogout_InvalidatesRefreshToken(t *testing.T) {
	refreshTokenRepo := newMockRefreshTokenRepository()
	service := NewUserService(newMockUserRepository(), refreshTokenRepo, "test-secret-key")
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, createUserInput("jane@example.com", "jane", "0712345678", "password123")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, refreshToken, _, err := service.Login(ctx, "jane@example.com", "", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := service.RefreshToken(ctx, refreshToken); err != nil {
		t.Fatalf("refresh token should work before logout: %v", err)
	}

	if err := service.Logout(ctx, refreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := service.RefreshToken(ctx, refreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestUpdatePassword_RevokesOutstandingTokens(t *testing.T) {
	refreshTokenRepo := newMockRefreshTokenRepository()
	service := NewUserService(newMockUserRepository(), refreshTokenRepo, "test-secret-key")
	ctx := context.Background()

	user, err := service.CreateUser(ctx, createUserInput("jane@example.com", "jane", "0712345678", "password123"))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, refreshToken, _, err := service.Login(ctx, "jane@example.com", "", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := service.UpdatePassword(ctx, user.ID, "newpassword456"); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}

	if _, err := service.RefreshToken(ctx, refreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected refresh token to be revoked after password change, got %v", err)
	}

	if _, _, _, err := service.Login(ctx, "jane@example.com", "", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password must no longer authenticate, got %v", err)
	}
	if _, _, _, err := service.Login(ctx, "jane@example.com", "", "newpassword456"); err != nil {
		t.Errorf("new password must authenticate: %v", err)
	}
}

func TestUpdateUser_AllowsKeepingOwnUniqueFields(t *testing.T) {
	service := NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), "test-secret")
	ctx := context.Background()

	user, err := service.CreateUser(ctx, createUserInput("jane@example.com", "jane", "0712345678", "password123"))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	updated, err := service.UpdateUser(ctx, user.ID, UpdateUserInput{
		Email:     "jane@example.com",
		Username:  "jane",
		Phone:     "0712345678",
		FirstName: "Janet",
		LastName:  "Doe",
		Gender:    "FEMALE",
	})
	if err != nil {
		t.Fatalf("update keeping own unique fields must succeed: %v", err)
	}
	if updated.FirstName != "Janet" {
		t.Errorf("expected first name to change, got %s", updated.FirstName)
	}
}

func TestListAttendants_FiltersByRole(t *testing.T) {
	service := NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), "test-secret")
	ctx := context.Background()

	admin := createUserInput("admin@example.com", "admin", "0700000001", "password123")
	admin.Role = domain.RoleAdmin
	if _, err := service.CreateUser(ctx, admin); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := service.CreateUser(ctx, createUserInput("jane@example.com", "jane", "0700000002", "password123")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	attendants, err := service.ListAttendants(ctx)
	if err != nil {
		t.Fatalf("ListAttendants failed: %v", err)
	}
	if len(attendants) != 1 || attendants[0].Role != domain.RoleAttendant {
		t.Errorf("expected exactly one attendant, got %d", len(attendants))
	}
}
