package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgauth "github.com/rentkart/rentkart-backend/pkg/auth"
	"github.com/rentkart/rentkart-backend/pkg/auth/session"
	"github.com/rentkart/rentkart-backend/pkg/config"
	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "unit-test-secret",
	Issuer:            "rentkart-test",
	ExpirationMinutes: 15,
}

type stubUserRepo struct {
	users   map[string]*models.User
	creates int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*models.User{}}
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, exists := s.users[user.Email]; exists {
		return nil, fmt.Errorf("ERROR: duplicate key value violates unique constraint")
	}
	s.users[user.Email] = user
	s.creates++
	return user, nil
}

func (s *stubUserRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubVendorSource struct {
	vendor *models.Vendor
}

func (s *stubVendorSource) FindVendorByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Vendor, error) {
	if s.vendor == nil || s.vendor.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.vendor, nil
}

type stubSessionStore struct {
	generated map[string]string
	rotateErr error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{generated: map[string]string{}}
}

func (s *stubSessionStore) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessionStore) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if s.generated[oldAccessID] != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	newID := session.NewAccessID()
	return newID, "refresh-" + newID, nil
}

func (s *stubSessionStore) Revoke(ctx context.Context, accessID string) error {
	delete(s.generated, accessID)
	return nil
}

func newTestService(t *testing.T, repo *stubUserRepo, vendors *stubVendorSource, sessions *stubSessionStore) Service {
	t.Helper()
	if vendors == nil {
		vendors = &stubVendorSource{}
	}
	if sessions == nil {
		sessions = newStubSessionStore()
	}
	svc, err := NewService(repo, vendors, sessions, testJWTConfig, config.PasswordConfig{})
	require.NoError(t, err)
	return svc
}

func registerUser(t *testing.T, repo *stubUserRepo, role enums.UserRole, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
	repo.users[email] = user
	return user
}

func TestRegisterHashesPassword(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	svc := newTestService(t, repo, nil, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "long-enough-password",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, enums.UserRoleCustomer, user.Role)
	assert.NotEqual(t, "long-enough-password", user.PasswordHash)

	ok, err := security.VerifyPassword("long-enough-password", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	svc := newTestService(t, repo, nil, nil)

	input := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "long-enough-password"}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUserRepo(), nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "short"})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestLoginIssuesParseableTokenPair(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	user := registerUser(t, repo, enums.UserRoleCustomer, "ada@example.com", "long-enough-password")
	sessions := newStubSessionStore()
	svc := newTestService(t, repo, nil, sessions)

	pair, err := svc.Login(context.Background(), "ada@example.com", "long-enough-password")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, testJWTConfig.ExpirationMinutes*60, pair.ExpiresIn)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleCustomer, claims.Role)
	assert.Contains(t, sessions.generated, claims.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	registerUser(t, repo, enums.UserRoleCustomer, "ada@example.com", "long-enough-password")
	svc := newTestService(t, repo, nil, nil)

	_, err := svc.Login(context.Background(), "ada@example.com", "not-the-password")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUserRepo(), nil, nil)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever-password")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
}

func TestLoginVendorCarriesVendorID(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	user := registerUser(t, repo, enums.UserRoleVendor, "shop@example.com", "long-enough-password")
	vendor := &models.Vendor{ID: uuid.New(), OwnerID: user.ID, Name: "Shop"}
	svc := newTestService(t, repo, &stubVendorSource{vendor: vendor}, nil)

	pair, err := svc.Login(context.Background(), "shop@example.com", "long-enough-password")
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, pair.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, claims.VendorID)
	assert.Equal(t, vendor.ID, *claims.VendorID)
}

func TestLoginVendorWithoutProfile(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	registerUser(t, repo, enums.UserRoleVendor, "shop@example.com", "long-enough-password")
	svc := newTestService(t, repo, nil, nil)

	_, err := svc.Login(context.Background(), "shop@example.com", "long-enough-password")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	registerUser(t, repo, enums.UserRoleCustomer, "ada@example.com", "long-enough-password")
	sessions := newStubSessionStore()
	svc := newTestService(t, repo, nil, sessions)

	pair, err := svc.Login(context.Background(), "ada@example.com", "long-enough-password")
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, rotated.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old refresh token is dead after rotation.
	_, err = svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
}
