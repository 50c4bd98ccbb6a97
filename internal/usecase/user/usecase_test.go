package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	domain "user-crud-service/internal/domain/user"
	pkgerrors "user-crud-service/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockRepository is a testify mock of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, query string) ([]domain.User, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func setupTestUsecase(t *testing.T) (*Usecase, *MockRepository) {
	mockRepo := new(MockRepository)
	uc := New(mockRepo, zaptest.NewLogger(t))
	return uc, mockRepo
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// ==================== LIST USERS ====================

func TestListUsers_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	users := []domain.User{
		{ID: "1", Name: "John Doe", Email: "john@example.com"},
		{ID: "2", Name: "Jane Doe", Email: "jane@example.com"},
	}
	mockRepo.On("List", ctx, "").Return(users, nil)

	resp, err := uc.ListUsers(ctx, ListUsersRequest{})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, users, resp.Users)
	mockRepo.AssertExpectations(t)
}

func TestListUsers_EmptyStoreReturnsEmptySlice(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, "").Return(nil, nil)

	resp, err := uc.ListUsers(ctx, ListUsersRequest{})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Users)
	assert.Empty(t, resp.Users)
}

func TestListUsers_InvalidQuery(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	resp, err := uc.ListUsers(context.Background(), ListUsersRequest{Query: "<script>"})

	assert.Nil(t, resp)
	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"q"}, verr.Fields())
	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListUsers_StoreError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, "john").Return(nil, errors.New("connection refused"))

	resp, err := uc.ListUsers(ctx, ListUsersRequest{Query: " john "})

	assert.Nil(t, resp)
	assert.EqualError(t, err, "connection refused")
}

// ==================== GET USER ====================

func TestGetUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	expected := &domain.User{ID: "abc", Name: "John Doe", Email: "john@example.com"}
	mockRepo.On("GetByID", ctx, "abc").Return(expected, nil)

	u, err := uc.GetUser(ctx, "abc")

	require.NoError(t, err)
	assert.Equal(t, expected, u)
}

func TestGetUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "missing").Return(nil, pkgerrors.NewNotFoundError("user", "User not found"))

	u, err := uc.GetUser(ctx, "missing")

	assert.Nil(t, u)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGetUser_EmptyID(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	u, err := uc.GetUser(context.Background(), "")

	assert.Nil(t, u)
	assert.True(t, pkgerrors.IsNotFound(err))
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// ==================== CREATE USER ====================

func TestCreateUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "jo@x.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "Jo" && u.Email == "jo@x.com" && u.Age != nil && *u.Age == 30
	})).Return(&domain.User{ID: "id-1", Name: "Jo", Email: "jo@x.com", Age: intPtr(30)}, nil)

	u, err := uc.CreateUser(ctx, CreateUserRequest{Name: " Jo ", Email: " JO@X.COM ", Age: intPtr(30)})

	require.NoError(t, err)
	assert.Equal(t, "id-1", u.ID)
	assert.Equal(t, "jo@x.com", u.Email)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_ValidationError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	u, err := uc.CreateUser(context.Background(), CreateUserRequest{Name: "J", Email: "invalid", Age: intPtr(200)})

	assert.Nil(t, u)
	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name", "email", "age"}, verr.Fields())
	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_ValidationLogsFields(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	uc := New(new(MockRepository), zap.New(core))

	_, err := uc.CreateUser(context.Background(), CreateUserRequest{Name: "", Email: "jo@x.com"})
	require.Error(t, err)

	entries := logs.FilterMessage("create user validation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, []any{"name"}, entries[0].ContextMap()["fields"])
}

func TestCreateUser_EmailAlreadyExists(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "jo@x.com").Return(&domain.User{ID: "other", Email: "jo@x.com"}, nil)

	u, err := uc.CreateUser(ctx, CreateUserRequest{Name: "Jo", Email: "Jo@X.com"})

	assert.Nil(t, u)
	var aerr *pkgerrors.AlreadyExistsError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "User with this email already exists", err.Error())
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_StoreDuplicateRace(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "jo@x.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(nil, pkgerrors.NewAlreadyExistsError("user", "email already exists"))

	u, err := uc.CreateUser(ctx, CreateUserRequest{Name: "Jo", Email: "jo@x.com"})

	assert.Nil(t, u)
	assert.True(t, pkgerrors.IsClientError(err))
}

func TestCreateUser_EmailLookupFails(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "jo@x.com").Return(nil, errors.New("timeout"))

	u, err := uc.CreateUser(ctx, CreateUserRequest{Name: "Jo", Email: "jo@x.com"})

	assert.Nil(t, u)
	assert.EqualError(t, err, "timeout")
	assert.False(t, pkgerrors.IsClientError(err))
}

// ==================== UPDATE USER ====================

func TestUpdateUser_AgeOnly(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, "id-1", domain.UserPatch{Age: intPtr(31)}).
		Return(&domain.User{ID: "id-1", Name: "Jo", Email: "jo@x.com", Age: intPtr(31)}, nil)

	u, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: "id-1", Age: intPtr(31)})

	require.NoError(t, err)
	assert.Equal(t, 31, *u.Age)
	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_NormalizesPatch(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "new@x.com").Return(nil, nil)
	mockRepo.On("Update", ctx, "id-1", mock.MatchedBy(func(p domain.UserPatch) bool {
		return p.Email != nil && *p.Email == "new@x.com" && p.Name != nil && *p.Name == "Joanna" && p.Age == nil
	})).Return(&domain.User{ID: "id-1", Name: "Joanna", Email: "new@x.com"}, nil)

	u, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: "id-1", Name: strPtr(" Joanna "), Email: strPtr("NEW@x.com")})

	require.NoError(t, err)
	assert.Equal(t, "new@x.com", u.Email)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_SameEmailSameUser(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "jo@x.com").Return(&domain.User{ID: "id-1", Email: "jo@x.com"}, nil)
	mockRepo.On("Update", ctx, "id-1", mock.Anything).Return(&domain.User{ID: "id-1", Email: "jo@x.com"}, nil)

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: "id-1", Email: strPtr("jo@x.com")})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_SameEmailIDCaseDiffers(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	const stored = "65a1f0c2e4b0a1b2c3d4e5f6"
	const requested = "65A1F0C2E4B0A1B2C3D4E5F6"

	mockRepo.On("GetByEmail", ctx, "jo@x.com").Return(&domain.User{ID: stored, Email: "jo@x.com"}, nil)
	mockRepo.On("Update", ctx, requested, mock.Anything).Return(&domain.User{ID: stored, Email: "jo@x.com"}, nil)

	u, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: requested, Email: strPtr("jo@x.com")})

	require.NoError(t, err)
	assert.Equal(t, stored, u.ID)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_EmailInUseByAnotherUser(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "taken@x.com").Return(&domain.User{ID: "id-2", Email: "taken@x.com"}, nil)

	u, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: "id-1", Email: strPtr("taken@x.com")})

	assert.Nil(t, u)
	assert.EqualError(t, err, "Email already in use by another user")
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_ValidationError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	u, err := uc.UpdateUser(context.Background(), UpdateUserRequest{ID: "id-1", Name: strPtr(" ")})

	assert.Nil(t, u)
	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "Name is required")
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, "missing", mock.Anything).Return(nil, pkgerrors.NewNotFoundError("user", "User not found"))

	u, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: "missing", Age: intPtr(1)})

	assert.Nil(t, u)
	assert.True(t, pkgerrors.IsNotFound(err))
}

// ==================== DELETE USER ====================

func TestDeleteUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, "id-1").Return(&domain.User{ID: "id-1"}, nil)

	u, err := uc.DeleteUser(ctx, "id-1")

	require.NoError(t, err)
	assert.Equal(t, "id-1", u.ID)
	mockRepo.AssertExpectations(t)
}

func TestDeleteUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, "nope").Return(nil, pkgerrors.NewNotFoundError("user", "User not found"))

	u, err := uc.DeleteUser(ctx, "nope")

	assert.Nil(t, u)
	assert.True(t, pkgerrors.IsNotFound(err))
}
