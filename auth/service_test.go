package auth_test

import (
	"arcade/auth"
	"arcade/domain"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSignup(t *testing.T) {
	t.Parallel()

	type testCase struct {
		description   string
		username      string
		password      string
		setupMocks    func(repo *MockUserRepo, hasher *MockPasswordHasher, tokens *MockTokenManager)
		expectedToken string
		expectedError error
	}

	dbErr := errors.Join(domain.UnexpectedDatabaseError, errors.New("connection reset"))

	testCases := []testCase{
		{
			description: "success",
			username:    "oussama",
			password:    "pass1234",
			setupMocks: func(repo *MockUserRepo, hasher *MockPasswordHasher, tokens *MockTokenManager) {
				hasher.On("Hash", "pass1234").Return("hashed", nil)
				repo.On("CreateUser", mock.Anything, "oussama", "hashed").Return("id-1", nil)
				tokens.On("Generate", "id-1", mock.Anything).Return("token-1", nil)
			},
			expectedToken: "token-1",
		},
		{
			description:   "invalid username",
			username:      "Bad Name",
			password:      "pass1234",
			expectedError: auth.ErrInvalidUsernameFormat,
		},
		{
			description:   "username too short",
			username:      "ab",
			password:      "pass1234",
			expectedError: auth.ErrInvalidUsernameFormat,
		},
		{
			description:   "weak password",
			username:      "oussama",
			password:      "1234567",
			expectedError: auth.ErrWeakPassword,
		},
		{
			description:   "password too long",
			username:      "oussama",
			password:      strings.Repeat("p", 65),
			expectedError: auth.ErrPasswordTooLong,
		},
		{
			description: "duplicate username",
			username:    "oussama",
			password:    "pass1234",
			setupMocks: func(repo *MockUserRepo, hasher *MockPasswordHasher, tokens *MockTokenManager) {
				hasher.On("Hash", "pass1234").Return("hashed", nil)
				repo.On("CreateUser", mock.Anything, "oussama", "hashed").Return("", domain.ErrDuplicateUsername)
			},
			expectedError: domain.ErrDuplicateUsername,
		},
		{
			description: "database failure",
			username:    "oussama",
			password:    "pass1234",
			setupMocks: func(repo *MockUserRepo, hasher *MockPasswordHasher, tokens *MockTokenManager) {
				hasher.On("Hash", "pass1234").Return("hashed", nil)
				repo.On("CreateUser", mock.Anything, "oussama", "hashed").Return("", dbErr)
			},
			expectedError: domain.UnexpectedDatabaseError,
		},
		{
			description: "hashing failure",
			username:    "oussama",
			password:    "pass1234",
			setupMocks: func(repo *MockUserRepo, hasher *MockPasswordHasher, tokens *MockTokenManager) {
				hasher.On("Hash", "pass1234").Return("", domain.UnexpectedPasswordHashingError)
			},
			expectedError: domain.UnexpectedPasswordHashingError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()
			repo, hasher, tokens := new(MockUserRepo), new(MockPasswordHasher), new(MockTokenManager)
			if tc.setupMocks != nil {
				tc.setupMocks(repo, hasher, tokens)
			}
			service := auth.NewService(repo, hasher, tokens)

			token, err := service.Signup(context.Background(), tc.username, tc.password)

			assert.ErrorIs(t, err, tc.expectedError)
			assert.Equal(t, tc.expectedToken, token)
			repo.AssertExpectations(t)
			hasher.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	user := domain.User{Id: "id-1", Username: "oussama", PasswordHash: "hashed"}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		repo, hasher, tokens := new(MockUserRepo), new(MockPasswordHasher), new(MockTokenManager)
		repo.On("GetUserByUsername", mock.Anything, "oussama").Return(user, nil)
		hasher.On("Compare", "hashed", "pass1234").Return(true, nil)
		tokens.On("Generate", "id-1", mock.Anything).Return("token-1", nil)

		token, err := auth.NewService(repo, hasher, tokens).Login(context.Background(), "oussama", "pass1234")

		assert.NoError(t, err)
		assert.Equal(t, "token-1", token)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		repo, hasher, tokens := new(MockUserRepo), new(MockPasswordHasher), new(MockTokenManager)
		repo.On("GetUserByUsername", mock.Anything, "oussama").Return(user, nil)
		hasher.On("Compare", "hashed", "nope").Return(false, nil)

		_, err := auth.NewService(repo, hasher, tokens).Login(context.Background(), "oussama", "nope")

		assert.ErrorIs(t, err, auth.ErrIncorrectPassword)
		tokens.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		repo, hasher, tokens := new(MockUserRepo), new(MockPasswordHasher), new(MockTokenManager)
		repo.On("GetUserByUsername", mock.Anything, "ghost").Return(domain.User{}, domain.ErrUserNotFound)

		_, err := auth.NewService(repo, hasher, tokens).Login(context.Background(), "ghost", "pass1234")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestMe(t *testing.T) {
	t.Parallel()
	repo := new(MockUserRepo)
	repo.On("GetUserById", mock.Anything, "id-1").Return(domain.User{Id: "id-1", Username: "oussama"}, nil)

	user, err := auth.NewService(repo, new(MockPasswordHasher), new(MockTokenManager)).Me(context.Background(), "id-1")

	assert.NoError(t, err)
	assert.Equal(t, "oussama", user.Username)
}
