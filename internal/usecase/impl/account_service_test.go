package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"
	"accounts/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func registerInput() *usecase.RegisterUserInput {
	return &usecase.RegisterUserInput{
		FirstName:    "Ana",
		LastName:     "Lee",
		Email:        "ana@example.com",
		Password:     "Secret123!",
		Country:      "PE",
		FrontBaseURL: "https://app.example.com/verify",
	}
}

func TestAccountService_RegisterUser_Success(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	input := registerInput()
	userID := uuid.New()

	f.hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)
	f.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	f.expectTransaction()

	f.txUserRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
	f.txUserRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			assert.False(t, user.IsVerified)
			assert.Equal(t, "hashed_password", user.PasswordHash)
			user.ID = userID
		}).
		Return(nil)
	f.codeRepo.EXPECT().DeleteByUser(ctx, userID, entity.CodePurposeVerifyEmail).Return(nil)
	f.codeGen.EXPECT().Generate().Return("c0ffee", nil)
	f.codeRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(code *entity.VerificationCode) bool {
			return code.Code == "c0ffee" && code.UserID == userID && code.Purpose == entity.CodePurposeVerifyEmail
		})).
		Return(nil)
	f.mailer.EXPECT().
		Send(ctx, mock.AnythingOfType("*service.MailMessage")).
		Run(func(_ context.Context, msg *service.MailMessage) {
			assert.Equal(t, "ana@example.com", msg.To)
			assert.Equal(t, "Verify email for user app", msg.Subject)
			assert.Equal(t, "https://app.example.com/verify/c0ffee", msg.Link)
			assert.Contains(t, msg.HTML, "Hello Ana Lee")
			assert.Contains(t, msg.HTML, "c0ffee")
			assert.Equal(t, "verify_email", msg.Purpose)
		}).
		Return(nil)

	user, err := f.service.RegisterUser(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.False(t, user.IsVerified)
}

func TestAccountService_RegisterUser_DuplicateEmail(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	input := registerInput()

	f.hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)
	f.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	f.expectTransaction()
	f.txUserRepo.EXPECT().FindByEmail(ctx, input.Email).Return(&entity.User{ID: uuid.New()}, nil)

	user, err := f.service.RegisterUser(ctx, input)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestAccountService_RegisterUser_WeakPassword(t *testing.T) {
	f := createTestAccountService(t)
	input := registerInput()

	f.hasher.EXPECT().
		ValidatePasswordStrength(input.Password).
		Return(domainerrors.ErrPasswordStrength.WithDetails("password must contain at least one number"))

	_, err := f.service.RegisterUser(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
}

func TestAccountService_RegisterUser_MailFailureAborts(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	input := registerInput()

	f.hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)
	f.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	f.expectTransaction()
	f.txUserRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
	f.txUserRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	f.codeRepo.EXPECT().DeleteByUser(ctx, mock.Anything, entity.CodePurposeVerifyEmail).Return(nil)
	f.codeGen.EXPECT().Generate().Return("c0ffee", nil)
	f.codeRepo.EXPECT().Create(ctx, mock.Anything).Return(nil)
	f.mailer.EXPECT().Send(ctx, mock.Anything).Return(errors.New("smtp: connection refused"))

	user, err := f.service.RegisterUser(ctx, input)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domainerrors.ErrMailDeliveryFailed)
}

func TestAccountService_GetUser(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	id := uuid.New()

	f.userRepo.EXPECT().FindByID(ctx, id).Return(&entity.User{ID: id}, nil).Once()
	user, err := f.service.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	missing := uuid.New()
	f.userRepo.EXPECT().FindByID(ctx, missing).Return(nil, repository.ErrUserNotFound).Once()
	_, err = f.service.GetUser(ctx, missing)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAccountService_ListUsers(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()

	users := []*entity.User{{ID: uuid.New()}, {ID: uuid.New()}}
	f.userRepo.EXPECT().List(ctx).Return(users, nil)

	result, err := f.service.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestAccountService_UpdateUser(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	id := uuid.New()

	f.userRepo.EXPECT().
		Update(ctx, id, repository.UserFields{Country: strPtr("CL")}).
		Return(&entity.User{ID: id, Country: "CL"}, nil).Once()

	user, err := f.service.UpdateUser(ctx, id, &usecase.UpdateUserInput{Country: strPtr("CL")})
	require.NoError(t, err)
	assert.Equal(t, "CL", user.Country)

	f.userRepo.EXPECT().
		Update(ctx, id, repository.UserFields{FirstName: strPtr("X")}).
		Return(nil, repository.ErrUserNotFound).Once()

	_, err = f.service.UpdateUser(ctx, id, &usecase.UpdateUserInput{FirstName: strPtr("X")})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAccountService_DeleteUser(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	id := uuid.New()

	f.userRepo.EXPECT().Delete(ctx, id).Return(nil).Twice()

	require.NoError(t, f.service.DeleteUser(ctx, id))
	require.NoError(t, f.service.DeleteUser(ctx, id))
}

func TestAccountService_VerifyEmail_Success(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	userID := uuid.New()
	codeID := uuid.New()

	f.expectTransaction()
	f.codeRepo.EXPECT().
		FindByCode(ctx, "c0ffee", entity.CodePurposeVerifyEmail).
		Return(&entity.VerificationCode{ID: codeID, UserID: userID, Purpose: entity.CodePurposeVerifyEmail}, nil)
	f.codeRepo.EXPECT().Delete(ctx, codeID).Return(nil)
	f.txUserRepo.EXPECT().
		Update(ctx, userID, mock.MatchedBy(func(fields repository.UserFields) bool {
			return fields.IsVerified != nil && *fields.IsVerified && fields.PasswordHash == nil
		})).
		Return(&entity.User{ID: userID, IsVerified: true}, nil)

	user, err := f.service.VerifyEmail(ctx, "c0ffee")

	require.NoError(t, err)
	assert.True(t, user.IsVerified)
}

func TestAccountService_VerifyEmail_InvalidCode(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()

	f.expectTransaction()
	f.codeRepo.EXPECT().
		FindByCode(ctx, "nope", entity.CodePurposeVerifyEmail).
		Return(nil, repository.ErrCodeNotFound)

	_, err := f.service.VerifyEmail(ctx, "nope")

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCode)
}

func TestAccountService_VerifyEmail_LostRedemptionRace(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	codeID := uuid.New()

	f.expectTransaction()
	f.codeRepo.EXPECT().
		FindByCode(ctx, "c0ffee", entity.CodePurposeVerifyEmail).
		Return(&entity.VerificationCode{ID: codeID, UserID: uuid.New()}, nil)
	f.codeRepo.EXPECT().Delete(ctx, codeID).Return(repository.ErrCodeNotFound)

	_, err := f.service.VerifyEmail(ctx, "c0ffee")

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCode)
}

func TestAccountService_Login(t *testing.T) {
	verified := &entity.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: "hash", IsVerified: true}
	unverified := &entity.User{ID: uuid.New(), Email: "new@example.com", PasswordHash: "hash"}

	tests := []struct {
		name    string
		email   string
		setup   func(f accountServiceFixtures)
		wantErr error
	}{
		{
			name:  "verified user with correct password",
			email: verified.Email,
			setup: func(f accountServiceFixtures) {
				f.userRepo.EXPECT().FindByEmail(mock.Anything, verified.Email).Return(verified, nil)
				f.hasher.EXPECT().Check("Secret123!", "hash").Return(true)
				f.tokenService.EXPECT().IssueToken(verified.ID).Return("signed.jwt.token", nil)
			},
		},
		{
			name:  "unknown email",
			email: "ghost@example.com",
			setup: func(f accountServiceFixtures) {
				f.userRepo.EXPECT().FindByEmail(mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)
			},
			wantErr: domainerrors.ErrInvalidCredentials,
		},
		{
			name:  "wrong password",
			email: verified.Email,
			setup: func(f accountServiceFixtures) {
				f.userRepo.EXPECT().FindByEmail(mock.Anything, verified.Email).Return(verified, nil)
				f.hasher.EXPECT().Check("Secret123!", "hash").Return(false)
			},
			wantErr: domainerrors.ErrInvalidCredentials,
		},
		{
			name:  "unverified user",
			email: unverified.Email,
			setup: func(f accountServiceFixtures) {
				f.userRepo.EXPECT().FindByEmail(mock.Anything, unverified.Email).Return(unverified, nil)
				f.hasher.EXPECT().Check("Secret123!", "hash").Return(true)
			},
			wantErr: domainerrors.ErrUnverifiedUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestAccountService(t)
			tt.setup(f)

			out, err := f.service.Login(context.Background(), &usecase.LoginInput{Email: tt.email, Password: "Secret123!"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, out)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, "signed.jwt.token", out.Token)
			assert.Equal(t, verified.ID, out.User.ID)
		})
	}
}

func TestAccountService_Login_SameMessageForUnknownEmailAndWrongPassword(t *testing.T) {
	user := &entity.User{ID: uuid.New(), PasswordHash: "hash", IsVerified: true}

	f := createTestAccountService(t)
	f.userRepo.EXPECT().FindByEmail(mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)
	f.userRepo.EXPECT().FindByEmail(mock.Anything, "ana@example.com").Return(user, nil)
	f.hasher.EXPECT().Check("wrong", "hash").Return(false)

	_, unknownErr := f.service.Login(context.Background(), &usecase.LoginInput{Email: "ghost@example.com", Password: "wrong"})
	_, wrongErr := f.service.Login(context.Background(), &usecase.LoginInput{Email: "ana@example.com", Password: "wrong"})

	var unknownApp, wrongApp domainerrors.AppError
	require.True(t, errors.As(unknownErr, &unknownApp))
	require.True(t, errors.As(wrongErr, &wrongApp))
	assert.Equal(t, "invalid credentials", unknownApp.Message())
	assert.Equal(t, unknownApp.Message(), wrongApp.Message())
	assert.Equal(t, unknownApp.ErrorCode(), wrongApp.ErrorCode())
}

func TestAccountService_GetLoggedUser(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	id := uuid.New()

	f.userRepo.EXPECT().FindByID(ctx, id).Return(&entity.User{ID: id}, nil).Once()
	user, err := f.service.GetLoggedUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	f.userRepo.EXPECT().FindByID(ctx, id).Return(nil, repository.ErrUserNotFound).Once()
	_, err = f.service.GetLoggedUser(ctx, id)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAccountService_RequestPasswordReset(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), FirstName: "Ana", LastName: "Lee", Email: "ana@example.com", IsVerified: true}

	f.userRepo.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)
	f.expectTransaction()
	f.codeRepo.EXPECT().DeleteByUser(ctx, user.ID, entity.CodePurposeResetPassword).Return(nil)
	f.codeGen.EXPECT().Generate().Return("beef", nil)
	f.codeRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(code *entity.VerificationCode) bool {
			return code.Code == "beef" && code.Purpose == entity.CodePurposeResetPassword
		})).
		Return(nil)
	f.mailer.EXPECT().
		Send(ctx, mock.MatchedBy(func(msg *service.MailMessage) bool {
			return msg.Link == "https://app.example.com/reset/beef" &&
				msg.Purpose == "reset_password" &&
				strings.Contains(msg.HTML, "update your password")
		})).
		Return(nil)

	result, err := f.service.RequestPasswordReset(ctx, &usecase.RequestPasswordResetInput{
		Email:        user.Email,
		FrontBaseURL: "https://app.example.com/reset/",
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, result.ID)
	assert.True(t, result.IsVerified, "reset does not touch verification")
}

func TestAccountService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()

	f.userRepo.EXPECT().FindByEmail(ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := f.service.RequestPasswordReset(ctx, &usecase.RequestPasswordResetInput{Email: "ghost@example.com"})

	assert.ErrorIs(t, err, domainerrors.ErrEmailNotFound)
}

func TestAccountService_ConfirmPasswordReset(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	userID := uuid.New()
	codeID := uuid.New()

	f.hasher.EXPECT().ValidatePasswordStrength("NewSecret1!").Return(nil)
	f.expectTransaction()
	f.codeRepo.EXPECT().
		FindByCode(ctx, "beef", entity.CodePurposeResetPassword).
		Return(&entity.VerificationCode{ID: codeID, UserID: userID}, nil)
	f.codeRepo.EXPECT().Delete(ctx, codeID).Return(nil)
	f.hasher.EXPECT().Hash("NewSecret1!").Return("new_hash", nil)
	f.txUserRepo.EXPECT().
		Update(ctx, userID, mock.MatchedBy(func(fields repository.UserFields) bool {
			return fields.PasswordHash != nil && *fields.PasswordHash == "new_hash" && fields.IsVerified == nil
		})).
		Return(&entity.User{ID: userID, UpdatedAt: time.Now()}, nil)

	user, err := f.service.ConfirmPasswordReset(ctx, "beef", &usecase.ConfirmPasswordResetInput{Password: "NewSecret1!"})

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
}

func TestAccountService_ConfirmPasswordReset_VerificationCodeRejected(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()

	f.hasher.EXPECT().ValidatePasswordStrength("NewSecret1!").Return(nil)
	f.expectTransaction()
	f.codeRepo.EXPECT().
		FindByCode(ctx, "verify-code", entity.CodePurposeResetPassword).
		Return(nil, repository.ErrCodeNotFound)

	_, err := f.service.ConfirmPasswordReset(ctx, "verify-code", &usecase.ConfirmPasswordResetInput{Password: "NewSecret1!"})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCode)
}

func TestComposeCodeEmail(t *testing.T) {
	user := &entity.User{FirstName: "Ana", LastName: "Lee", Email: "ana@example.com"}

	verify, err := composeCodeEmail(user, "abc", "https://app.example.com/verify", entity.CodePurposeVerifyEmail)
	require.NoError(t, err)
	assert.Contains(t, verify.HTML, "Hello Ana Lee")
	assert.Contains(t, verify.HTML, `<a href="https://app.example.com/verify/abc">`)
	assert.Contains(t, verify.HTML, "<b>Code:</b> abc")
	assert.NotContains(t, verify.HTML, "update your password")

	reset, err := composeCodeEmail(user, "abc", "https://app.example.com/reset", entity.CodePurposeResetPassword)
	require.NoError(t, err)
	assert.Contains(t, reset.HTML, "update your password")

	hostile := &entity.User{FirstName: "<script>", LastName: "x"}
	escaped, err := composeCodeEmail(hostile, "abc", "https://app.example.com", entity.CodePurposeVerifyEmail)
	require.NoError(t, err)
	assert.NotContains(t, escaped.HTML, "<script>")
}
