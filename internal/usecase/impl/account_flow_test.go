package impl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"accounts/config"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/service"
	"accounts/internal/infra/auth"
	"accounts/internal/infra/persistence/model"
	"accounts/internal/infra/persistence/postgres"
	"accounts/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingMailer keeps every message and can be told to fail.
type recordingMailer struct {
	mu       sync.Mutex
	messages []*service.MailMessage
	failWith error
}

func (m *recordingMailer) Send(_ context.Context, msg *service.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}
	m.messages = append(m.messages, msg)

	return nil
}

func (m *recordingMailer) Close() error { return nil }

// lastCode returns the code carried by the newest message, taken from the link.
func (m *recordingMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	require.NotEmpty(t, m.messages)
	link := m.messages[len(m.messages)-1].Link

	return link[strings.LastIndex(link, "/")+1:]
}

type flowFixture struct {
	service usecase.AccountUsecase
	tokens  service.TokenService
	mailer  *recordingMailer
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.UserModel{}, &model.VerificationCodeModel{}))

	cfg := newTestConfig()
	cfg.Env.ServiceName = "accounts"
	cfg.SecretKey.Access = "flow-test-secret"
	cfg.Auth = &config.AuthConfig{BcryptCost: bcrypt.MinCost}

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	mailer := &recordingMailer{}

	return &flowFixture{
		service: NewAccountService(AccountServiceParams{
			TxManager:     postgres.NewTransactionManager(db),
			UserRepo:      postgres.NewUserRepository(db),
			Hasher:        auth.NewBcryptHasher(cfg),
			TokenService:  tokens,
			CodeGenerator: auth.NewCodeGenerator(),
			Mailer:        mailer,
			Config:        cfg,
			Logger:        newDiscardLogger(),
		}),
		tokens: tokens,
		mailer: mailer,
	}
}

func (f *flowFixture) login(password string) (*usecase.LoginOutput, error) {
	return f.service.Login(context.Background(), &usecase.LoginInput{Email: "ana@example.com", Password: password})
}

func TestAccountFlow_RegisterVerifyLogin(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	user, err := f.service.RegisterUser(ctx, registerInput())
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
	require.Len(t, f.mailer.messages, 1)
	assert.True(t, strings.HasPrefix(f.mailer.messages[0].Link, "https://app.example.com/verify/"))

	_, err = f.login("Secret123!")
	assert.ErrorIs(t, err, domainerrors.ErrUnverifiedUser)

	code := f.mailer.lastCode(t)
	assert.Len(t, code, 64)

	verified, err := f.service.VerifyEmail(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
	assert.True(t, verified.IsVerified)

	_, err = f.service.VerifyEmail(ctx, code)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCode, "codes are single use")

	out, err := f.login("Secret123!")
	require.NoError(t, err)
	claims, err := f.tokens.ValidateToken(out.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	logged, err := f.service.GetLoggedUser(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", logged.Email)

	_, err = f.login("wrong")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAccountFlow_DuplicateRegistration(t *testing.T) {
	f := newFlowFixture(t)

	_, err := f.service.RegisterUser(context.Background(), registerInput())
	require.NoError(t, err)

	_, err = f.service.RegisterUser(context.Background(), registerInput())
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
	assert.Len(t, f.mailer.messages, 1)
}

func TestAccountFlow_MailFailureLeavesNothingBehind(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	f.mailer.failWith = errors.New("smtp: 421 service not available")
	_, err := f.service.RegisterUser(ctx, registerInput())
	require.ErrorIs(t, err, domainerrors.ErrMailDeliveryFailed)

	users, err := f.service.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	f.mailer.failWith = nil
	_, err = f.service.RegisterUser(ctx, registerInput())
	require.NoError(t, err, "the email is free again after a rolled back registration")
}

func TestAccountFlow_PasswordReset(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	_, err := f.service.RegisterUser(ctx, registerInput())
	require.NoError(t, err)
	_, err = f.service.VerifyEmail(ctx, f.mailer.lastCode(t))
	require.NoError(t, err)

	resetInput := &usecase.RequestPasswordResetInput{Email: "ana@example.com", FrontBaseURL: "https://app.example.com/reset"}

	_, err = f.service.RequestPasswordReset(ctx, resetInput)
	require.NoError(t, err)
	firstCode := f.mailer.lastCode(t)

	_, err = f.service.RequestPasswordReset(ctx, resetInput)
	require.NoError(t, err)
	secondCode := f.mailer.lastCode(t)
	assert.NotEqual(t, firstCode, secondCode)

	_, err = f.service.ConfirmPasswordReset(ctx, firstCode, &usecase.ConfirmPasswordResetInput{Password: "NewSecret1!"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCode, "a reissued code replaces the previous one")

	_, err = f.service.VerifyEmail(ctx, secondCode)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCode, "reset codes cannot verify email")

	_, err = f.service.ConfirmPasswordReset(ctx, secondCode, &usecase.ConfirmPasswordResetInput{Password: "NewSecret1!"})
	require.NoError(t, err)

	_, err = f.login("Secret123!")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	_, err = f.login("NewSecret1!")
	require.NoError(t, err)

	_, err = f.service.ConfirmPasswordReset(ctx, secondCode, &usecase.ConfirmPasswordResetInput{Password: "Other1!"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCode)
}

func TestAccountFlow_ResetUnknownEmail(t *testing.T) {
	f := newFlowFixture(t)

	_, err := f.service.RequestPasswordReset(context.Background(), &usecase.RequestPasswordResetInput{
		Email:        "ghost@example.com",
		FrontBaseURL: "https://app.example.com/reset",
	})

	assert.ErrorIs(t, err, domainerrors.ErrEmailNotFound)
	assert.Empty(t, f.mailer.messages)
}

func TestAccountFlow_DeleteUser(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	user, err := f.service.RegisterUser(ctx, registerInput())
	require.NoError(t, err)
	code := f.mailer.lastCode(t)

	require.NoError(t, f.service.DeleteUser(ctx, user.ID))
	require.NoError(t, f.service.DeleteUser(ctx, user.ID))

	_, err = f.service.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	_, err = f.service.GetLoggedUser(ctx, user.ID)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = f.service.VerifyEmail(ctx, code)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCode)
}

func TestAccountFlow_UpdateUser(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	user, err := f.service.RegisterUser(ctx, registerInput())
	require.NoError(t, err)

	updated, err := f.service.UpdateUser(ctx, user.ID, &usecase.UpdateUserInput{
		FirstName: strPtr("Anita"),
		Image:     strPtr("https://cdn.example.com/a.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anita", updated.FirstName)
	assert.Equal(t, "Lee", updated.LastName)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.Image)
	assert.False(t, updated.IsVerified)

	other := registerInput()
	other.Email = "bob@example.com"
	_, err = f.service.RegisterUser(ctx, other)
	require.NoError(t, err)

	_, err = f.service.UpdateUser(ctx, user.ID, &usecase.UpdateUserInput{Email: strPtr("bob@example.com")})
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)

	_, err = f.service.UpdateUser(ctx, uuid.New(), &usecase.UpdateUserInput{Country: strPtr("CL")})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAccountFlow_PasswordOverBcryptByteLimit(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	input := registerInput()
	input.Password = strings.Repeat("é", 40)
	_, err := f.service.RegisterUser(ctx, input)
	require.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.HTTPCode())
	assert.Empty(t, f.mailer.messages)

	input.Password = strings.Repeat("é", 36)
	_, err = f.service.RegisterUser(ctx, input)
	require.NoError(t, err)

	_, err = f.service.RequestPasswordReset(ctx, &usecase.RequestPasswordResetInput{
		Email:        "ana@example.com",
		FrontBaseURL: "https://app.example.com/reset",
	})
	require.NoError(t, err)
	code := f.mailer.lastCode(t)

	_, err = f.service.ConfirmPasswordReset(ctx, code, &usecase.ConfirmPasswordResetInput{Password: strings.Repeat("é", 40)})
	assert.ErrorIs(t, err, domainerrors.ErrPasswordStrength)

	_, err = f.service.ConfirmPasswordReset(ctx, code, &usecase.ConfirmPasswordResetInput{Password: "Other1!"})
	assert.NoError(t, err, "a rejected password leaves the code outstanding")
}
