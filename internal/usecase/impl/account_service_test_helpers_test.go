package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"accounts/config"
	"accounts/internal/domain/repository"
	mockRepo "accounts/internal/mocks/repository"
	mockSvc "accounts/internal/mocks/service"
	"accounts/internal/usecase"

	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Mail: &config.MailConfig{Subject: "Verify email for user app"},
	}
}

func strPtr(s string) *string { return &s }

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service      usecase.AccountUsecase
	txManager    *mockRepo.MockTransactionManager
	factory      *mockRepo.MockRepositoryFactory
	userRepo     *mockRepo.MockUserRepository
	txUserRepo   *mockRepo.MockUserRepository
	codeRepo     *mockRepo.MockVerificationCodeRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
	codeGen      *mockSvc.MockCodeGenerator
	mailer       *mockSvc.MockMailer
}

func createTestAccountService(t *testing.T) accountServiceFixtures {
	f := accountServiceFixtures{
		txManager:    mockRepo.NewMockTransactionManager(t),
		factory:      mockRepo.NewMockRepositoryFactory(t),
		userRepo:     mockRepo.NewMockUserRepository(t),
		txUserRepo:   mockRepo.NewMockUserRepository(t),
		codeRepo:     mockRepo.NewMockVerificationCodeRepository(t),
		hasher:       mockSvc.NewMockPasswordHasher(t),
		tokenService: mockSvc.NewMockTokenService(t),
		codeGen:      mockSvc.NewMockCodeGenerator(t),
		mailer:       mockSvc.NewMockMailer(t),
	}

	f.service = NewAccountService(AccountServiceParams{
		TxManager:     f.txManager,
		UserRepo:      f.userRepo,
		Hasher:        f.hasher,
		TokenService:  f.tokenService,
		CodeGenerator: f.codeGen,
		Mailer:        f.mailer,
		Config:        newTestConfig(),
		Logger:        newDiscardLogger(),
	})

	return f
}

// expectTransaction runs the callback against the transactional mocks and returns its error,
// the way the gorm transaction manager does.
func (f accountServiceFixtures) expectTransaction() {
	f.txManager.EXPECT().
		Execute(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(f.factory)
		})
	f.factory.EXPECT().UserRepo().Return(f.txUserRepo).Maybe()
	f.factory.EXPECT().VerificationCodeRepo().Return(f.codeRepo).Maybe()
}
