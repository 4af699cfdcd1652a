// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"
	"accounts/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultMailSubject = "Verify email for user app"

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	codeGen      service.CodeGenerator
	mailer       service.Mailer
	mailSubject  string
	logger       *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	UserRepo      repository.UserRepository
	Hasher        service.PasswordHasher
	TokenService  service.TokenService
	CodeGenerator service.CodeGenerator
	Mailer        service.Mailer
	Config        *config.Config
	Logger        *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	subject := defaultMailSubject
	if params.Config != nil && params.Config.Mail != nil && params.Config.Mail.Subject != "" {
		subject = params.Config.Mail.Subject
	}

	return &accountService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		codeGen:      params.CodeGenerator,
		mailer:       params.Mailer,
		mailSubject:  subject,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListUsers returns every registered user.
func (srv *accountService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := srv.userRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return users, nil
}

// RegisterUser creates an unverified user and emails a verification code.
// The user, the code and the email succeed or fail together.
func (srv *accountService) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*entity.User, error) {
	srv.log(ctx).Info("Starting user registration", slog.String("email", input.Email))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "password does not meet security requirements")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	newUser := &entity.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Country:      input.Country,
		Image:        input.Image,
		IsVerified:   false,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("user registration failed")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to look up email")
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.Wrap(err, "failed to create user during registration")
		}

		code, err := srv.issueCode(ctx, repoFactory.VerificationCodeRepo(), newUser.ID, entity.CodePurposeVerifyEmail)
		if err != nil {
			return err
		}

		return srv.sendCodeEmail(ctx, newUser, code, input.FrontBaseURL, entity.CodePurposeVerifyEmail)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return newUser, nil
}

// GetUser returns a single user by ID.
func (srv *accountService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapUserLookupError(err, "failed to get user")
	}

	return user, nil
}

// UpdateUser applies a partial profile update.
func (srv *accountService) UpdateUser(ctx context.Context, id uuid.UUID, input *usecase.UpdateUserInput) (*entity.User, error) {
	fields := repository.UserFields{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Country:   input.Country,
		Image:     input.Image,
	}

	user, err := srv.userRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, mapUserLookupError(err, "failed to update user")
	}

	srv.log(ctx).Debug("User updated", slog.Any("userID", id))

	return user, nil
}

// DeleteUser removes the user and its outstanding codes. Deleting a missing user succeeds.
func (srv *accountService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := srv.userRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete user")
	}

	srv.log(ctx).Info("User deleted", slog.Any("userID", id))

	return nil
}

// VerifyEmail redeems a verification code and marks its owner verified.
func (srv *accountService) VerifyEmail(ctx context.Context, code string) (*entity.User, error) {
	var verified *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		codeRecord, err := srv.redeemCode(ctx, repoFactory.VerificationCodeRepo(), code, entity.CodePurposeVerifyEmail)
		if err != nil {
			return err
		}

		isVerified := true
		user, err := repoFactory.UserRepo().Update(ctx, codeRecord.UserID, repository.UserFields{IsVerified: &isVerified})
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidCode.WrapMessage("code owner no longer exists")
			}

			return errors.Wrap(err, "failed to mark user verified")
		}
		verified = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Email verification failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute email verification transaction")
	}

	srv.log(ctx).Info("Email verified", slog.Any("userID", verified.ID))

	return verified, nil
}

// Login checks credentials and issues a session token for verified users.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting user login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	if !user.IsVerified {
		return nil, domainerrors.ErrUnverifiedUser.WrapMessage("login failed")
	}

	token, err := srv.tokenService.IssueToken(user.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{User: user, Token: token}, nil
}

// GetLoggedUser resolves the identity carried by a verified token.
func (srv *accountService) GetLoggedUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUnauthorized.WrapMessage("token subject no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load logged user")
	}

	return user, nil
}

// RequestPasswordReset emails a reset code to a registered address.
func (srv *accountService) RequestPasswordReset(ctx context.Context, input *usecase.RequestPasswordResetInput) (*entity.User, error) {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrEmailNotFound.WrapMessage("password reset failed")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		code, err := srv.issueCode(ctx, repoFactory.VerificationCodeRepo(), user.ID, entity.CodePurposeResetPassword)
		if err != nil {
			return err
		}

		return srv.sendCodeEmail(ctx, user, code, input.FrontBaseURL, entity.CodePurposeResetPassword)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute password reset request", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.log(ctx).Info("Password reset requested", slog.Any("userID", user.ID))

	return user, nil
}

// ConfirmPasswordReset redeems a reset code and stores the new password hash.
func (srv *accountService) ConfirmPasswordReset(ctx context.Context, code string, input *usecase.ConfirmPasswordResetInput) (*entity.User, error) {
	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		return nil, errors.Wrap(err, "password does not meet security requirements")
	}

	var updated *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		codeRecord, err := srv.redeemCode(ctx, repoFactory.VerificationCodeRepo(), code, entity.CodePurposeResetPassword)
		if err != nil {
			return err
		}

		hashedPassword, err := srv.hasher.Hash(input.Password)
		if err != nil {
			return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
		}

		user, err := repoFactory.UserRepo().Update(ctx, codeRecord.UserID, repository.UserFields{PasswordHash: &hashedPassword})
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidCode.WrapMessage("code owner no longer exists")
			}

			return errors.Wrap(err, "failed to update password")
		}
		updated = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Password reset failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.log(ctx).Info("Password reset completed", slog.Any("userID", updated.ID))

	return updated, nil
}

// issueCode replaces the user's outstanding codes for the purpose with a fresh one.
func (srv *accountService) issueCode(ctx context.Context, codeRepo repository.VerificationCodeRepository, userID uuid.UUID, purpose entity.CodePurpose) (string, error) {
	if err := codeRepo.DeleteByUser(ctx, userID, purpose); err != nil {
		return "", errors.Wrap(err, "failed to drop previous codes")
	}

	code, err := srv.codeGen.Generate()
	if err != nil {
		return "", errors.Wrap(domainerrors.ErrInternalError, err.Error())
	}

	if err := codeRepo.Create(ctx, &entity.VerificationCode{
		Code:    code,
		UserID:  userID,
		Purpose: purpose,
	}); err != nil {
		return "", errors.Wrap(err, "failed to store verification code")
	}

	return code, nil
}

// redeemCode finds and destroys a code. Losing a race with another redemption counts as an invalid code.
func (srv *accountService) redeemCode(ctx context.Context, codeRepo repository.VerificationCodeRepository, code string, purpose entity.CodePurpose) (*entity.VerificationCode, error) {
	record, err := codeRepo.FindByCode(ctx, code, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, domainerrors.ErrInvalidCode.WrapMessage("code lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find verification code")
	}

	if err := codeRepo.Delete(ctx, record.ID); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, domainerrors.ErrInvalidCode.WrapMessage("code already redeemed")
		}

		return nil, errors.Wrap(err, "failed to destroy verification code")
	}

	return record, nil
}

func (srv *accountService) sendCodeEmail(ctx context.Context, user *entity.User, code, frontBaseURL string, purpose entity.CodePurpose) error {
	msg, err := composeCodeEmail(user, code, frontBaseURL, purpose)
	if err != nil {
		return errors.Wrap(domainerrors.ErrInternalError, err.Error())
	}
	msg.Subject = srv.mailSubject
	msg.RequestID = deliverycontext.GetRequestIDFromContext(ctx)

	if err := srv.mailer.Send(ctx, msg); err != nil {
		srv.log(ctx).Error("Failed to send email",
			slog.Any("userID", user.ID),
			slog.String("purpose", purpose.String()),
			slog.Any("error", err),
		)

		return errors.Wrap(domainerrors.ErrMailDeliveryFailed.WithDetails(err.Error()), "failed to send code email")
	}

	return nil
}

func mapUserLookupError(err error, message string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return domainerrors.ErrUserNotFound.WrapMessage(message)
	}

	return errors.Wrap(err, message)
}
