package postgres

import (
	"context"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type verificationCodeRepository struct {
	db *gorm.DB
}

// NewVerificationCodeRepository is the constructor for verificationCodeRepository.
func NewVerificationCodeRepository(db *gorm.DB) repository.VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

// Create persists a new code. A zero ID is replaced by a fresh UUIDv7.
func (repo *verificationCodeRepository) Create(ctx context.Context, code *entity.VerificationCode) error {
	if code.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate verification code id")
		}
		code.ID = id
	}

	codeM := fromVerificationCodeDomain(code)

	if err := repo.db.WithContext(ctx).Create(codeM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}
		if isUniqueConstraintViolation(err) || isCheckConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "verification code rejected by constraint")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create verification code")
	}

	code.CreatedAt = codeM.CreatedAt

	return nil
}

// FindByCode looks up an outstanding code of the given purpose.
func (repo *verificationCodeRepository) FindByCode(ctx context.Context, code string, purpose entity.CodePurpose) (*entity.VerificationCode, error) {
	var codeM model.VerificationCodeModel
	err := repo.db.WithContext(ctx).
		Where("code = ? AND purpose = ?", code, purpose.String()).
		First(&codeM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCodeNotFound
		}

		return nil, errors.Wrap(err, "failed to find verification code")
	}

	return toVerificationCodeDomain(&codeM), nil
}

// Delete destroys the code, failing with ErrCodeNotFound when another redemption got there first.
func (repo *verificationCodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.VerificationCodeModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete verification code")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCodeNotFound
	}

	return nil
}

// DeleteByUser drops every outstanding code of the given purpose for the user.
func (repo *verificationCodeRepository) DeleteByUser(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) error {
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ?", userID, purpose.String()).
		Delete(&model.VerificationCodeModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete verification codes")
	}

	return nil
}

func toVerificationCodeDomain(data *model.VerificationCodeModel) *entity.VerificationCode {
	if data == nil {
		return nil
	}

	return &entity.VerificationCode{
		ID:        data.ID,
		Code:      data.Code,
		UserID:    data.UserID,
		Purpose:   entity.CodePurpose(data.Purpose),
		CreatedAt: data.CreatedAt,
	}
}

func fromVerificationCodeDomain(data *entity.VerificationCode) *model.VerificationCodeModel {
	if data == nil {
		return nil
	}

	return &model.VerificationCodeModel{
		ID:        data.ID,
		Code:      data.Code,
		UserID:    data.UserID,
		Purpose:   data.Purpose.String(),
		CreatedAt: data.CreatedAt,
	}
}
