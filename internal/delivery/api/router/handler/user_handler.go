// Package handler contains the HTTP handlers for the accounts API.
package handler

import (
	"log/slog"
	"net/http"

	"accounts/internal/delivery/api/response"
	deliverycontext "accounts/internal/delivery/context"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type registerUserRequest struct {
	FirstName    string `json:"firstName" validate:"required,max=100"`
	LastName     string `json:"lastName" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,max=72"`
	Country      string `json:"country" validate:"max=100"`
	Image        string `json:"image" validate:"max=2048"`
	FrontBaseURL string `json:"frontBaseUrl" validate:"required,url"`
}

type updateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitnil,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitnil,min=1,max=100"`
	Email     *string `json:"email" validate:"omitnil,email,max=255"`
	Country   *string `json:"country" validate:"omitnil,max=100"`
	Image     *string `json:"image" validate:"omitnil,max=2048"`
}

// Malformed emails on login and reset are left to the account lookup, which answers 401.
type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type requestPasswordResetRequest struct {
	Email        string `json:"email" validate:"required"`
	FrontBaseURL string `json:"frontBaseUrl" validate:"required,url"`
}

type confirmPasswordResetRequest struct {
	Password string `json:"password" validate:"required,max=72"`
}

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
	Logger    *slog.Logger
}

// UserHandler serves the /users routes.
type UserHandler struct {
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewUserHandler is the constructor for UserHandler
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		accountUC: params.AccountUC,
		logger:    params.Logger,
	}
}

// ListUsers returns every user.
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.accountUC.ListUsers(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, users)
}

// RegisterUser creates an account and sends the verification email.
func (h *UserHandler) RegisterUser(c echo.Context) error {
	var req registerUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accountUC.RegisterUser(c.Request().Context(), &usecase.RegisterUserInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		Country:      req.Country,
		Image:        req.Image,
		FrontBaseURL: req.FrontBaseURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, user)
}

// GetLoggedUser returns the user the bearer token was issued for.
func (h *UserHandler) GetLoggedUser(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized.WrapMessage("missing authenticated user")
	}

	user, err := h.accountUC.GetLoggedUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user)
}

// Login exchanges credentials for a session token.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.accountUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// VerifyEmail redeems the code from the verification link.
func (h *UserHandler) VerifyEmail(c echo.Context) error {
	user, err := h.accountUC.VerifyEmail(c.Request().Context(), c.Param("code"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user)
}

// RequestPasswordReset emails a reset code.
func (h *UserHandler) RequestPasswordReset(c echo.Context) error {
	var req requestPasswordResetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accountUC.RequestPasswordReset(c.Request().Context(), &usecase.RequestPasswordResetInput{
		Email:        req.Email,
		FrontBaseURL: req.FrontBaseURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, user)
}

// ConfirmPasswordReset redeems a reset code and sets the new password.
func (h *UserHandler) ConfirmPasswordReset(c echo.Context) error {
	var req confirmPasswordResetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accountUC.ConfirmPasswordReset(c.Request().Context(), c.Param("code"), &usecase.ConfirmPasswordResetInput{
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, user)
}

// GetUser returns one user. Unknown or malformed ids get an empty 404.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}

	user, err := h.accountUC.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return c.NoContent(http.StatusNotFound)
		}

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user)
}

// UpdateUser applies a partial profile update. Unknown or malformed ids get an empty 404.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}

	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accountUC.UpdateUser(c.Request().Context(), id, &usecase.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Country:   req.Country,
		Image:     req.Image,
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return c.NoContent(http.StatusNotFound)
		}

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user)
}

// DeleteUser removes a user. It answers 204 whether or not the user existed.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.accountUC.DeleteUser(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request body")
	}

	return c.Validate(req)
}
