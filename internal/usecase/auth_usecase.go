package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"citywatch/internal/domain/entity"
	"citywatch/internal/domain/repository"
	"citywatch/internal/domain/service"
	"citywatch/internal/infrastructure/auth"
	"citywatch/pkg/errors"
)

type AuthUseCase struct {
	userRepo   repository.UserRepository
	tokens     TokenIssuer
	notifier   service.Notifier
	adminEmail string
}

func NewAuthUseCase(userRepo repository.UserRepository, tokens TokenIssuer, notifier service.Notifier, adminEmail string) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		tokens:     tokens,
		notifier:   notifier,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
	}
}

type RegisterInput struct {
	Name            string
	Surname         string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Country         string
}

type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	if input.Password != input.ConfirmPassword {
		return nil, errors.Validation([]string{"passwords do not match"})
	}

	email := strings.ToLower(input.Email)
	if existing, err := uc.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.BadRequest("Email already in use", nil)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	// The bootstrap operator address registers as a verified admin, no code.
	isAdmin := email == uc.adminEmail && uc.adminEmail != ""

	user := &entity.User{
		Name:         input.Name,
		Surname:      input.Surname,
		Email:        email,
		PasswordHash: hash,
		Phone:        input.Phone,
		Country:      input.Country,
		Role:         entity.RoleUser,
		Verified:     isAdmin,
	}
	if isAdmin {
		user.Role = entity.RoleAdmin
	} else {
		user.VerificationCode = generateVerificationCode()
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if !isAdmin {
		uc.sendVerificationEmail(user)
	}

	return user, nil
}

func (uc *AuthUseCase) VerifyEmail(ctx context.Context, code string) error {
	user, err := uc.userRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		return errors.BadRequest("Invalid or expired code", err)
	}

	user.Verified = true
	user.VerificationCode = ""
	return uc.userRepo.Update(ctx, user)
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	if !user.Verified {
		return nil, errors.BadRequest("Please verify your email first", nil)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errors.Unauthorized("Invalid credentials", nil)
	}

	token, err := uc.tokens.Generate(user)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}

func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return errors.BadRequest("Wrong current password", nil)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return errors.Internal("Failed to hash password", err)
	}

	user.PasswordHash = hash
	return uc.userRepo.Update(ctx, user)
}

// ChangeEmail flips the account back to unverified and mails a fresh code to
// the new address.
func (uc *AuthUseCase) ChangeEmail(ctx context.Context, userID, newEmail string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	email := strings.ToLower(newEmail)
	if existing, err := uc.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return errors.BadRequest("Email already in use", nil)
	}

	user.Email = email
	user.Verified = false
	user.VerificationCode = generateVerificationCode()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return err
	}

	uc.sendVerificationEmail(user)
	return nil
}

func (uc *AuthUseCase) sendVerificationEmail(user *entity.User) {
	uc.notifier.Send(user.Email, "Verify your email",
		fmt.Sprintf("<p>Your code: <strong>%s</strong></p>", user.VerificationCode))
}

func generateVerificationCode() string {
	return fmt.Sprintf("%06d", 100000+rand.IntN(900000))
}
