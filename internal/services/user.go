package services

import (
	"context"
	"errors"
	"strings"

	"inkpost/internal/apperr"
	"inkpost/internal/models"
	"inkpost/internal/utils"

	"gorm.io/gorm"
)

const verifyCodeLength = 6

type UserService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewUserService(db *gorm.DB, mailer Mailer) *UserService {
	return &UserService{db: db, mailer: mailer}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// UserPatch is the admin-only account update.
type UserPatch struct {
	Role          *string `json:"role"`
	Status        *string `json:"status"`
	EmailVerified *bool   `json:"emailVerified"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified user and mails a verification code.
// A taken email surfaces as the unique violation from the database.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:      normalizeEmail(in.Email),
		Name:       strings.TrimSpace(in.Name),
		Password:   hash,
		Role:       models.RoleUser,
		Status:     models.UserStatusActive,
		VerifyCode: utils.GenerateRandomCode(verifyCodeLength),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	s.mailer.SendVerificationCode(user.Email, user.Name, user.VerifyCode)
	return &user, nil
}

// Verify marks the email as verified when code matches the one sent.
func (s *UserService) Verify(ctx context.Context, in VerifyInput) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", normalizeEmail(in.Email)).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "user not found")
			}
			return err
		}
		if user.EmailVerified {
			return nil
		}
		if user.VerifyCode == "" || user.VerifyCode != in.Code {
			return apperr.New(apperr.ValidationFailed, "verification code is incorrect")
		}
		return tx.Model(&user).Updates(map[string]any{
			"email_verified": true,
			"verify_code":    "",
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks the credentials. Unknown email and wrong password fail
// the same way; blocked accounts are refused.
func (s *UserService) Authenticate(ctx context.Context, in LoginInput) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.Unauthenticated, "invalid email or password")
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(in.Password, user.Password) {
		return nil, apperr.New(apperr.Unauthenticated, "invalid email or password")
	}
	if !user.IsActive() {
		return nil, apperr.New(apperr.Forbidden, "this account has been blocked")
	}
	return &user, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminUpdate is the only path that changes role, status or the verified flag.
func (s *UserService) AdminUpdate(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	updates := map[string]any{}
	if patch.Role != nil {
		if !models.ValidRole(*patch.Role) {
			return nil, apperr.Newf(apperr.ValidationFailed, "unknown role %q", *patch.Role)
		}
		updates["role"] = *patch.Role
	}
	if patch.Status != nil {
		if !models.ValidUserStatus(*patch.Status) {
			return nil, apperr.Newf(apperr.ValidationFailed, "unknown user status %q", *patch.Status)
		}
		updates["status"] = *patch.Status
	}
	if patch.EmailVerified != nil {
		updates["email_verified"] = *patch.EmailVerified
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "user not found")
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&user).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SeedAdmin creates a verified admin account. An existing email is a conflict.
func (s *UserService) SeedAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.New(apperr.ValidationFailed, "admin email and password are required")
	}
	if name == "" {
		name = "Admin"
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.New(apperr.Conflict, "an account with this email already exists")
		}

		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		user = models.User{
			Email:         email,
			Name:          name,
			Password:      hash,
			Role:          models.RoleAdmin,
			Status:        models.UserStatusActive,
			EmailVerified: true,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
