package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
	"nub.ac.bd/transport/internal/modules/user/dto"
	"nub.ac.bd/transport/internal/modules/user/repository"
	"nub.ac.bd/transport/pkg/apperror"
	"nub.ac.bd/transport/pkg/mailer"
	"nub.ac.bd/transport/pkg/ratelimiter"
	"nub.ac.bd/transport/pkg/storage"
)

const (
	minPasswordLength = 6
	otpLength         = 6
	otpValidity       = 5 * time.Minute
	maxOTPAttempts    = 5
	otpAttemptAction  = "otp_verify"
	resetPasswordLen  = 8
)

type UserService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*entity.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userID uint) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*entity.User, error)
	UploadPhoto(ctx context.Context, userID uint, file dto.PhotoFile) (*entity.User, error)
	ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error
	RequestPasswordResetOTP(ctx context.Context, email string) error
	ResetPasswordWithOTP(ctx context.Context, req dto.ResetPasswordRequest) error
	AdminResetPassword(ctx context.Context, email string) (string, error)
	ChangeRole(ctx context.Context, req dto.ChangeRoleRequest) (*entity.User, error)
	GetAllUsers(ctx context.Context) ([]*entity.User, error)
	GetUserOptions(ctx context.Context) ([]dto.UserOption, error)
}

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type userService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
	mailer       mailer.Mailer
	rdb          *redis.Client
	token        TokenConfig
	photoFolder  string
	now          func() time.Time
}

// NewUserService accepts a nil redis client; OTP attempts are then not
// counted.
func NewUserService(repo repository.UserRepository, imageStorage storage.ImageStorage, m mailer.Mailer, rdb *redis.Client, token TokenConfig, photoFolder string) UserService {
	return &userService{
		repo:         repo,
		imageStorage: imageStorage,
		mailer:       m,
		rdb:          rdb,
		token:        token,
		photoFolder:  photoFolder,
		now:          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*entity.User, error) {
	if req.Password == "" {
		return nil, apperror.BadRequest("Password is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperror.BadRequest("Password must be at least %d characters", minPasswordLength)
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.BadRequest("User already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &entity.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleStudent,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.BadRequest("User already exists")
		}
		return nil, apperror.Internal(err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("User not found")
		}
		return nil, apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid password")
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
	}, nil
}

func (s *userService) generateToken(user *entity.User) (string, int64, error) {
	now := s.now()
	expiresAt := now.Add(s.token.TTL)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.token.Secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

func (s *userService) findUser(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (s *userService) findUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*entity.User, error) {
	return s.findUser(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*entity.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (s *userService) UploadPhoto(ctx context.Context, userID uint, file dto.PhotoFile) (*entity.User, error) {
	if s.imageStorage == nil {
		return nil, apperror.Unavailable("photo storage is not configured")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, file.Reader, s.photoFolder, file.FileName)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	old := user.PhotoURL
	user.PhotoURL = &url
	if err := s.repo.Update(ctx, user); err != nil {
		if delErr := s.imageStorage.DeleteImage(ctx, url); delErr != nil {
			logrus.WithError(delErr).Warn("failed to roll back uploaded photo")
		}
		return nil, apperror.Internal(err)
	}

	if old != nil && *old != "" {
		if err := s.imageStorage.DeleteImage(ctx, *old); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to delete old profile photo")
		}
	}

	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apperror.BadRequest("Invalid old password")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	user.PasswordHash = hash

	if err := s.repo.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *userService) RequestPasswordResetOTP(ctx context.Context, email string) error {
	user, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	otp, err := randomDigits(otpLength)
	if err != nil {
		return apperror.Internal(err)
	}
	issuedAt := s.now()
	user.ResetPassOTP = &otp
	user.OTPIssuedAt = &issuedAt

	if err := s.repo.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	if err := ratelimiter.ClearRateLimit(ctx, s.rdb, user.ID, otpAttemptAction); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("failed to reset otp attempts")
	}

	body := fmt.Sprintf("<p>Your OTP is <strong>%s</strong></p>", otp)
	if err := s.mailer.Send(ctx, user.Email, "Password Reset OTP", body); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *userService) ResetPasswordWithOTP(ctx context.Context, req dto.ResetPasswordRequest) error {
	user, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	switch {
	case req.NewPassword == "":
		return apperror.BadRequest("Password is required")
	case user.ResetPassOTP == nil:
		return apperror.BadRequest("Invalid OTP")
	case *user.ResetPassOTP != req.OTP:
		return s.rejectOTP(ctx, user)
	case user.OTPIssuedAt != nil && s.now().Sub(*user.OTPIssuedAt) > otpValidity:
		return apperror.BadRequest("OTP expired")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	user.PasswordHash = hash
	user.ResetPassOTP = nil
	user.OTPIssuedAt = nil

	if err := s.repo.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	_ = ratelimiter.ClearRateLimit(ctx, s.rdb, user.ID, otpAttemptAction)
	return nil
}

// rejectOTP counts a wrong code. The maxOTPAttempts-th miss burns the issued
// OTP so the user has to request a new one.
func (s *userService) rejectOTP(ctx context.Context, user *entity.User) error {
	attempts, err := ratelimiter.IncrementAttempts(ctx, s.rdb, user.ID, otpAttemptAction, otpValidity)
	if err != nil {
		return apperror.Internal(err)
	}
	if attempts < maxOTPAttempts {
		return apperror.BadRequest("Invalid OTP")
	}

	user.ResetPassOTP = nil
	user.OTPIssuedAt = nil
	if err := s.repo.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	_ = ratelimiter.ClearRateLimit(ctx, s.rdb, user.ID, otpAttemptAction)
	logrus.WithField("user_id", user.ID).Warn("otp burned after repeated invalid attempts")
	return apperror.TooManyRequests("Too many invalid OTP attempts, please request a new OTP")
}

func (s *userService) AdminResetPassword(ctx context.Context, email string) (string, error) {
	user, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	password, err := randomPassword(resetPasswordLen)
	if err != nil {
		return "", apperror.Internal(err)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return "", apperror.Internal(err)
	}
	user.PasswordHash = hash

	if err := s.repo.Update(ctx, user); err != nil {
		return "", apperror.Internal(err)
	}

	body := fmt.Sprintf("<p>Your new password is <strong>%s</strong></p>", password)
	if err := s.mailer.Send(ctx, user.Email, "Password Reset", body); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Warn("failed to mail reset password")
	}

	return password, nil
}

func (s *userService) ChangeRole(ctx context.Context, req dto.ChangeRoleRequest) (*entity.User, error) {
	if !slices.Contains(entity.UserRoles, req.Role) {
		return nil, apperror.BadRequest("Role must be one of: %s", strings.Join(entity.UserRoles, ", "))
	}

	user, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user.Role == req.Role {
		return nil, apperror.BadRequest("User already has this role")
	}

	user.Role = req.Role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

func (s *userService) GetUserOptions(ctx context.Context) ([]dto.UserOption, error) {
	users, err := s.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]dto.UserOption, 0, len(users))
	for _, u := range users {
		options = append(options, dto.UserOption{ID: u.ID, Name: u.Name})
	}
	return options, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func randomDigits(n int) (string, error) {
	return randomString(n, "0123456789")
}

func randomPassword(n int) (string, error) {
	return randomString(n, "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789")
}

func randomString(n int, alphabet string) (string, error) {
	var sb strings.Builder
	limit := big.NewInt(int64(len(alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphabet[idx.Int64()])
	}
	return sb.String(), nil
}
