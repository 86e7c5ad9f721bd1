package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quitbet/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken 在注册邮箱已被占用时返回
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 在邮箱或密码不匹配时返回
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken 在令牌无效或过期时返回
	ErrInvalidToken = errors.New("invalid or expired token")
)

const defaultTokenTTL = 60 * time.Minute

// AuthService 负责注册、登录与 Bearer 令牌的签发校验
type AuthService struct {
	db       *gorm.DB
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService 构造 AuthService
func NewAuthService(gdb *gorm.DB, secret string) *AuthService {
	return &AuthService{
		db:       gdb,
		secret:   []byte(secret),
		tokenTTL: defaultTokenTTL,
	}
}

// Register 创建新用户，密码以 bcrypt 哈希存储
func (s *AuthService) Register(name, email, password string) (*db.User, error) {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	if trimmedEmail == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	var existing db.User
	err := s.db.Where("email = ?", trimmedEmail).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Name:     strings.TrimSpace(name),
		Email:    trimmedEmail,
		Password: string(hashed),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Login 校验凭据并签发一枚 HS256 Bearer 令牌
func (s *AuthService) Login(email, password string) (string, *db.User, error) {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))

	var user db.User
	if err := s.db.Where("email = ?", trimmedEmail).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *AuthService) issueToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken 校验令牌并返回其中的用户 ID
func (s *AuthService) ParseToken(tokenString string) (uint, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}

// GetUser 按 ID 加载用户
func (s *AuthService) GetUser(userID uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
