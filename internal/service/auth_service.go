package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

// ErrEmailTaken адрес уже зарегистрирован
var ErrEmailTaken = errors.New("email already registered")

// AuthService регистрация, вход и разбор bearer-токенов
type AuthService struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
}

func NewAuthService(users repository.UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), ttl: ttl}
}

// Claims полезная нагрузка токена: id и роль пользователя
type Claims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hashed),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login возвращает подписанный токен и пользователя
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrUnauthorized
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrUnauthorized
	}
	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *AuthService) issueToken(u *domain.User) (string, error) {
	claims := Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(s.ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken проверяет подпись и срок и возвращает вызывающего
func (s *AuthService) ParseToken(tokenStr string) (domain.Requester, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Requester{}, ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return domain.Requester{}, ErrUnauthorized
	}
	return domain.Requester{ID: claims.UserID, Role: domain.Role(claims.Role)}, nil
}
