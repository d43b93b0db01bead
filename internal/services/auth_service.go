package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	intconfig "busgo/internal/config"
	"busgo/internal/domain"
	"busgo/internal/domain/models"
	"busgo/internal/repositories"
	"busgo/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// Claims is the token payload: user id, email and role.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	DB        *sqlx.DB
	Users     repositories.UserRepo
	Secret    []byte
	TTL       time.Duration
	RequestID string
}

type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (s AuthService) users() repositories.UserRepo {
	if s.Users.DB != nil {
		return s.Users
	}
	if s.DB != nil {
		return repositories.UserRepo{DB: s.DB}
	}
	return repositories.UserRepo{DB: intconfig.DB}
}

func (s AuthService) ttl() time.Duration {
	if s.TTL != 0 {
		return s.TTL
	}
	return 7 * 24 * time.Hour
}

// Register creates a customer account and signs it in.
func (s AuthService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	name = utils.NormalizeSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return AuthResult{}, domain.ValidationError{Field: "name", Msg: "required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthResult{}, domain.ValidationError{Field: "email", Msg: "invalid email"}
	}
	if len(password) < minPasswordLen {
		return AuthResult{}, domain.ValidationError{Field: "password", Msg: fmt.Sprintf("at least %d characters", minPasswordLen)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	u := models.User{Name: name, Email: email, PasswordHash: string(hash), Role: domain.RoleCustomer}
	id, err := s.users().Create(ctx, u)
	if err != nil {
		if repositories.IsDuplicate(err) {
			return AuthResult{}, domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
		}
		return AuthResult{}, domain.InternalError{Msg: "failed to create user", Err: err}
	}
	u.ID = id
	u.CreatedAt = utils.NowUTC()
	utils.LogEvent(s.RequestID, "auth", "register", fmt.Sprintf("user_id=%d", id))
	return s.issue(u)
}

func (s AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users().GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return AuthResult{}, domain.ErrUnauthorized
		}
		return AuthResult{}, domain.InternalError{Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		utils.LogEvent(s.RequestID, "auth", "login_failed", fmt.Sprintf("user_id=%d", u.ID))
		return AuthResult{}, domain.ErrUnauthorized
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d", u.ID))
	return s.issue(u)
}

func (s AuthService) Me(ctx context.Context, rc domain.RequestContext) (models.PublicUser, error) {
	u, err := s.users().GetByID(ctx, int64(rc.UserID))
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.ToPublic(), nil
}

func (s AuthService) issue(u models.User) (AuthResult, error) {
	token, err := s.Sign(u)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	return AuthResult{Token: token, User: u.ToPublic()}, nil
}

// Sign issues an HS256 token for u.
func (s AuthService) Sign(u models.User) (string, error) {
	if len(s.Secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := Claims{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Parse validates a token and returns the caller it identifies.
func (s AuthService) Parse(token string) (domain.RequestContext, error) {
	if len(s.Secret) == 0 {
		return domain.RequestContext{}, domain.ErrUnauthorized
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || claims.ID <= 0 {
		return domain.RequestContext{}, domain.ErrUnauthorized
	}
	return domain.RequestContext{UserID: domain.ID(claims.ID), Email: claims.Email, Role: claims.Role}, nil
}
