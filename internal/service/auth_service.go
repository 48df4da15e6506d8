package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/restaurant-pos/internal/auth"
	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

// LoginResult 登录成功返回的令牌
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      *model.SystemUser `json:"user"`
}

// AuthService 后台账号与登录
type AuthService struct {
	store  *repository.Store
	tokens *auth.TokenManager
	cost   int
}

func NewAuthService(store *repository.Store, tokens *auth.TokenManager) *AuthService {
	return &AuthService{store: store, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Login 校验密码并签发 JWT；用户名不存在与密码错误返回同一个错误
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.store.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.Warn("login failed", zap.String("username", u.Username))
		return nil, ErrInvalidCredentials
	}
	if !u.Status.IsActive() {
		return nil, ErrUserInactive
	}
	token, exp, err := s.tokens.Issue(auth.Principal{UserID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// CreateUser 新建后台账号
func (s *AuthService) CreateUser(ctx context.Context, username, password, displayName string, role model.Role) (*model.SystemUser, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	u := &model.SystemUser{
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         role,
		Status:       model.LifecycleActive,
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrNameTaken
		}
		return nil, storeErr(err)
	}
	return u, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*model.SystemUser, error) {
	res, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return res, nil
}

// Me 当前登录用户
func (s *AuthService) Me(ctx context.Context) (*model.SystemUser, error) {
	p, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	u, err := s.store.Users.GetByID(ctx, p.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr(err)
	}
	return u, nil
}
