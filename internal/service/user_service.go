package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nextgen-training/internal/core/auth"
	"nextgen-training/internal/core/logger"
	"nextgen-training/internal/domain"
	resp "nextgen-training/internal/transport/http/response"
)

const (
	MsgAllFieldsRequired  = "All fields are required"
	MsgInvalidRole        = "Invalid role"
	MsgEmailExists        = "User with this email already exists"
	MsgUserCreated        = "User created successfully"
	MsgLoginFieldsMissing = "Email and password are required"
	MsgUserNotFound       = "User not found"
	MsgInvalidPassword    = "Invalid password"
	MsgLoginSuccessful    = "Login successful"
	MsgUsersFetched       = "Users fetched successfully"
	MsgFetchUsersFailed   = "Error fetching users"
	MsgInternal           = "Internal server error"
)

var errNoUsers = errors.New("no users found")

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Check(pw, hashed string) bool
}

type TokenIssuer interface {
	Issue(p auth.Payload) (string, error)
}

type UserService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, hasher PasswordHasher, tokens TokenIssuer, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, hasher: hasher, tokens: tokens, log: log}
}

type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// UserResponse 对外的用户结构（不含密码）
type UserResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func toResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: string(u.Role)}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) resp.Envelope {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return resp.Failure(resp.CodeBadRequest, MsgAllFieldsRequired)
	}
	role := domain.RoleUser
	if in.Role != "" {
		role = domain.Role(strings.ToLower(in.Role))
		if !role.Valid() {
			return resp.Failure(resp.CodeBadRequest, MsgInvalidRole)
		}
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		logger.For(ctx, s.log).Error("register: lookup failed", zap.String("email", in.Email), zap.Error(err))
		return resp.Failure(resp.CodeServerError, MsgInternal)
	}
	if existing != nil {
		return resp.Failure(resp.CodeBadRequest, MsgEmailExists)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		logger.For(ctx, s.log).Error("register: hash failed", zap.Error(err))
		return resp.Failure(resp.CodeServerError, MsgInternal)
	}
	u := &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  hashed,
		Role:      role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// check-then-insert 竞争：唯一索引兜底
		if errors.Is(err, domain.ErrEmailTaken) {
			return resp.Failure(resp.CodeBadRequest, MsgEmailExists)
		}
		logger.For(ctx, s.log).Error("register: create failed", zap.String("email", in.Email), zap.Error(err))
		return resp.Failure(resp.CodeServerError, MsgInternal)
	}
	logger.For(ctx, s.log).Info("user registered", zap.Uint("id", u.ID), zap.String("role", string(u.Role)))
	return resp.Success(resp.CodeCreated, MsgUserCreated, nil)
}

func (s *UserService) Login(ctx context.Context, in LoginInput) resp.Envelope {
	if in.Email == "" || in.Password == "" {
		return resp.Failure(resp.CodeBadRequest, MsgLoginFieldsMissing)
	}
	tok, err := s.login(ctx, in)
	if err != nil {
		var fe failure
		if errors.As(err, &fe) {
			return resp.Failure(resp.CodeBadRequest, fe.msg)
		}
		logger.For(ctx, s.log).Warn("login failed", zap.String("email", in.Email), zap.Error(err))
		return resp.Failure(resp.CodeServerError, err.Error())
	}
	return resp.Success(resp.CodeOK, MsgLoginSuccessful, tok)
}

type failure struct{ msg string }

func (f failure) Error() string { return f.msg }

func (s *UserService) login(ctx context.Context, in LoginInput) (string, error) {
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", failure{MsgUserNotFound}
	}
	if !s.hasher.Check(in.Password, u.Password) {
		return "", failure{MsgInvalidPassword}
	}
	tok, err := s.tokens.Issue(auth.Payload{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// FindAll 空列表在内部视为 not found，对外只返回通用失败文案
func (s *UserService) FindAll(ctx context.Context) resp.Envelope {
	out, err := s.findAll(ctx)
	if err != nil {
		logger.For(ctx, s.log).Warn("find users failed", zap.Error(err))
		return resp.Failure(resp.CodeServerError, MsgFetchUsersFailed)
	}
	return resp.Success(resp.CodeOK, MsgUsersFetched, out)
}

func (s *UserService) findAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errNoUsers
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return out, nil
}

// 以下三个尚未实现，只返回占位文本

func (s *UserService) FindOne(id int) string {
	return fmt.Sprintf("This action returns a #%d user", id)
}

func (s *UserService) Update(id int, _ UpdateInput) string {
	return fmt.Sprintf("This action updates a #%d user", id)
}

func (s *UserService) Remove(id int) string {
	return fmt.Sprintf("This action removes a #%d user", id)
}
