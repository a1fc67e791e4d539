package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"nextgen-training/internal/core/auth"
	"nextgen-training/internal/core/logger"
	"nextgen-training/internal/domain"
	resp "nextgen-training/internal/transport/http/response"
	"nextgen-training/pkg/utils"
)

type stubUserRepo struct {
	mu     sync.Mutex
	users  []domain.User
	nextID uint

	findErr   error
	createErr error
	listErr   error
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, e := range r.users {
		if strings.EqualFold(e.Email, u.Email) {
			return domain.ErrEmailTaken
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users = append(r.users, *u)
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			clone := u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]domain.User(nil), r.users...), nil
}

type failingIssuer struct{}

func (failingIssuer) Issue(auth.Payload) (string, error) { return "", errors.New("signer down") }

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("hash failed") }
func (failingHasher) Check(string, string) bool    { return false }

var testJWT = &auth.JWTer{Secret: []byte("secret"), Issuer: "test", TTL: time.Hour}

func newTestService() (*UserService, *stubUserRepo) {
	repo := &stubUserRepo{}
	return NewUserService(repo, utils.NewBcryptHasher(bcrypt.MinCost), testJWT, nil), repo
}

func jane() RegisterInput {
	return RegisterInput{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Password: "secret123"}
}

func TestRegister_Success(t *testing.T) {
	svc, repo := newTestService()

	env := svc.Register(context.Background(), jane())
	assert.Equal(t, resp.StatusSuccess, env.Status)
	assert.Equal(t, 201, env.Code)
	assert.Equal(t, MsgUserCreated, env.Message)

	require.Len(t, repo.users, 1)
	stored := repo.users[0]
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
	assert.Equal(t, domain.RoleUser, stored.Role)
}

func TestRegister_MissingFields(t *testing.T) {
	full := jane()
	// 四个必填字段的所有缺失组合
	for mask := 1; mask < 16; mask++ {
		in := full
		if mask&1 != 0 {
			in.FirstName = ""
		}
		if mask&2 != 0 {
			in.LastName = ""
		}
		if mask&4 != 0 {
			in.Email = ""
		}
		if mask&8 != 0 {
			in.Password = ""
		}
		svc, repo := newTestService()
		env := svc.Register(context.Background(), in)
		assert.Equal(t, resp.StatusFailure, env.Status, "mask %04b", mask)
		assert.Equal(t, 400, env.Code, "mask %04b", mask)
		assert.Equal(t, MsgAllFieldsRequired, env.Message, "mask %04b", mask)
		assert.Empty(t, repo.users)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, repo := newTestService()
	require.True(t, svc.Register(context.Background(), jane()).OK())

	again := jane()
	again.FirstName = "Other"
	env := svc.Register(context.Background(), again)
	assert.Equal(t, resp.StatusFailure, env.Status)
	assert.Equal(t, 400, env.Code)
	assert.Equal(t, MsgEmailExists, env.Message)
	assert.Len(t, repo.users, 1)
}

func TestRegister_DuplicateRaceCaughtByStore(t *testing.T) {
	svc, repo := newTestService()
	repo.createErr = domain.ErrEmailTaken

	env := svc.Register(context.Background(), jane())
	assert.Equal(t, 400, env.Code)
	assert.Equal(t, MsgEmailExists, env.Message)
}

func TestRegister_Role(t *testing.T) {
	svc, repo := newTestService()
	in := jane()
	in.Role = "admin"
	require.True(t, svc.Register(context.Background(), in).OK())
	assert.Equal(t, domain.RoleAdmin, repo.users[0].Role)

	in = jane()
	in.Email = "bad@x.com"
	in.Role = "root"
	env := svc.Register(context.Background(), in)
	assert.Equal(t, 400, env.Code)
	assert.Equal(t, MsgInvalidRole, env.Message)
}

func TestRegister_StoreFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.createErr = errors.New("disk full")

	env := svc.Register(context.Background(), jane())
	assert.Equal(t, resp.StatusFailure, env.Status)
	assert.Equal(t, 500, env.Code)
	assert.Equal(t, MsgInternal, env.Message)
}

func TestRegister_FailureLoggedWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	repo := &stubUserRepo{createErr: errors.New("disk full")}
	svc := NewUserService(repo, utils.NewBcryptHasher(bcrypt.MinCost), testJWT, zap.New(core))

	ctx := logger.WithRequestID(context.Background(), "rid-42")
	require.Equal(t, 500, svc.Register(ctx, jane()).Code)

	entries := logs.FilterMessage("register: create failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "rid-42", entries[0].ContextMap()["rid"])
}

func TestRegister_LookupFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.findErr = errors.New("db down")

	env := svc.Register(context.Background(), jane())
	assert.Equal(t, 500, env.Code)
	assert.Empty(t, repo.users)
}

func TestRegister_HashFailure(t *testing.T) {
	repo := &stubUserRepo{}
	svc := NewUserService(repo, failingHasher{}, testJWT, nil)

	env := svc.Register(context.Background(), jane())
	assert.Equal(t, 500, env.Code)
	assert.Empty(t, repo.users)
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestService()
	require.True(t, svc.Register(context.Background(), jane()).OK())

	env := svc.Login(context.Background(), LoginInput{Email: "jane@x.com", Password: "secret123"})
	require.Equal(t, resp.StatusSuccess, env.Status)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, MsgLoginSuccessful, env.Message)

	tok, ok := env.Data.(string)
	require.True(t, ok)
	require.NotEmpty(t, tok)

	claims, err := testJWT.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "Jane", claims.FirstName)
	assert.Equal(t, "Doe", claims.LastName)
	assert.Equal(t, "jane@x.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := newTestService()
	require.True(t, svc.Register(context.Background(), jane()).OK())

	cases := []struct {
		name string
		in   LoginInput
		msg  string
	}{
		{"missing email", LoginInput{Password: "secret123"}, MsgLoginFieldsMissing},
		{"missing password", LoginInput{Email: "jane@x.com"}, MsgLoginFieldsMissing},
		{"unknown email", LoginInput{Email: "ghost@x.com", Password: "secret123"}, MsgUserNotFound},
		{"wrong password", LoginInput{Email: "jane@x.com", Password: "nope"}, MsgInvalidPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := svc.Login(context.Background(), tc.in)
			assert.Equal(t, resp.StatusFailure, env.Status)
			assert.Equal(t, 400, env.Code)
			assert.Equal(t, tc.msg, env.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestLogin_UnexpectedErrorSurfacesMessage(t *testing.T) {
	svc, repo := newTestService()
	repo.findErr = errors.New("connection refused")

	env := svc.Login(context.Background(), LoginInput{Email: "jane@x.com", Password: "x"})
	assert.Equal(t, resp.StatusFailure, env.Status)
	assert.Equal(t, 500, env.Code)
	assert.Equal(t, "connection refused", env.Message)
}

func TestLogin_IssuerFailure(t *testing.T) {
	repo := &stubUserRepo{}
	hasher := utils.NewBcryptHasher(bcrypt.MinCost)
	require.True(t, NewUserService(repo, hasher, testJWT, nil).Register(context.Background(), jane()).OK())

	svc := NewUserService(repo, hasher, failingIssuer{}, nil)
	env := svc.Login(context.Background(), LoginInput{Email: "jane@x.com", Password: "secret123"})
	assert.Equal(t, 500, env.Code)
	assert.Contains(t, env.Message, "signer down")
}

func TestFindAll_Empty(t *testing.T) {
	svc, _ := newTestService()

	env := svc.FindAll(context.Background())
	assert.Equal(t, resp.StatusFailure, env.Status)
	assert.Equal(t, MsgFetchUsersFailed, env.Message)
	assert.NotEqual(t, "No users found", env.Message)
}

func TestFindAll_StoreError(t *testing.T) {
	svc, repo := newTestService()
	repo.listErr = errors.New("timeout")

	env := svc.FindAll(context.Background())
	assert.Equal(t, resp.StatusFailure, env.Status)
	assert.Equal(t, MsgFetchUsersFailed, env.Message)
}

func TestFindAll_ReturnsAll(t *testing.T) {
	svc, _ := newTestService()
	const n = 3
	for i := 0; i < n; i++ {
		in := jane()
		in.Email = string(rune('a'+i)) + "@x.com"
		require.True(t, svc.Register(context.Background(), in).OK())
	}

	env := svc.FindAll(context.Background())
	require.Equal(t, resp.StatusSuccess, env.Status)
	assert.Equal(t, 200, env.Code)

	list, ok := env.Data.([]UserResponse)
	require.True(t, ok)
	require.Len(t, list, n)
	assert.Equal(t, "a@x.com", list[0].Email)
	assert.Equal(t, "user", list[0].Role)
}

func TestPlaceholders(t *testing.T) {
	svc, repo := newTestService()
	for _, id := range []int{0, 1, 42, -3} {
		assert.Equal(t, "This action returns a #"+strconv.Itoa(id)+" user", svc.FindOne(id))
		assert.Equal(t, "This action updates a #"+strconv.Itoa(id)+" user", svc.Update(id, UpdateInput{FirstName: "x"}))
		assert.Equal(t, "This action removes a #"+strconv.Itoa(id)+" user", svc.Remove(id))
	}
	assert.Empty(t, repo.users)
}

