package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Importaciones-api/internal/application/auth"
	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository/mock"
	"github.com/jhoicas/Importaciones-api/pkg/jwt"
)

const secret = "test-secret"

var jwtCfg = auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "importaciones-api"}

type denylistStub struct {
	revoked map[string]time.Time
}

func (d *denylistStub) Revoke(_ context.Context, id string, until time.Time) error {
	d.revoked[id] = until
	return nil
}

func (d *denylistStub) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := d.revoked[id]
	return ok, nil
}

func TestAuthUseCase_SignUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockUserRepository(ctrl)
	uc := auth.NewAuthUseCase(repo, nil, jwtCfg, nil)
	ctx := context.Background()

	in := dto.SignUpRequest{
		Email:           " Ana@Example.com ",
		Password:        "secreto123",
		PasswordConfirm: "secreto123",
		FullName:        "Ana Pérez",
		Department:      entity.DepartmentProcurement,
	}

	t.Run("registra con rol por defecto", func(t *testing.T) {
		repo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(nil, nil)
		repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *entity.User) error {
			assert.Equal(t, "ana@example.com", u.Email)
			assert.Equal(t, entity.RoleRequester, u.Role)
			assert.Equal(t, entity.UserStatusActive, u.Status)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secreto123")))
			return nil
		})

		out, err := uc.SignUp(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, out.Token)

		id, err := jwt.Parse(secret, out.Token)
		require.NoError(t, err)
		assert.Equal(t, out.User.ID, id.UserID)
		assert.Equal(t, entity.RoleRequester, id.Role)
	})

	t.Run("email duplicado", func(t *testing.T) {
		repo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(&entity.User{ID: "u1"}, nil)

		_, err := uc.SignUp(ctx, in)
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("rol inválido", func(t *testing.T) {
		bad := in
		bad.Role = "Root"
		_, err := uc.SignUp(ctx, bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestAuthUseCase_SignIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockUserRepository(ctrl)
	uc := auth.NewAuthUseCase(repo, nil, jwtCfg, nil)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	user := &entity.User{
		ID:           "u-approver",
		Email:        "jefe@example.com",
		PasswordHash: string(hash),
		Role:         entity.RoleApprover,
		Status:       entity.UserStatusActive,
	}

	t.Run("credenciales correctas", func(t *testing.T) {
		repo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil)

		out, err := uc.SignIn(ctx, dto.SignInRequest{Email: "JEFE@example.com", Password: "secreto123"})
		require.NoError(t, err)
		assert.Equal(t, entity.RoleApprover, out.User.Role)
		assert.True(t, out.ExpiresAt.After(time.Now()))
	})

	t.Run("password incorrecto", func(t *testing.T) {
		repo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil)

		_, err := uc.SignIn(ctx, dto.SignInRequest{Email: user.Email, Password: "otra"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("email desconocido", func(t *testing.T) {
		repo.EXPECT().GetByEmail(ctx, "nadie@example.com").Return(nil, nil)

		_, err := uc.SignIn(ctx, dto.SignInRequest{Email: "nadie@example.com", Password: "x"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("usuario inactivo", func(t *testing.T) {
		inactive := *user
		inactive.Status = entity.UserStatusInactive
		repo.EXPECT().GetByEmail(ctx, user.Email).Return(&inactive, nil)

		_, err := uc.SignIn(ctx, dto.SignInRequest{Email: user.Email, Password: "secreto123"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestAuthUseCase_SignOutYMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockUserRepository(ctrl)
	deny := &denylistStub{revoked: map[string]time.Time{}}
	uc := auth.NewAuthUseCase(repo, deny, jwtCfg, nil)
	ctx := context.Background()

	token, err := jwt.Generate(secret, "u1", entity.RoleFinance, jwtCfg.Issuer, 5)
	require.NoError(t, err)
	id, err := jwt.Parse(secret, token)
	require.NoError(t, err)

	require.NoError(t, uc.SignOut(ctx, id))
	revoked, _ := deny.IsRevoked(ctx, id.TokenID)
	assert.True(t, revoked)
	assert.ErrorIs(t, uc.SignOut(ctx, nil), domain.ErrUnauthorized)

	repo.EXPECT().GetByID(ctx, "u1").Return(&entity.User{ID: "u1", FullName: "Fin", Role: entity.RoleFinance}, nil)
	me, err := uc.Me(ctx, entity.Actor{UserID: "u1", Role: entity.RoleFinance})
	require.NoError(t, err)
	assert.Equal(t, "Fin", me.FullName)

	repo.EXPECT().GetByID(ctx, "u2").Return(nil, nil)
	_, err = uc.Me(ctx, entity.Actor{UserID: "u2"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
