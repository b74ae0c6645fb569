package usecase_test

import (
	"context"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/application/usecase"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository/mock"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type memProducts map[string]entity.Product

func (m memProducts) Create(_ context.Context, p *entity.Product) error { m[p.ID] = *p; return nil }
func (m memProducts) Update(_ context.Context, p *entity.Product) error { m[p.ID] = *p; return nil }
func (m memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
func (m memProducts) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range m {
		if p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}
func (m memProducts) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	p := m[id]
	p.CostPrice = cost
	m[id] = p
	return nil
}
func (m memProducts) List(context.Context) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(m))
	for _, p := range m {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memCategories map[string]entity.Category

func (m memCategories) Create(_ context.Context, c *entity.Category) error { m[c.ID] = *c; return nil }
func (m memCategories) Update(_ context.Context, c *entity.Category) error { m[c.ID] = *c; return nil }
func (m memCategories) GetByID(_ context.Context, id string) (*entity.Category, error) {
	c, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}
func (m memCategories) List(context.Context) ([]*entity.Category, error) {
	out := make([]*entity.Category, 0, len(m))
	for _, c := range m {
		c := c
		out = append(out, &c)
	}
	return out, nil
}

type memWarehouses map[string]entity.Warehouse

func (m memWarehouses) Create(_ context.Context, w *entity.Warehouse) error { m[w.ID] = *w; return nil }
func (m memWarehouses) Update(_ context.Context, w *entity.Warehouse) error { m[w.ID] = *w; return nil }
func (m memWarehouses) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}
func (m memWarehouses) GetByCode(_ context.Context, code string) (*entity.Warehouse, error) {
	for _, w := range m {
		if w.Code == code {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}
func (m memWarehouses) List(context.Context) ([]*entity.Warehouse, error) {
	out := make([]*entity.Warehouse, 0, len(m))
	for _, w := range m {
		w := w
		out = append(out, &w)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestProductUseCase(t *testing.T) {
	ctx := context.Background()
	products, categories := memProducts{}, memCategories{}
	cats := usecase.NewCategoryUseCase(categories)
	uc := usecase.NewProductUseCase(products, categories)

	cat, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: " Repuestos "})
	require.NoError(t, err)
	assert.Equal(t, "Repuestos", cat.Name)

	p, err := uc.Create(ctx, dto.CreateProductRequest{
		SKU:           "RD-6204",
		Name:          "Rodamiento 6204",
		CategoryID:    cat.ID,
		UnitOfMeasure: "UND",
		CostPrice:     decimal.NewFromInt(12),
		ReorderPoint:  decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	assert.True(t, p.IsActive)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "RD-6204", Name: "Otro", UnitOfMeasure: "UND"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "X-1", Name: "X", UnitOfMeasure: "UND", CategoryID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "X-2", Name: "X", UnitOfMeasure: "UND", CostPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "X-3", Name: "X", UnitOfMeasure: "UND", ReorderPoint: decimal.RequireFromString("0.00001")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "FL-01", Name: "Filtro de aceite", UnitOfMeasure: "UND"})
	require.NoError(t, err)

	list, err := uc.List(ctx, dto.ProductFilterQuery{Search: "RODAMIENTO"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "RD-6204", list.Items[0].SKU)

	require.NoError(t, uc.Deactivate(ctx, p.ID))
	active, err := uc.List(ctx, dto.ProductFilterQuery{Active: true})
	require.NoError(t, err)
	require.Equal(t, 1, active.Total)
	assert.Equal(t, "FL-01", active.Items[0].SKU)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Deactivate(ctx, "no-existe"), domain.ErrNotFound)
}

func TestWarehouseUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewWarehouseUseCase(memWarehouses{})

	w, err := uc.Create(ctx, dto.CreateWarehouseRequest{Code: "bog", Name: "Bogotá"})
	require.NoError(t, err)
	assert.Equal(t, "BOG", w.Code)

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Code: "BOG", Name: "Duplicada"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	name := "Bogotá Centro"
	up, err := uc.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, up.Name)

	require.NoError(t, uc.Deactivate(ctx, w.ID))
	got, err := uc.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

// ──────────────────────────────────────────────────────────────────────────────
// Perfil
// ──────────────────────────────────────────────────────────────────────────────

func TestUserUseCase_Profile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockUserRepository(ctrl)
	uc := usecase.NewUserUseCase(repo)
	ctx := context.Background()
	actor := entity.Actor{UserID: "u1", Role: entity.RoleRequester}
	user := &entity.User{ID: "u1", FullName: "Ana", Department: entity.DepartmentProcurement, Role: entity.RoleRequester}

	t.Run("actualiza nombre y departamento", func(t *testing.T) {
		repo.EXPECT().GetByID(ctx, "u1").Return(user, nil)
		repo.EXPECT().UpdateProfile(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *entity.User) error {
			assert.Equal(t, "Ana María", u.FullName)
			assert.Equal(t, entity.DepartmentLogistics, u.Department)
			assert.Equal(t, entity.RoleRequester, u.Role)
			return nil
		})

		name, dep := "Ana María", entity.DepartmentLogistics
		out, err := uc.UpdateProfile(ctx, actor, dto.UpdateProfileRequest{FullName: &name, Department: &dep})
		require.NoError(t, err)
		assert.Equal(t, "Ana María", out.FullName)
	})

	t.Run("departamento inválido", func(t *testing.T) {
		repo.EXPECT().GetByID(ctx, "u1").Return(&entity.User{ID: "u1"}, nil)

		dep := "Marketing"
		_, err := uc.UpdateProfile(ctx, actor, dto.UpdateProfileRequest{Department: &dep})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("aprobadores activos ordenados", func(t *testing.T) {
		repo.EXPECT().ListByRole(ctx, entity.RoleApprover, entity.RoleAdmin).Return([]*entity.User{
			{ID: "a2", FullName: "Zoe", Role: entity.RoleApprover, Status: entity.UserStatusActive},
			{ID: "a1", FullName: "Bruno", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
			{ID: "a3", FullName: "Carla", Role: entity.RoleApprover, Status: entity.UserStatusInactive},
		}, nil)

		out, err := uc.ListApprovers(ctx)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "Bruno", out[0].FullName)
		assert.Equal(t, "Zoe", out[1].FullName)
	})
}
