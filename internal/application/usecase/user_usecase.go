package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

// UserUseCase perfil propio y listado de aprobadores.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// GetProfile obtiene el perfil del actor.
func (uc *UserUseCase) GetProfile(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	out := dto.UserFromEntity(user)
	return &out, nil
}

// UpdateProfile edita nombre y departamento. El rol y el email no se editan aquí.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, actor entity.Actor, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		user.FullName = name
	}
	if in.Department != nil {
		if !entity.ValidDepartment(*in.Department) {
			return nil, domain.ErrInvalidInput
		}
		user.Department = *in.Department
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	out := dto.UserFromEntity(user)
	return &out, nil
}

// ListApprovers usuarios activos que pueden ser asignados como aprobador, por nombre.
func (uc *UserUseCase) ListApprovers(ctx context.Context) ([]dto.ApproverResponse, error) {
	users, err := uc.repo.ListByRole(ctx, entity.RoleApprover, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ApproverResponse, 0, len(users))
	for _, u := range users {
		if u.Status != entity.UserStatusActive {
			continue
		}
		out = append(out, dto.ApproverResponse{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}
