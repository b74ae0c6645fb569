package repository

import (
	"context"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

//go:generate mockgen -source=user_repository.go -destination=mock/user_repository_mock.go -package=mock

// UserRepository define el puerto de persistencia para usuarios y su perfil (DIP).
// Los Get devuelven (nil, nil) cuando no existe la fila.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateProfile actualiza solo full_name y department (auto-edición del perfil).
	UpdateProfile(ctx context.Context, user *entity.User) error
	ListByRole(ctx context.Context, roles ...string) ([]*entity.User, error)
}
