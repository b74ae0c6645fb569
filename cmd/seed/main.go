// seed crea el usuario administrador inicial y los maestros mínimos (bodega principal
// y categorías base). Es idempotente: lo que ya existe se omite.
//
// Aplica antes las migraciones pendientes.
//
// Uso: SEED_ADMIN_EMAIL=admin@empresa.com SEED_ADMIN_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Importaciones-api/pkg/config"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

var baseCategories = []entity.Category{
	{Name: "Materia prima", Description: "Insumos importados para producción"},
	{Name: "Repuestos", Description: "Partes y repuestos de maquinaria"},
	{Name: "Producto terminado", Description: "Mercancía lista para la venta"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	email := strings.ToLower(strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL")))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || len(password) < 8 {
		log.Fatal().Msg("SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD (mínimo 8 caracteres) son requeridos")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
	log.Info().Strs("applied", applied).Msg("migraciones al día")

	now := time.Now().UTC()

	users := postgres.NewUserRepository(pool)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Msg("buscar administrador")
	}
	if existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash de contraseña")
		}
		admin := &entity.User{
			ID:           uuid.New().String(),
			Email:        email,
			PasswordHash: string(hash),
			FullName:     "Administrador",
			Department:   entity.DepartmentIT,
			Role:         entity.RoleAdmin,
			Status:       entity.UserStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("crear administrador")
		}
		log.Info().Str("email", email).Msg("administrador creado")
	} else {
		log.Info().Str("email", email).Msg("administrador ya existe, se omite")
	}

	warehouses := postgres.NewWarehouseRepository(pool)
	principal, err := warehouses.GetByCode(ctx, "PRINCIPAL")
	if err != nil {
		log.Fatal().Err(err).Msg("buscar bodega principal")
	}
	if principal == nil {
		err = warehouses.Create(ctx, &entity.Warehouse{
			ID:        uuid.New().String(),
			Code:      "PRINCIPAL",
			Name:      "Bodega principal",
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("crear bodega principal")
		}
		log.Info().Msg("bodega principal creada")
	}

	categories := postgres.NewCategoryRepository(pool)
	for _, c := range baseCategories {
		c.ID = uuid.New().String()
		c.CreatedAt = now
		err := categories.Create(ctx, &c)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			log.Debug().Str("category", c.Name).Msg("categoría ya existe")
		case err != nil:
			log.Fatal().Err(err).Str("category", c.Name).Msg("crear categoría")
		default:
			log.Info().Str("category", c.Name).Msg("categoría creada")
		}
	}

	log.Info().Msg("seed completado")
}
