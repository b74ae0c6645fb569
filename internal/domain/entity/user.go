package entity

import "time"

// Roles válidos para User.
const (
	RoleRequester = "Requester"
	RoleApprover  = "Approver"
	RoleFinance   = "Finance"
	RoleAdmin     = "Admin"
)

// Departamentos válidos para el perfil.
const (
	DepartmentProcurement = "Procurement"
	DepartmentFinance     = "Finance"
	DepartmentLogistics   = "Logistics"
	DepartmentWarehouse   = "Warehouse"
	DepartmentManagement  = "Management"
	DepartmentIT          = "IT"
)

// Estados de la cuenta.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa la identidad autenticada junto con su perfil (1:1).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FullName     string
	Department   string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleRequester, RoleApprover, RoleFinance, RoleAdmin:
		return true
	}
	return false
}

// ValidDepartment indica si dep es uno de los departamentos conocidos.
func ValidDepartment(dep string) bool {
	switch dep {
	case DepartmentProcurement, DepartmentFinance, DepartmentLogistics,
		DepartmentWarehouse, DepartmentManagement, DepartmentIT:
		return true
	}
	return false
}
