package entity

// Actor es la identidad que ejecuta una operación. Se construye a partir del token
// en la capa HTTP y se pasa explícitamente a cada caso de uso.
type Actor struct {
	UserID string
	Role   string
}

// HasRole indica si el actor tiene alguno de los roles dados.
func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// SeesAllDocuments indica si el rol puede leer documentos ajenos.
func (a Actor) SeesAllDocuments() bool {
	return a.HasRole(RoleApprover, RoleFinance, RoleAdmin)
}
