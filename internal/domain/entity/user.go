package entity

// Roles válidos del portal.
const (
	RoleAdmin    = "admin"
	RoleBuyer    = "comprador"
	RoleApprover = "aprobador"
	RoleDock     = "doca"
	RoleFiscal   = "fiscal"
	RoleAuditor  = "auditor"
)

// User usuario autenticado contra el ERP.
type User struct {
	ID       string
	Username string
	Name     string
	Branch   string // filial por defecto
	Branches []string
	Role     string
}

// Branch filial del ERP.
type Branch struct {
	Code string
	Name string
}
