// Package policy es el único predicado de autorización de la aplicación. Lo consultan los
// casos de uso (aplicación de reglas), GET /documents/:id/actions (UI) y los guardas de rutas.
package policy

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/workflow"
)

// Recursos protegidos.
const (
	ResourceDocument  = "document"
	ResourceMaster    = "master"    // productos, categorías, bodegas
	ResourceInventory = "inventory" // saldos, movimientos, conciliación
	ResourceDashboard = "dashboard"
)

// Acciones sobre recursos distintos de document.
const (
	ActView      = "view"
	ActCreate    = "create"
	ActUpdate    = "update"
	ActDelete    = "delete"
	ActReconcile = "reconcile"
)

// Relación del actor con el documento.
const (
	RelOwner    = "owner"
	RelApprover = "approver"
	RelNone     = "none"
)

const wildcard = "*"

// r.status y r.rel se comparan contra p.status/p.rel salvo que la regla use "*".
const modelText = `[request_definition]
r = sub, obj, act, status, rel

[policy_definition]
p = sub, obj, act, status, rel

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act && (p.status == "*" || r.status == p.status) && (p.rel == "*" || r.rel == p.rel)
`

var allRoles = []string{entity.RoleRequester, entity.RoleApprover, entity.RoleFinance, entity.RoleAdmin}

func rules() [][]string {
	var out [][]string
	add := func(roles []string, obj, act, status, rel string) {
		for _, r := range roles {
			out = append(out, []string{r, obj, act, status, rel})
		}
	}
	doc := func(a workflow.Action) string { return string(a) }

	draft := entity.DocumentStatusDraft
	pending := entity.DocumentStatusPending
	reviewers := []string{entity.RoleApprover, entity.RoleAdmin}
	readers := []string{entity.RoleApprover, entity.RoleFinance, entity.RoleAdmin}
	writers := []string{entity.RoleFinance, entity.RoleAdmin}
	admin := []string{entity.RoleAdmin}

	add(allRoles, ResourceDocument, doc(workflow.ActionCreate), wildcard, wildcard)
	add(allRoles, ResourceDocument, doc(workflow.ActionView), wildcard, RelOwner)
	add(allRoles, ResourceDocument, doc(workflow.ActionView), wildcard, RelApprover)
	add(readers, ResourceDocument, doc(workflow.ActionView), wildcard, wildcard)
	add(allRoles, ResourceDocument, doc(workflow.ActionUpdate), draft, RelOwner)
	add(allRoles, ResourceDocument, doc(workflow.ActionDelete), draft, RelOwner)
	add(admin, ResourceDocument, doc(workflow.ActionDelete), wildcard, wildcard)
	add(allRoles, ResourceDocument, doc(workflow.ActionSubmit), draft, RelOwner)
	add(reviewers, ResourceDocument, doc(workflow.ActionApprove), pending, wildcard)
	add(reviewers, ResourceDocument, doc(workflow.ActionReject), pending, wildcard)
	add(allRoles, ResourceDocument, doc(workflow.ActionUploadFile), draft, RelOwner)
	add(allRoles, ResourceDocument, doc(workflow.ActionUploadFile), pending, RelOwner)
	add(admin, ResourceDocument, doc(workflow.ActionUploadFile), wildcard, wildcard)
	add(allRoles, ResourceDocument, doc(workflow.ActionDeleteFile), draft, RelOwner)
	add(admin, ResourceDocument, doc(workflow.ActionDeleteFile), wildcard, wildcard)

	add(allRoles, ResourceMaster, ActView, wildcard, wildcard)
	for _, act := range []string{ActCreate, ActUpdate, ActDelete} {
		add(writers, ResourceMaster, act, wildcard, wildcard)
	}
	add(allRoles, ResourceInventory, ActView, wildcard, wildcard)
	add(writers, ResourceInventory, ActCreate, wildcard, wildcard)
	add(admin, ResourceInventory, ActReconcile, wildcard, wildcard)
	add(allRoles, ResourceDashboard, ActView, wildcard, wildcard)
	return out
}

// Policy evalúa permisos con un enforcer casbin cargado con las reglas de la aplicación.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// New construye el enforcer desde el modelo embebido y carga las reglas.
func New() (*Policy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("policy: modelo: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("policy: enforcer: %w", err)
	}
	if _, err := e.AddPolicies(rules()); err != nil {
		return nil, fmt.Errorf("policy: cargar reglas: %w", err)
	}
	return &Policy{enforcer: e}, nil
}

// MustNew igual que New; entra en pánico si el modelo no compila.
func MustNew() *Policy {
	p, err := New()
	if err != nil {
		panic(err)
	}
	return p
}

// Allowed es el predicado base. Un error del enforcer se trata como denegación.
func (p *Policy) Allowed(actor entity.Actor, resource, action, status, rel string) bool {
	ok, err := p.enforcer.Enforce(actor.Role, resource, action, status, rel)
	return err == nil && ok
}

// Can evalúa acciones sobre recursos sin estado ni dueño (maestros, inventario, dashboard).
func (p *Policy) Can(actor entity.Actor, resource, action string) bool {
	return p.Allowed(actor, resource, action, "", RelNone)
}

// CanCreateDocument indica si el actor puede crear documentos.
func (p *Policy) CanCreateDocument(actor entity.Actor) bool {
	return p.Allowed(actor, ResourceDocument, string(workflow.ActionCreate), "", RelNone)
}

// CanOnDocument evalúa action sobre doc según el estado actual y la relación del actor.
func (p *Policy) CanOnDocument(actor entity.Actor, doc *entity.Document, action workflow.Action) bool {
	return p.Allowed(actor, ResourceDocument, string(action), doc.Status, Relation(actor, doc))
}

// AllowedActions lista las acciones que el actor puede ejecutar hoy sobre doc.
func (p *Policy) AllowedActions(actor entity.Actor, doc *entity.Document) []workflow.Action {
	out := make([]workflow.Action, 0, len(workflow.DocumentActions))
	for _, a := range workflow.DocumentActions {
		if p.CanOnDocument(actor, doc, a) {
			out = append(out, a)
		}
	}
	return out
}

// Relation relación del actor con el documento; owner tiene precedencia sobre approver.
func Relation(actor entity.Actor, doc *entity.Document) string {
	switch {
	case doc.CreatedBy == actor.UserID:
		return RelOwner
	case doc.ApproverID != "" && doc.ApproverID == actor.UserID:
		return RelApprover
	}
	return RelNone
}
