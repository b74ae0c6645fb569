// Package listing filtra en memoria colecciones ya cargadas. Las funciones son puras:
// no modifican la entrada y preservan su orden.
package listing

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

// DocumentFilter criterios de la lista de documentos. Un campo vacío no restringe.
type DocumentFilter struct {
	Search       string // subcadena en document_number o supplier_name, sin distinguir mayúsculas
	Status       string
	DocumentType string
	Priority     string
}

// ProductFilter criterios de la lista de productos.
type ProductFilter struct {
	Search     string // subcadena en name o sku
	CategoryID string
	ActiveOnly bool
}

type matcher struct {
	caser  cases.Caser
	needle string
}

func newMatcher(search string) *matcher {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil
	}
	c := cases.Fold()
	return &matcher{caser: c, needle: c.String(search)}
}

func (m *matcher) matches(fields ...string) bool {
	if m == nil {
		return true
	}
	for _, f := range fields {
		if strings.Contains(m.caser.String(f), m.needle) {
			return true
		}
	}
	return false
}

// FilterDocuments devuelve los documentos que cumplen todos los criterios de f.
func FilterDocuments(docs []*entity.Document, f DocumentFilter) []*entity.Document {
	m := newMatcher(f.Search)
	out := make([]*entity.Document, 0, len(docs))
	for _, d := range docs {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.DocumentType != "" && d.DocumentType != f.DocumentType {
			continue
		}
		if f.Priority != "" && d.Priority != f.Priority {
			continue
		}
		if !m.matches(d.DocumentNumber, d.SupplierName) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FilterProducts devuelve los productos que cumplen todos los criterios de f.
func FilterProducts(products []*entity.Product, f ProductFilter) []*entity.Product {
	m := newMatcher(f.Search)
	out := make([]*entity.Product, 0, len(products))
	for _, p := range products {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if !m.matches(p.Name, p.SKU) {
			continue
		}
		out = append(out, p)
	}
	return out
}
