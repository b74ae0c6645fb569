package dto

import "github.com/jhoicas/Importaciones-api/internal/domain/entity"

// DateLayout formato de fechas sin hora en la API.
const DateLayout = "2006-01-02"

// DocumentFromEntity mapea un documento a su respuesta HTTP.
func DocumentFromEntity(d *entity.Document) DocumentResponse {
	return DocumentResponse{
		ID:              d.ID,
		DocumentType:    d.DocumentType,
		DocumentNumber:  d.DocumentNumber,
		SupplierName:    d.SupplierName,
		DocumentDate:    d.DocumentDate.Format(DateLayout),
		DocumentValue:   d.DocumentValue,
		Currency:        d.Currency,
		Status:          d.Status,
		Priority:        d.Priority,
		ApproverID:      d.ApproverID,
		CreatedBy:       d.CreatedBy,
		Remarks:         d.Remarks,
		RejectionReason: d.RejectionReason,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// DocumentsFromEntities mapea una lista preservando el orden.
func DocumentsFromEntities(docs []*entity.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentFromEntity(d))
	}
	return out
}

// UserFromEntity mapea un usuario sin exponer el hash de la contraseña.
func UserFromEntity(u *entity.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Department: u.Department,
		Role:       u.Role,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
