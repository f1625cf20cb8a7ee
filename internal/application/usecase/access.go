package usecase

import (
	"context"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/policy"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
)

// scopeFor verifica el acceso al módulo y construye el scope de tenant del principal.
func scopeFor(p entity.Principal, module entity.Module, opts ...tenancy.Option) (tenancy.Scope, error) {
	if err := policy.Evaluate(p, module).Err(); err != nil {
		return tenancy.Scope{}, err
	}
	return tenancy.Build(p, opts...)
}

// requireSuperAdmin acceso a la administración global (empresas y usuarios).
func requireSuperAdmin(p entity.Principal) error {
	return policy.EvaluateSuperAdmin(p).Err()
}

// ownerCompany empresa dueña de un registro nuevo. Para un super-admin la empresa
// objetivo viene del body: debe existir y estar activa.
func ownerCompany(ctx context.Context, companies repository.CompanyRepository, p entity.Principal, scope tenancy.Scope) (string, error) {
	companyID, err := scope.OwnerCompany()
	if err != nil {
		return "", err
	}
	if !p.IsSuperAdmin() {
		return companyID, nil
	}
	company, err := companies.GetByID(ctx, companyID)
	if err != nil {
		return "", err
	}
	if company == nil || !company.IsActive() {
		return "", domain.Invalid("empresa no encontrada")
	}
	return companyID, nil
}
