package services

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/you/storeapi/domain"
)

// Subject returns the casbin subject for a role
func Subject(role domain.Role) string {
	return "role_" + string(role)
}

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin.
// Policies added through the enforcer are persisted by its adapter.
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role domain.Role, resource, action string) (bool, error) {
	if err := validatePolicy(role, resource, action); err != nil {
		return false, err
	}
	return p.enforcer.AddPolicy(Subject(role), resource, action)
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role domain.Role, resource, action string) (bool, error) {
	if err := validatePolicy(role, resource, action); err != nil {
		return false, err
	}
	return p.enforcer.RemovePolicy(Subject(role), resource, action)
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role domain.Role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(Subject(role), resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() ([][]string, error) {
	return p.enforcer.GetPolicy()
}

func validatePolicy(role domain.Role, resource, action string) error {
	if !role.Valid() {
		return domain.ErrInvalidInput.Wrap(fmt.Errorf("unknown role %q", role))
	}
	if resource == "" || action == "" {
		return domain.ErrInvalidInput.Wrap(fmt.Errorf("resource and action are required"))
	}
	return nil
}
