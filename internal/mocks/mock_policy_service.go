package mocks

import "github.com/you/storeapi/domain"

// MockPolicyService implements domain.PolicyService interface for testing
type MockPolicyService struct {
	AddPolicyFunc       func(role domain.Role, resource, action string) (bool, error)
	RemovePolicyFunc    func(role domain.Role, resource, action string) (bool, error)
	CheckPermissionFunc func(role domain.Role, resource, action string) (bool, error)
	GetPoliciesFunc     func() ([][]string, error)
}

// NewMockPolicyService creates a new MockPolicyService with default behaviors
func NewMockPolicyService() *MockPolicyService {
	return &MockPolicyService{}
}

// AddPolicy adds a policy
func (m *MockPolicyService) AddPolicy(role domain.Role, resource, action string) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(role, resource, action)
	}
	return true, nil
}

// RemovePolicy removes a policy
func (m *MockPolicyService) RemovePolicy(role domain.Role, resource, action string) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(role, resource, action)
	}
	return true, nil
}

// CheckPermission allows admins by default
func (m *MockPolicyService) CheckPermission(role domain.Role, resource, action string) (bool, error) {
	if m.CheckPermissionFunc != nil {
		return m.CheckPermissionFunc(role, resource, action)
	}
	return role == domain.RoleAdmin, nil
}

// GetPolicies returns the default admin policy
func (m *MockPolicyService) GetPolicies() ([][]string, error) {
	if m.GetPoliciesFunc != nil {
		return m.GetPoliciesFunc()
	}
	return [][]string{{"role_ADMIN", "/api/v1/admin/*", ".*"}}, nil
}

// Compile-time interface compliance verification
var _ domain.PolicyService = (*MockPolicyService)(nil)
