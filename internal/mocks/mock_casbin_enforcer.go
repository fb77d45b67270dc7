package mocks

import (
	"errors"

	"github.com/you/storeapi/domain"
)

// MockCasbinEnforcer implements the CasbinEnforcer interface for testing
type MockCasbinEnforcer struct {
	AddPolicyFunc    func(params ...interface{}) (bool, error)
	RemovePolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc      func(rvals ...interface{}) (bool, error)
	GetPolicyFunc    func() ([][]string, error)
	policies         [][]string
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer with an empty policy list
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{}
}

// AddPolicy adds a new policy rule
func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}
	policy, err := toPolicy(params)
	if err != nil {
		return false, err
	}
	if m.indexOf(policy) >= 0 {
		return false, nil
	}
	m.policies = append(m.policies, policy)
	return true, nil
}

// RemovePolicy removes a policy rule
func (m *MockCasbinEnforcer) RemovePolicy(params ...interface{}) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(params...)
	}
	policy, err := toPolicy(params)
	if err != nil {
		return false, err
	}
	i := m.indexOf(policy)
	if i < 0 {
		return false, nil
	}
	m.policies = append(m.policies[:i], m.policies[i+1:]...)
	return true, nil
}

// Enforce matches exact policies only
func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	policy, err := toPolicy(rvals)
	if err != nil {
		return false, err
	}
	return m.indexOf(policy) >= 0, nil
}

// GetPolicy returns all policies
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	return m.policies, nil
}

func (m *MockCasbinEnforcer) indexOf(policy []string) int {
	for i, p := range m.policies {
		if len(p) == len(policy) && p[0] == policy[0] && p[1] == policy[1] && p[2] == policy[2] {
			return i
		}
	}
	return -1
}

func toPolicy(params []interface{}) ([]string, error) {
	if len(params) != 3 {
		return nil, errors.New("expected sub, obj, act")
	}
	policy := make([]string, 3)
	for i, param := range params {
		s, ok := param.(string)
		if !ok {
			return nil, errors.New("policy values must be strings")
		}
		policy[i] = s
	}
	return policy, nil
}
