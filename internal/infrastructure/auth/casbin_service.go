package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// RBACModel matches role subjects against route patterns and method regexes
const RBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService creates an enforcer whose policies live in the casbin_rule table
func NewCasbinService(db *gorm.DB) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}
	m, err := model.NewModelFromString(RBACModel)
	if err != nil {
		return nil, err
	}
	E, err := casbin.NewEnforcer(m, adp)
	if err != nil {
		return nil, err
	}
	if err := E.LoadPolicy(); err != nil {
		return nil, err
	}
	return &CasbinService{E}, nil
}

// NewMemoryCasbinService creates an enforcer without persistence
func NewMemoryCasbinService() (*CasbinService, error) {
	m, err := model.NewModelFromString(RBACModel)
	if err != nil {
		return nil, err
	}
	E, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	return &CasbinService{E}, nil
}

// SeedDefaults adds the default policies when none exist yet
func (s *CasbinService) SeedDefaults(defaults [][]string) (bool, error) {
	policies, err := s.E.GetPolicy()
	if err != nil {
		return false, err
	}
	if len(policies) > 0 {
		return false, nil
	}
	for _, p := range defaults {
		if _, err := s.E.AddPolicy(p[0], p[1], p[2]); err != nil {
			return false, err
		}
	}
	return true, nil
}
