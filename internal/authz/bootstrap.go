package authz

import (
	"fmt"

	"github.com/wholesale-phone/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "catalog_viewer",
			Policies: []Policy{
				{Object: constants.ProcAdminProductList, Action: constants.AuthzActionCall},
			},
		},
		{
			Role:     constants.AuthzRoleCatalogManager,
			Inherits: []string{"catalog_viewer"},
			Policies: []Policy{
				{Object: "product.*", Action: constants.AuthzActionCall},
				{Object: "category.*", Action: constants.AuthzActionCall},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色并同步其直接策略，可重复执行
// 预置角色上多出的策略会被撤销
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		wanted := make(map[Policy]struct{}, len(seed.Policies))
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			wanted[Policy{Subject: role, Object: NormalizeObject(policy.Object), Action: NormalizeAction(policy.Action)}] = struct{}{}
		}

		current, err := s.GetRolePolicies(role)
		if err != nil {
			return err
		}
		for _, policy := range current {
			if _, ok := wanted[policy]; ok {
				continue
			}
			if err := s.RevokeRolePolicy(role, policy.Object, policy.Action); err != nil {
				return err
			}
		}
	}
	return nil
}
