package authroles

import (
	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
)

// StaticRoleMapper maps identity-provider groups to application roles by
// exact group-name membership. The first matching role wins, checked from
// most privileged to least; identities in none of the configured groups get
// the viewer role.
type StaticRoleMapper struct {
	AdminGroup   string
	ManagerGroup string
	TraderGroup  string
	AnalystGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	rules := []struct {
		group string
		role  domainauth.Role
	}{
		{m.AdminGroup, domainauth.RoleAdmin},
		{m.ManagerGroup, domainauth.RoleManager},
		{m.TraderGroup, domainauth.RoleTrader},
		{m.AnalystGroup, domainauth.RoleAnalyst},
	}
	for _, rule := range rules {
		if rule.group == "" {
			continue
		}
		for _, g := range groups {
			if g == rule.group {
				return rule.role
			}
		}
	}
	return domainauth.RoleViewer
}
