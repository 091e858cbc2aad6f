package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
)

func TestStaticRoleMapper(t *testing.T) {
	t.Parallel()

	mapper := StaticRoleMapper{
		AdminGroup:   "bo-admins",
		ManagerGroup: "bo-managers",
		TraderGroup:  "bo-traders",
		AnalystGroup: "bo-analysts",
	}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{"admin group", []string{"everyone", "bo-admins"}, domainauth.RoleAdmin},
		{"manager group", []string{"bo-managers"}, domainauth.RoleManager},
		{"trader group", []string{"bo-traders", "everyone"}, domainauth.RoleTrader},
		{"analyst group", []string{"bo-analysts"}, domainauth.RoleAnalyst},
		{"most privileged wins", []string{"bo-traders", "bo-admins"}, domainauth.RoleAdmin},
		{"no match falls back to viewer", []string{"everyone"}, domainauth.RoleViewer},
		{"empty groups", nil, domainauth.RoleViewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mapper.Map(tt.groups))
		})
	}
}

func TestStaticRoleMapper_UnconfiguredGroupsNeverMatch(t *testing.T) {
	t.Parallel()

	mapper := StaticRoleMapper{AdminGroup: "bo-admins"}
	assert.Equal(t, domainauth.RoleViewer, mapper.Map([]string{""}))
}
