package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	tests := []struct {
		name  string
		owner string
		actor *Session
		want  bool
	}{
		{"no session", "u1", nil, false},
		{"empty user id", "u1", &Session{Role: RoleAdvisor}, false},
		{"owner advisor", "u1", &Session{UserID: "u1", Role: RoleAdvisor}, true},
		{"other advisor", "u1", &Session{UserID: "u2", Role: RoleAdvisor}, false},
		{"admin on foreign row", "u1", &Session{UserID: "a1", Role: RoleAdmin}, true},
		{"supervisor on foreign row", "u1", &Session{UserID: "s1", Role: RoleSupervisor}, false},
		{"missing owner", "", &Session{UserID: "u1", Role: RoleAdvisor}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(tt.owner, tt.actor))
		})
	}
}

func TestHomeFor(t *testing.T) {
	assert.Equal(t, "/admin", HomeFor(RoleAdmin))
	assert.Equal(t, "/dashboard/supervisor", HomeFor(RoleSupervisor))
	assert.Equal(t, "/dashboard/backoffice", HomeFor(RoleBackoffice))
	assert.Equal(t, "/dashboard", HomeFor(RoleAdvisor))
	assert.Equal(t, "/dashboard", HomeFor("unknown"))
}

func TestCan(t *testing.T) {
	assert.True(t, Can(RoleAdvisor, ResourceLead, ActionCreate))
	assert.False(t, Can(RoleAdvisor, ResourceLead, ActionDelete))
	assert.True(t, Can(RoleAdvisor, ResourceSale, ActionCreate))
	assert.False(t, Can(RoleAdvisor, ResourceSale, ActionUpdate))
	assert.True(t, Can(RoleBackoffice, ResourceSale, ActionUpdate))
	assert.False(t, Can(RoleBackoffice, ResourceSale, ActionCreate))
	assert.False(t, Can(RoleSupervisor, ResourceLead, ActionCreate))
	assert.True(t, Can(RoleAdmin, ResourceSale, ActionDelete))
	assert.False(t, Can("guest", ResourceLead, ActionRead))
}

func TestSessionRoles(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.IsAdmin())
	assert.False(t, nilSession.HasRole(RoleAdmin))

	s := &Session{UserID: "b1", Role: RoleBackoffice}
	assert.True(t, s.HasRole(RoleAdmin, RoleBackoffice))
	assert.False(t, s.IsAdmin())
	assert.True(t, ValidRole("asesor"))
	assert.False(t, ValidRole("owner"))
	assert.Equal(t, "Asesor", RoleAdvisor.Label())
}
