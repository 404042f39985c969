package access

type Resource string

const (
	ResourceLead Resource = "lead"
	ResourceSale Resource = "sale"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var permissions = map[Role]map[Resource][]Action{
	RoleAdmin: {
		ResourceLead: {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
		ResourceSale: {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
	},
	RoleSupervisor: {
		ResourceLead: {ActionRead, ActionUpdate},
		ResourceSale: {ActionRead, ActionUpdate},
	},
	RoleAdvisor: {
		ResourceLead: {ActionCreate, ActionRead, ActionUpdate},
		ResourceSale: {ActionCreate, ActionRead},
	},
	RoleBackoffice: {
		ResourceLead: {ActionRead, ActionUpdate},
		ResourceSale: {ActionRead, ActionUpdate},
	},
}

// Can evaluates the role's statement list.
func Can(role Role, resource Resource, action Action) bool {
	for _, a := range permissions[role][resource] {
		if a == action {
			return true
		}
	}
	return false
}
