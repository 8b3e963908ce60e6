package gate

// Action describes the kind of operation a caller wants to perform.
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// Cadastre-specific actions.
	ActionAssignRole Action = "assign_role"
	ActionExport     Action = "export"
)
