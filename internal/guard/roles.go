package guard

// Role names. Keep these stable; they are part of the token contract between
// the identity and api processes.
const (
	RoleAdmin     = "admin"
	RolePowerUser = "powerUser"
	RoleUser      = "user"
)
