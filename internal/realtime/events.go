package realtime

// Canonical account-state events pushed to a user's live connections when a
// moderation action mutates their record.
const (
	EventUserFlagged          = "userFlagged"
	EventAccountStatusChanged = "accountStatusChanged"
	EventRoleChanged          = "roleChanged"
)

type FlagPayload struct {
	Message string `json:"message"`
	Flag    bool   `json:"flag"`
}

type AccountStatusPayload struct {
	Message       string `json:"message"`
	AccountStatus string `json:"accountStatus"`
}

type RolePayload struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}
