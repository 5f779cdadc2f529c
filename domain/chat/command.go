package chat

// Identifiers end up in storage keys, hence the ':' exclusion.

type CreateChatCommand struct {
	From           string `validate:"required,excludes=:"`
	To             string `validate:"required,excludes=:"`
	Content        string
	OrganizationID string `validate:"required,excludes=:"`
}

// MarkSeenCommand flips every unseen message sent by PeerID to ViewerID.
// ViewerID always comes from the authenticated caller.
type MarkSeenCommand struct {
	PeerID         string `validate:"required,excludes=:"`
	OrganizationID string `validate:"required,excludes=:"`
	ViewerID       string `validate:"required"`
}

type GetAllChatsCommand struct {
	OrganizationID string `validate:"required,excludes=:"`
	ViewerID       string `validate:"required"`
}

type GetChatByUserCommand struct {
	OrganizationID string `validate:"required,excludes=:"`
	UserID         string `validate:"required,excludes=:"`
	ViewerID       string `validate:"required"`
}

type GetChatsBetweenUsersCommand struct {
	OrganizationID string `validate:"required,excludes=:"`
	UserA          string `validate:"required,excludes=:"`
	UserB          string `validate:"required,excludes=:"`
	ViewerID       string `validate:"required"`
}

type SearchChatsCommand struct {
	OrganizationID string `validate:"required,excludes=:"`
	Input          string `validate:"required"`
	ViewerID       string `validate:"required"`
}
