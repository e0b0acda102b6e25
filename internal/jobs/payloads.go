package jobs

// SendClientInvitePayload carries what the worker needs to deliver one
// client invitation. Keep it minimal and ID-based; the worker loads the rest
// from the store.
type SendClientInvitePayload struct {
	ClientID    int64  `json:"clientId"`
	Email       string `json:"email"`
	ClientName  string `json:"clientName"`
	InvitedByID int64  `json:"invitedById"`
	RequestID   string `json:"requestId,omitempty"` // correlation only
}
