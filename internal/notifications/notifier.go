package notifications

import "context"

type ClientInviteInput struct {
	ClientID   int64
	Email      string
	ClientName string
	InviteURL  string
}

type Notifier interface {
	SendClientInvite(ctx context.Context, input ClientInviteInput) error
}
