package interfaces

import "context"

// InboxHealthService checks sending-domain deliverability (DNS blacklists,
// domain age) for every configured inbox.
type InboxHealthService interface {
	CheckInboxHealth(ctx context.Context) error
}
