package provision

import "context"

// Provisioner associates or disassociates the current user with a
// push-notification delivery identity. Both methods must be safe to call
// when no session exists. Returned errors are logged and counted by the
// dispatcher, never propagated.
type Provisioner interface {
	ProvisionIfSubscribed(ctx context.Context, token string) error
	RemoveExternalUserID(ctx context.Context) error
}

// NoOp is a Provisioner that does nothing. It is the default when no
// provisioner is supplied to the Builder.
type NoOp struct{}

func (NoOp) ProvisionIfSubscribed(context.Context, string) error { return nil }

func (NoOp) RemoveExternalUserID(context.Context) error { return nil }
