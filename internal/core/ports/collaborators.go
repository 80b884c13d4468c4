package ports

import "context"

// ConfirmationSender delivers the post-registration confirmation email.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, to, name string) error
}
