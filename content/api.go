package content

import "context"

// SecureViewAPI issues access descriptors. A refusal (expired or missing
// entitlement) should match errors.ErrContentAccessDenied.
type SecureViewAPI interface {
	SecureView(ctx context.Context, ref Ref) (AccessDescriptor, error)
}
