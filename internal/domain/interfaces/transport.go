package interfaces

import (
	"context"

	domaintypes "rolechain/internal/domain/types"
)

// Transport carries encrypted records between parties. It never sees
// plaintext; routing is by locator prefix only.
type Transport interface {
	// Publish stores payload under locator and returns its delivery id.
	Publish(ctx context.Context, locator string, payload []byte) (string, error)
	// Subscribe streams every delivery whose locator matches prefix until ctx
	// is cancelled, at which point the channel is closed.
	Subscribe(ctx context.Context, prefix string) (<-chan domaintypes.Delivery, error)
	// Fetch returns a previously published delivery by id.
	Fetch(ctx context.Context, id string) (domaintypes.Delivery, error)
}
