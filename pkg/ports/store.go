package ports

import (
	"context"

	"github.com/aretw0/stagehand/pkg/domain"
)

// DescriptorStore persists creation descriptors between launch and instantiation.
type DescriptorStore interface {
	// Save persists the descriptor under its UniqueID.
	Save(ctx context.Context, d domain.Descriptor) error

	// Load returns domain.ErrDescriptorNotFound if the id is unknown.
	Load(ctx context.Context, uniqueID string) (domain.Descriptor, error)

	// Delete removes the descriptor. Deleting an unknown id is not an error.
	Delete(ctx context.Context, uniqueID string) error

	// List returns the ids of every stored descriptor.
	List(ctx context.Context) ([]string, error)
}
