package loader

import (
	"context"

	"github.com/crimson-sun/beacon/internal/model"
)

// Loader resolves a model file on disk to the layer-sequence structure the
// fingerprint engine consumes. Loaders never execute the model.
type Loader interface {
	Load(ctx context.Context, path string) (model.Model, error)
}
