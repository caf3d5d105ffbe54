package settings

import (
	"context"

	appErrors "vercheck/internal/errors"
)

// Backend names accepted by OpenStore.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// OpenStore returns the Store for the named backend.
func OpenStore(ctx context.Context, backend, path string, opts ...Option) (Store, error) {
	switch backend {
	case BackendYAML, "":
		return NewYAMLStore(path, opts...), nil
	case BackendSQLite:
		store, err := OpenSQLiteStore(ctx, path, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, appErrors.Newf(appErrors.CodeConfigurationError, nil, "unknown settings backend %q", backend)
	}
}
