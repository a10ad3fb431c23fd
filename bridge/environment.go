package bridge

import "context"

// Environment is a running foreign interpreter. Bindings made by Exec
// persist in its global scope until Close. Implementations are not required
// to be safe for concurrent use; Bridge serialises access.
type Environment interface {
	// Exec runs snippet verbatim in the global scope.
	Exec(ctx context.Context, snippet string) error

	// Export returns the named binding encoded as an Arrow IPC stream.
	Export(ctx context.Context, name string) ([]byte, error)

	// Import binds name to the table carried by an Arrow IPC stream.
	Import(ctx context.Context, name string, stream []byte) error

	Close() error
}
