// Package delivery defines the servers the application exposes.
package delivery

import "context"

// Delivery is a server started by the application's fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
