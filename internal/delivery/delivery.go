// Package delivery defines the inbound transports of the service.
package delivery

import "context"

// Delivery is a transport that blocks in Serve until it is shut down.
type Delivery interface {
	Serve(ctx context.Context) error
}
