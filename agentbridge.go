// Package agentbridge provides a high-level façade over the run streaming
// engine and the resource managers for remote agent services. Most
// applications interact with this package by:
//  1. Creating a Client via New() with an endpoint and target agent or team
//  2. Subscribing listeners for conversation and run lifecycle notifications
//  3. Sending messages (Send), resuming paused runs (Continue) and
//     cancelling in-flight runs (Cancel)
//
// The façade delegates to client.Client while keeping setup ergonomics
// concise. Defaults are safe for local development; production deployments
// typically supply a refreshable token source and a structured logger.
package agentbridge

import (
	"github.com/hupe1980/agentbridge/client"
)

// Client drives streamed runs against a remote agent service.
type Client = client.Client

// Options configures the Client.
type Options = client.Options

// SendOptions configures one run request.
type SendOptions = client.SendOptions

// New creates a Client for the service at endpoint with optional overrides.
func New(endpoint string, optFns ...func(o *Options)) (*Client, error) {
	return client.New(endpoint, optFns...)
}
