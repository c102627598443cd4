// Package stub provides a deterministic AI client used when no credential or
// local model is available.
package stub

import (
	"github.com/Abiads/talentscout/internal/domain"
)

// Marker prefixes every stub response so callers can recognize degraded output.
const Marker = "[no-key-stub] "

// Client echoes the prompt with a fixed marker. Callers must check Backend()
// and skip steps that require real model output (e.g. resume JSON parsing).
type Client struct{}

// New constructs a stub client.
func New() *Client { return &Client{} }

// Invoke returns the marker followed by the prompt. It never fails.
func (c *Client) Invoke(_ domain.Context, prompt string, _ []domain.Message) (string, error) {
	return Marker + prompt, nil
}

// Backend identifies this client as the degraded stub.
func (c *Client) Backend() string { return domain.BackendStub }
