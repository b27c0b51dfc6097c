//go:build !windows

package solidworks

import (
	"context"
	"fmt"

	"github.com/desertthunder/swbatch/internal/converter"
	"github.com/desertthunder/swbatch/internal/formats"
	"github.com/desertthunder/swbatch/internal/shared"
)

// Client is a placeholder on platforms without COM. Connect always fails, so
// batches abort before any task runs; scanning and dry runs are unaffected.
type Client struct{}

// NewClient creates an unconnected Client.
func NewClient() *Client {
	return &Client{}
}

func (c *Client) Connect(ctx context.Context, visible bool) error {
	return fmt.Errorf("SolidWorks automation requires Windows")
}

func (c *Client) Open(path string, docType formats.DocType) (converter.DocumentHandle, error) {
	return nil, shared.ErrNotImplemented
}

func (c *Client) SaveAsRich(handle converter.DocumentHandle, path string) (converter.SaveOutcome, error) {
	return converter.SaveOutcome{}, shared.ErrNotImplemented
}

func (c *Client) SaveAsLegacy(handle converter.DocumentHandle, path string) (bool, error) {
	return false, shared.ErrNotImplemented
}

func (c *Client) Close(handle converter.DocumentHandle) error {
	return shared.ErrNotImplemented
}

func (c *Client) Disconnect() error {
	return nil
}
