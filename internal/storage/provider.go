// Package storage defines the host graph contract and its on-disk
// implementation for Logseq graph directories.
package storage

import (
	"context"

	"github.com/starford/habitdash/internal/models"
)

// PageOptions controls page creation on the host.
type PageOptions struct {
	// Redirect asks an interactive host to navigate to the new page.
	Redirect bool `json:"redirect"`
	// CreateFirstBlock asks the host to seed the page with an empty block.
	CreateFirstBlock bool `json:"createFirstBlock"`
}

// Provider is the host graph: page listing and block trees for the habit
// pipeline plus the few editor calls used to set up the dashboard page.
type Provider interface {
	// GetAllPages returns every page in host order.
	GetAllPages(ctx context.Context) ([]models.Page, error)
	// GetPageBlocksTree returns the block tree of a page, nil if it has none.
	GetPageBlocksTree(ctx context.Context, pageName string) ([]*models.Block, error)
	// GetPage returns the named page or nil when it does not exist.
	GetPage(ctx context.Context, name string) (*models.Page, error)
	// CreatePage creates a page with optional properties.
	CreatePage(ctx context.Context, name string, properties map[string]string, opts PageOptions) (*models.Page, error)
	// AppendBlockInPage appends a top-level block to a page.
	AppendBlockInPage(ctx context.Context, pageName, content string) (*models.Block, error)
}
