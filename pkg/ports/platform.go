package ports

import (
	"context"

	"github.com/stewardhq/steward/pkg/domain"
)

// ScreenProvider supplies the current screen-context string and the foreground
// package it was captured from. How the text is extracted is a platform
// concern and not specified here.
type ScreenProvider interface {
	ScreenContext(ctx context.Context) (text string, sourcePackage string, err error)
}

// ActionPerformer executes a resolved UI action on the platform.
type ActionPerformer interface {
	Perform(ctx context.Context, action domain.Action) error
}
