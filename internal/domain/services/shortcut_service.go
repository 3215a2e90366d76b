// Package services implements domain business logic and use cases.
package services

import (
	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
	"github.com/ochairo/appshortcuts/internal/domain/interfaces/services"
)

// shortcutService implements ShortcutService with pure parsing and policy logic
type shortcutService struct {
	logger interfaces.Logger
}

// NewShortcutService creates a new shortcut service
func NewShortcutService(logger interfaces.Logger) services.ShortcutService {
	return &shortcutService{logger: interfaces.OrNoOp(logger)}
}
