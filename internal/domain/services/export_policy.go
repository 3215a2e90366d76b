package services

import "github.com/ochairo/appshortcuts/internal/domain/entities"

// IsExported looks the component's class name up in the package's declared
// activities. Relative names are qualified against their own package
// before comparing. Unknown components are never exported.
func IsExported(component entities.ComponentName, meta *entities.PackageMetadata) bool {
	if meta == nil {
		return false
	}

	want := component.QualifiedClass()
	for _, activity := range meta.Activities {
		if entities.QualifyClassName(meta.PackageName, activity.Name) == want {
			return activity.Exported
		}
	}
	return false
}

// IsExported implements services.ShortcutService
func (s *shortcutService) IsExported(component entities.ComponentName, meta *entities.PackageMetadata) bool {
	return IsExported(component, meta)
}

// Accept keeps a shortcut only when both the declaring activity and the
// intent target are exported
func (s *shortcutService) Accept(shortcut entities.Shortcut, meta *entities.PackageMetadata) bool {
	return IsExported(shortcut.Activity, meta) && IsExported(shortcut.Intent.Component, meta)
}
