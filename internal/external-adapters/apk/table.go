package apk

import (
	"fmt"

	"github.com/shogo82148/androidbinary"

	"github.com/ochairo/appshortcuts/internal/domain/entities"
)

// Table is a decoded resources.arsc. The zero value is an empty table.
type Table struct {
	file *androidbinary.TableFile
}

// lookup returns the default-configuration value of id: a string, a
// uint32 for integer and color values, a bool, or nil for null entries
func (t *Table) lookup(id entities.ResourceID) (any, error) {
	if t == nil || t.file == nil {
		return nil, fmt.Errorf("%w: %s: package has no resource table", entities.ErrResourceNotFound, id)
	}
	v, err := t.file.GetResource(androidbinary.ResID(id), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entities.ErrResourceNotFound, id, err)
	}
	return v, nil
}

// ResolveString returns the string value of id
func (t *Table) ResolveString(id entities.ResourceID) (string, error) {
	v, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string (%T)", entities.ErrResourceNotFound, id, v)
	}
	return s, nil
}
