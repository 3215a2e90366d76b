package entities

import "net/url"

// ActionMain is the default action of a shortcut intent
const ActionMain = "android.intent.action.MAIN"

// IntentFlags is the launch flag bitmask of an intent
type IntentFlags uint32

// Launch flags set on every shortcut intent
const (
	FlagActivityTaskOnHome IntentFlags = 0x00004000
	FlagActivityClearTask  IntentFlags = 0x00008000
	FlagActivityNewTask    IntentFlags = 0x10000000

	ShortcutIntentFlags = FlagActivityNewTask | FlagActivityClearTask | FlagActivityTaskOnHome
)

// Has reports whether all bits of f are set
func (fl IntentFlags) Has(f IntentFlags) bool {
	return fl&f == f
}

// Intent is a deferred activation request for a component
type Intent struct {
	Component ComponentName
	Action    string
	Data      *url.URL // nil when the shortcut declares no data
	Flags     IntentFlags
}

// Icon is an opaque handle on a drawable resource of the package
type Icon struct {
	ResourceID ResourceID
	Path       string // location of the drawable inside the package
}

// Shortcut represents a statically declared app shortcut
type Shortcut struct {
	ID              string
	Intent          Intent
	Activity        ComponentName // component whose meta-data declared the shortcut
	ShortLabel      string
	LongLabel       string
	DisabledMessage string
	Icon            Icon
}
