package wizard

import (
	"github.com/vendra/formwizard/pkg/fieldmap"
	"github.com/vendra/formwizard/pkg/upload"
)

// State is a read-only snapshot of one wizard session. Maps and slices are
// deep-copied; mutating a snapshot never touches the session.
type State struct {
	EntityID            string
	CurrentSectionID    string
	UnlockedSectionIDs  []string
	CompletedSectionIDs []string
	Values              map[string]any
	PendingFiles        map[string]upload.FileRef
	FileURLs            map[string]string
	Completed           bool
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = deepCopy(value)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	case fieldmap.CompositeDate:
		return typed
	default:
		return typed
	}
}
