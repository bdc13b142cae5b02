package domain

// ItemKind classifies a work item type by whether its children are resolved.
type ItemKind int

const (
	KindContainer ItemKind = iota
	KindLeaf
)

func (k ItemKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Work item type names used by Azure Boards process templates.
const (
	TypeFeature   = "Feature"
	TypeUserStory = "User Story"
	TypeTask      = "Task"
	TypeBug       = "Bug"
	TypeUnknown   = "Unknown"
)

// leafTypes is the complete set of types whose children are never fetched.
var leafTypes = map[string]struct{}{
	TypeTask: {},
	TypeBug:  {},
}

// Classify maps a work item type onto its ItemKind. Every type outside the
// leaf set is a container.
func Classify(itemType string) ItemKind {
	if _, ok := leafTypes[itemType]; ok {
		return KindLeaf
	}
	return KindContainer
}

// SourceADO tags IR documents produced from Azure DevOps.
const SourceADO = "ado"

// doneStates are the workflow states counted as finished in summaries.
var doneStates = map[string]bool{
	"Done": true, "Closed": true, "Resolved": true, "Removed": true,
}

// IsDoneState reports whether state is a terminal workflow state.
func IsDoneState(state string) bool {
	return doneStates[state]
}
