package domain

// Intent is the classified purpose of a user request.
type Intent string

const (
	IntentUnknown Intent = "UNKNOWN"

	// Capability-backed intents.
	IntentSetAlarm   Intent = "SET_ALARM"
	IntentSetTimer   Intent = "SET_TIMER"
	IntentCheckTime  Intent = "CHECK_TIME"
	IntentTakeNote   Intent = "TAKE_NOTE"
	IntentListNotes  Intent = "LIST_NOTES"

	// UI-backed intents, handled by synthesizing a direct action.
	IntentOpenApp      Intent = "OPEN_APP"
	IntentNavigateBack Intent = "NAVIGATE_BACK"
	IntentNavigateHome Intent = "NAVIGATE_HOME"
	IntentScroll       Intent = "SCROLL"
	IntentClickElement Intent = "CLICK_ELEMENT"
	IntentTypeText     Intent = "TYPE_TEXT"

	// IntentMultiStep marks a request that needs a plan before execution.
	IntentMultiStep Intent = "MULTI_STEP"

	// IntentAnswer is a pure question with no device action.
	IntentAnswer Intent = "ANSWER"
)

// KnownIntents lists every intent the classifier is prompted with.
var KnownIntents = []Intent{
	IntentSetAlarm, IntentSetTimer, IntentCheckTime,
	IntentTakeNote, IntentListNotes,
	IntentOpenApp, IntentNavigateBack, IntentNavigateHome,
	IntentScroll, IntentClickElement, IntentTypeText,
	IntentMultiStep, IntentAnswer, IntentUnknown,
}

// ParseIntent maps a raw classifier string onto a known Intent,
// falling back to UNKNOWN.
func ParseIntent(raw string) Intent {
	for _, it := range KnownIntents {
		if string(it) == raw {
			return it
		}
	}
	return IntentUnknown
}
