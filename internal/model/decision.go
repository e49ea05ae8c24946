package model

// Action is the kind of side effect a Decision asks the caller to perform.
type Action string

const (
	ActionNone    Action = "none"
	ActionLabel   Action = "label"
	ActionComment Action = "comment"
)

// Display returns a human-readable action name
func (a Action) Display() string {
	switch a {
	case ActionLabel:
		return "Label"
	case ActionComment:
		return "Remind"
	default:
		return "Skip"
	}
}

// DecisionReason explains which branch of the policy produced a Decision.
type DecisionReason string

const (
	ReasonStopSignal      DecisionReason = "stop-signal"
	ReasonNotInactive     DecisionReason = "not-inactive"
	ReasonNoPriorReminder DecisionReason = "no-prior-reminder"
	ReasonHumanReplied    DecisionReason = "human-replied"
	ReasonAlreadyReminded DecisionReason = "already-reminded"
)

// Display returns a short human-readable explanation of the reason.
func (r DecisionReason) Display() string {
	switch r {
	case ReasonStopSignal:
		return "asked to stop"
	case ReasonNotInactive:
		return "recently active"
	case ReasonNoPriorReminder:
		return "inactive, first reminder"
	case ReasonHumanReplied:
		return "inactive since reply"
	case ReasonAlreadyReminded:
		return "already reminded"
	default:
		return string(r)
	}
}

// Decision is the outcome for one tracked item. Exactly one variant applies:
// ActionNone, ActionLabel (Label set) or ActionComment (Body set once rendered).
type Decision struct {
	Action    Action         `json:"action"`
	Label     string         `json:"label,omitempty"`
	Body      string         `json:"body,omitempty"`
	Reason    DecisionReason `json:"reason"`
	DaysSince float64        `json:"daysSince"`
}

// NoAction returns a Decision that asks for nothing.
func NoAction(reason DecisionReason, daysSince float64) Decision {
	return Decision{Action: ActionNone, Reason: reason, DaysSince: daysSince}
}

// ApplyLabel returns a Decision that asks for label to be applied.
func ApplyLabel(label string) Decision {
	return Decision{Action: ActionLabel, Label: label, Reason: ReasonStopSignal}
}

// PostComment returns a Decision that asks for body to be posted.
func PostComment(body string, reason DecisionReason, daysSince float64) Decision {
	return Decision{Action: ActionComment, Body: body, Reason: reason, DaysSince: daysSince}
}
