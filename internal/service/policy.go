package service

import (
	"fmt"
	"strings"

	"genie/internal/model"
)

// ActionKind is the outcome of the clarification policy for a turn
type ActionKind int

const (
	ActionProceed ActionKind = iota
	ActionAnswerPending
	ActionAskClarification
)

func (k ActionKind) String() string {
	switch k {
	case ActionAnswerPending:
		return "answer_pending"
	case ActionAskClarification:
		return "ask_clarification"
	default:
		return "proceed"
	}
}

// QuestionProjectScope is the free-text scoping question for mall projects. It
// carries no options, so it never becomes a pending question.
const QuestionProjectScope model.QuestionKind = "project_scope"

var (
	projectScaleOptions      = []string{"Standard Size (approx 150sqm)", "Large Scale / Commercial", "I have my own dimensions"}
	investorObjectiveOptions = []string{"Maximize Rental Yield (%)", "Long-term Capital Appreciation", "Mixed-use Cash Flow"}
	intentOptions            = []string{"I want to Buy", "I want to Rent"}
	adjustSearchOptions      = []string{"Expand search area", "Adjust budget", "Try different property type"}
)

var affirmations = map[string]bool{
	"yes":        true,
	"yes please": true,
	"okay":       true,
	"sure":       true,
	"go ahead":   true,
	"that works": true,
	"ok":         true,
	"please do":  true,
}

const yieldInsight = "Quick insight: rental yield measures the annual rent you collect against the purchase price, " +
	"while capital appreciation is the growth in the property's value over time. High-yield areas often " +
	"appreciate more slowly, and fast-appreciating areas tend to have thinner yields."

// Action is a tagged variant: Question/Prompt/Options apply to
// ActionAskClarification, Selected to ActionAnswerPending.
type Action struct {
	Kind     ActionKind
	Question model.QuestionKind
	Prompt   string
	Options  []string
	Selected string
}

// Decision is the policy result: informational notes to emit first, then the action
type Decision struct {
	Notes  []string
	Action Action
	Rule   string // name of the rule that produced Action, empty for proceed
}

type policyInput struct {
	mode  model.Mode
	state model.ConversationState
	lower string
}

// policyRule fires when applies returns true. A rule returning a non-nil action stops evaluation.
type policyRule struct {
	name    string
	applies func(in policyInput) bool
	fire    func(in policyInput) (note string, action *Action)
}

var policyRules = map[model.Mode][]policyRule{
	model.ModeProject: {
		{
			name:    "mall_scoping",
			applies: func(in policyInput) bool { return strings.Contains(in.lower, "mall") },
			fire: func(in policyInput) (string, *Action) {
				return "", &Action{
					Kind:     ActionAskClarification,
					Question: QuestionProjectScope,
					Prompt:   mallScopingPrompt(in.state),
				}
			},
		},
		{
			name: "project_scale",
			applies: func(in policyInput) bool {
				return in.state.PropertyType == "" && !containsAny(in.lower, []string{"sqm", "standard", "commercial"})
			},
			fire: func(in policyInput) (string, *Action) {
				return "", &Action{
					Kind:     ActionAskClarification,
					Question: model.QuestionProjectScale,
					Prompt:   fmt.Sprintf("What scale of project are you planning in %s?", in.state.Location),
					Options:  projectScaleOptions,
				}
			},
		},
	},
	model.ModeAnalytical: {
		{
			name: "yield_insight",
			applies: func(in policyInput) bool {
				return strings.Contains(in.lower, "yield") && !strings.Contains(in.lower, "directional")
			},
			fire: func(policyInput) (string, *Action) { return yieldInsight, nil },
		},
		{
			name: "investor_objective",
			applies: func(in policyInput) bool {
				return !containsAny(in.lower, []string{"yield", "appreciation", "cash flow"})
			},
			fire: func(in policyInput) (string, *Action) {
				return "", &Action{
					Kind:     ActionAskClarification,
					Question: model.QuestionInvestorObjective,
					Prompt:   fmt.Sprintf("Before I analyse %s, what is your primary investment objective?", in.state.Location),
					Options:  investorObjectiveOptions,
				}
			},
		},
	},
	model.ModeDiscovery: {
		{
			name:    "intent_confirmation",
			applies: func(in policyInput) bool { return in.state.Intent == "" },
			fire: func(in policyInput) (string, *Action) {
				return "", &Action{
					Kind:     ActionAskClarification,
					Question: model.QuestionIntentConfirmation,
					Prompt:   fmt.Sprintf("Are you looking to buy or rent in %s?", in.state.Location),
					Options:  intentOptions,
				}
			},
		},
	},
}

// ClarificationPolicy decides whether a turn needs a follow-up question before results
type ClarificationPolicy struct {
	rules map[model.Mode][]policyRule
}

// NewClarificationPolicy creates the policy with the built-in rule tables
func NewClarificationPolicy() *ClarificationPolicy {
	return &ClarificationPolicy{rules: policyRules}
}

// IsAffirmation reports whether utterance is a bare yes-style reply
func IsAffirmation(utterance string) bool {
	return affirmations[strings.ToLower(strings.TrimSpace(utterance))]
}

// ResolvePending returns the option selected by utterance when it answers
// pending with a bare affirmation; that always picks the first option.
func (p *ClarificationPolicy) ResolvePending(pending *model.PendingQuestion, utterance string) (string, bool) {
	if pending == nil || len(pending.Options) == 0 {
		return "", false
	}
	if !IsAffirmation(utterance) {
		return "", false
	}
	return pending.Options[0], true
}

var optionIntents = map[string]model.Intent{
	"I want to Buy":  model.IntentBuy,
	"I want to Rent": model.IntentRent,
}

// ApplySelection folds an affirmed option into state. Only intent
// confirmations change a slot; other option texts are never parsed.
func ApplySelection(kind model.QuestionKind, selected string, state model.ConversationState) model.ConversationState {
	if kind != model.QuestionIntentConfirmation {
		return state
	}
	if intent, ok := optionIntents[selected]; ok {
		state.Intent = intent
	}
	return state
}

// Decide applies the affirmation short-circuit and then the mode's ordered
// rules. At most one clarification is asked per turn.
func (p *ClarificationPolicy) Decide(
	mode model.Mode,
	state model.ConversationState,
	pending *model.PendingQuestion,
	utterance string,
) Decision {
	if selected, ok := p.ResolvePending(pending, utterance); ok {
		return Decision{Action: Action{Kind: ActionAnswerPending, Selected: selected}, Rule: "affirmation"}
	}

	in := policyInput{mode: mode, state: state, lower: strings.ToLower(utterance)}

	var decision Decision
	for _, rule := range p.rules[mode] {
		if !rule.applies(in) {
			continue
		}
		note, action := rule.fire(in)
		if note != "" {
			decision.Notes = append(decision.Notes, note)
		}
		if action != nil {
			decision.Action = *action
			decision.Rule = rule.name
			return decision
		}
	}

	decision.Action = Action{Kind: ActionProceed}
	return decision
}

func mallScopingPrompt(state model.ConversationState) string {
	return fmt.Sprintf("A mall in %s is a major commercial build. To estimate it properly I need a few details:\n"+
		"1. Approximate size: total floor area in sqm, and number of floors.\n"+
		"2. Expected users: anchor tenants, number of shops and daily footfall.\n"+
		"3. Utilities: parking capacity, backup power, water storage and sewer connection.", state.Location)
}

// AcknowledgePrompt is the reply when a pending question is resolved by affirmation
func AcknowledgePrompt(selected, location string) string {
	return fmt.Sprintf("Great, I'll go with \"%s\" for %s.", selected, location)
}
