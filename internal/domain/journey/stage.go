package journey

import (
	"strings"

	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
)

// Stage is a user's position in the onboarding to application lifecycle.
type Stage string

const (
	StageOnboarding   Stage = "ONBOARDING"
	StageDiscovery    Stage = "DISCOVERY"
	StageShortlisting Stage = "SHORTLISTING"
	StageLocked       Stage = "LOCKED"
	StageApplication  Stage = "APPLICATION"
)

// Stages lists every state in forward order.
var Stages = []Stage{StageOnboarding, StageDiscovery, StageShortlisting, StageLocked, StageApplication}

// Action is an event that may move a user to another stage.
type Action string

const (
	ActionOnboardingCompleted Action = "onboarding_completed"
	ActionFirstShortlisted    Action = "first_shortlisted"
	ActionLocked              Action = "locked"
	ActionChecklistProgressed Action = "checklist_progressed"
	ActionUnlocked            Action = "unlocked"
)

type edge struct {
	from   Stage
	action Action
}

var transitions = map[edge]Stage{
	{StageOnboarding, ActionOnboardingCompleted}: StageDiscovery,
	{StageDiscovery, ActionFirstShortlisted}:     StageShortlisting,
	{StageShortlisting, ActionLocked}:            StageLocked,
	{StageLocked, ActionChecklistProgressed}:     StageApplication,
	{StageLocked, ActionUnlocked}:                StageShortlisting,
	{StageApplication, ActionUnlocked}:           StageShortlisting,
}

func (s Stage) String() string { return string(s) }

func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// Rank is the stage's position in forward order, -1 when unknown.
func (s Stage) Rank() int {
	for i, known := range Stages {
		if s == known {
			return i
		}
	}
	return -1
}

func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", apierr.Validation("unknown stage %q", raw)
	}
	return s, nil
}

// Next returns the stage reached by applying action in from. ok is false when the
// action is not a legal transition from that stage.
func Next(from Stage, action Action) (to Stage, ok bool) {
	to, ok = transitions[edge{from, action}]
	return to, ok
}

// Set is the collection of stages an operation may be invoked from.
type Set []Stage

var (
	OnlyOnboarding  = Set{StageOnboarding}
	AfterOnboarding = Set{StageDiscovery, StageShortlisting, StageLocked, StageApplication}
	Selecting       = Set{StageDiscovery, StageShortlisting}
	Lockable        = Set{StageShortlisting, StageLocked, StageApplication}
	HoldingLock     = Set{StageLocked, StageApplication}
	Any             = Set{StageOnboarding, StageDiscovery, StageShortlisting, StageLocked, StageApplication}
)

func (set Set) Contains(s Stage) bool {
	for _, allowed := range set {
		if allowed == s {
			return true
		}
	}
	return false
}

func (set Set) String() string {
	names := make([]string, 0, len(set))
	for _, s := range set {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// Guard fails with PermissionDenied when current is outside allowed.
func Guard(operation string, current Stage, allowed Set) error {
	if allowed.Contains(current) {
		return nil
	}
	return apierr.PermissionDenied("%s requires stage %s (current stage %s)", operation, allowed, current)
}
