package bot

import (
	"time"

	"railway-lite/board"
	"railway-lite/rail"
)

// ActionType 行动类型
type ActionType byte

const (
	ActionPassTurn ActionType = iota
	ActionDeliverLoad
	ActionPickupAndDeliver
	ActionUpgradeTrain
	ActionBuildTrack
	ActionBuildTowardMajorCity
)

var ActionTypeDictionary = map[ActionType]string{
	ActionPassTurn:             "passTurn",
	ActionDeliverLoad:          "deliverLoad",
	ActionPickupAndDeliver:     "pickupAndDeliver",
	ActionUpgradeTrain:         "upgradeTrain",
	ActionBuildTrack:           "buildTrack",
	ActionBuildTowardMajorCity: "buildTowardMajorCity",
}

func (a ActionType) String() string {
	if s, ok := ActionTypeDictionary[a]; ok {
		return s
	}
	return "unknown"
}

// Option is a candidate turn action: either Feasible (with execution
// parameters) or Infeasible (with a rejection reason).
type Option interface {
	ActionType() ActionType
	Describe() string
	isOption()
}

// Params carries the action-specific execution parameters of a feasible
// option.
type Params interface {
	isParams()
}

// Feasible is an executable candidate.
type Feasible struct {
	Action      ActionType
	Description string
	Params      Params
}

func (f Feasible) ActionType() ActionType { return f.Action }
func (f Feasible) Describe() string       { return f.Description }
func (Feasible) isOption()                {}

// Infeasible is a considered-but-rejected candidate. Reason is never empty.
type Infeasible struct {
	Action      ActionType
	Description string
	Reason      string
}

func (f Infeasible) ActionType() ActionType { return f.Action }
func (f Infeasible) Describe() string       { return f.Description }
func (Infeasible) isOption()                {}

// DeliverParams describes a delivery: ride Path to City and turn in Load
// against the demand card.
type DeliverParams struct {
	Load         board.Load
	City         string
	DemandCardID string
	Payment      int
	Path         []board.GridPoint
	MoveCost     int
}

func (DeliverParams) isParams() {}

// PickupParams describes moving to a city, taking on a load, and optionally
// continuing with a delivery leg.
type PickupParams struct {
	Load        board.Load
	PickupCity  string
	FromDropped bool
	Path        []board.GridPoint
	MoveCost    int
	// Deliver, when non-nil, is the follow-on delivery leg.
	Deliver *DeliverParams
}

func (PickupParams) isParams() {}

// UpgradeParams describes a train purchase.
type UpgradeParams struct {
	Kind   board.UpgradeKind
	Target board.TrainType
	Cost   int
}

func (UpgradeParams) isParams() {}

// BuildParams describes a track extension. TargetCity is set for
// BuildTowardMajorCity.
type BuildParams struct {
	Segments   []rail.TrackSegment
	Cost       int
	TargetCity string
}

func (BuildParams) isParams() {}

// PassParams is the empty parameter set of PassTurn.
type PassParams struct{}

func (PassParams) isParams() {}

// ScoredOption is a feasible option with its weighted score and rationale.
type ScoredOption struct {
	Feasible
	Score     float64
	Rationale string
}

// TurnPlan is an ordered list of feasible actions, usually one.
type TurnPlan struct {
	Actions []Feasible
}

// ValidationResult accumulates every violation found in a plan.
type ValidationResult struct {
	Valid      bool
	Violations []string
}

// ExecutionResult reports how a plan application went.
type ExecutionResult struct {
	Success          bool
	ActionsCompleted int
	Error            string
	Duration         time.Duration
}
