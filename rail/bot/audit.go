package bot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OptionRecord is the audit form of one candidate option.
type OptionRecord struct {
	Action      string  `json:"action"`
	Description string  `json:"description"`
	Feasible    bool    `json:"feasible"`
	Reason      string  `json:"reason,omitempty"`
	Score       float64 `json:"score,omitempty"`
	Rationale   string  `json:"rationale,omitempty"`
}

// StrategyAudit is the one persisted record per turn attempt. It is built
// once, after the turn reaches its terminal outcome, and never modified.
type StrategyAudit struct {
	ID             string `json:"id"`
	GameID         string `json:"gameId"`
	BotPlayerID    string `json:"botPlayerId"`
	TurnNumber     int    `json:"turnNumber"`
	SkillID        string `json:"skillId"`
	ArchetypeID    string `json:"archetypeId"`
	SnapshotDigest string `json:"snapshotDigest"`

	PlanText string `json:"planText"`

	FeasibleOptions   []OptionRecord `json:"feasibleOptions"`
	InfeasibleOptions []OptionRecord `json:"infeasibleOptions"`
	SelectedPlan      []OptionRecord `json:"selectedPlan"`

	Execution      ExecutionResult `json:"execution"`
	RetriesUsed    int             `json:"retriesUsed"`
	FellBackToPass bool            `json:"fellBackToPass"`

	BotStatus string        `json:"botStatus"`
	Duration  time.Duration `json:"durationNs"`
	CreatedAt time.Time     `json:"createdAt"`
}

func newAudit(gameID, botPlayerID string, turnNumber int, cfg BotConfig) *StrategyAudit {
	a := &StrategyAudit{
		ID:          uuid.NewString(),
		GameID:      gameID,
		BotPlayerID: botPlayerID,
		TurnNumber:  turnNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if cfg.Skill != nil {
		a.SkillID = cfg.Skill.ID
	}
	if cfg.Archetype != nil {
		a.ArchetypeID = cfg.Archetype.ID
	}
	return a
}

func recordScored(opts []ScoredOption) []OptionRecord {
	out := make([]OptionRecord, 0, len(opts))
	for _, o := range opts {
		out = append(out, OptionRecord{
			Action:      o.Action.String(),
			Description: o.Description,
			Feasible:    true,
			Score:       o.Score,
			Rationale:   o.Rationale,
		})
	}
	return out
}

func recordInfeasible(opts []Infeasible) []OptionRecord {
	out := make([]OptionRecord, 0, len(opts))
	for _, o := range opts {
		out = append(out, OptionRecord{
			Action:      o.Action.String(),
			Description: o.Description,
			Reason:      o.Reason,
		})
	}
	return out
}

func recordPlan(plan TurnPlan) []OptionRecord {
	out := make([]OptionRecord, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		out = append(out, OptionRecord{
			Action:      a.Action.String(),
			Description: a.Description,
			Feasible:    true,
		})
	}
	return out
}

func botStatusSummary(snap *WorldSnapshot) string {
	return fmt.Sprintf("money=%d debt=%d loads=%d cities=%d train=%s",
		snap.Money(), snap.Debt(), len(snap.CarriedLoads()),
		snap.ConnectedCityCount(), snap.TrainType())
}
