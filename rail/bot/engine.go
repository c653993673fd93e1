package bot

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
)

// MaxRetries caps how many ranked candidates a turn will attempt before
// falling back to PassTurn.
const MaxRetries = 3

// TurnOutcome is the definite result every turn reaches.
type TurnOutcome struct {
	Success        bool
	RetriesUsed    int
	FellBackToPass bool
	Audit          *StrategyAudit
}

// Engine orchestrates one bot turn: capture, generate, score, select,
// validate, execute, retry or fall back, audit, emit.
type Engine struct {
	snapshots *SnapshotService
	executor  *TurnExecutor
	audits    AuditStore
	emitter   Emitter
}

func NewEngine(snapshots *SnapshotService, executor *TurnExecutor, audits AuditStore, emitter Emitter) *Engine {
	return &Engine{snapshots: snapshots, executor: executor, audits: audits, emitter: emitter}
}

// TakeTurn runs the full pipeline for one bot turn. It always reaches a
// terminal outcome, always persists an audit (best-effort), and always emits
// the turn-complete event before returning.
func (e *Engine) TakeTurn(ctx context.Context, gameID, botPlayerID, botUserID string, cfg BotConfig, turnNumber int) TurnOutcome {
	started := time.Now()
	e.emitter.EmitToGame(gameID, "bot:turn-start", map[string]any{
		"botPlayerId": botPlayerID,
		"turnNumber":  turnNumber,
	})

	audit := newAudit(gameID, botPlayerID, turnNumber, cfg)

	snap, err := e.snapshots.Capture(ctx, gameID, botPlayerID, botUserID)
	if err != nil {
		// Degraded turn: nothing to decide over, but the audit trail and the
		// completion event still happen.
		log.Printf("[Engine] snapshot capture failed: game=%s bot=%s err=%v", gameID, botPlayerID, err)
		audit.PlanText = "snapshot capture failed; no options considered"
		audit.Execution = ExecutionResult{Success: false, Error: err.Error()}
		audit.FellBackToPass = true
		audit.BotStatus = "unavailable"
		audit.Duration = time.Since(started)
		e.finish(ctx, audit)
		return TurnOutcome{Success: false, FellBackToPass: true, Audit: audit}
	}
	audit.SnapshotDigest = snap.Digest()
	audit.BotStatus = botStatusSummary(snap)

	generated := GenerateOptions(snap)
	scored := ScoreOptions(generated.Feasible, snap, cfg)
	audit.FeasibleOptions = recordScored(scored)
	audit.InfeasibleOptions = recordInfeasible(generated.Infeasible)

	// One skill-driven draw perturbs the ranked order for the whole turn;
	// retries walk the same candidate list and never re-sample.
	rng := rand.New(rand.NewSource(cfg.Seed + int64(turnNumber)))
	candidates := perturbOrder(scored, cfg, rng)

	executed, execRes, retries, fellBack := e.attemptCandidates(ctx, snap, candidates)

	audit.SelectedPlan = recordPlan(executed)
	audit.PlanText = planNarrative(executed, candidates)
	audit.Execution = execRes
	audit.RetriesUsed = retries
	audit.FellBackToPass = fellBack
	audit.Duration = time.Since(started)

	e.finish(ctx, audit)
	return TurnOutcome{
		Success:        !fellBack,
		RetriesUsed:    retries,
		FellBackToPass: fellBack,
		Audit:          audit,
	}
}

// attemptCandidates walks the ranked candidates, validating then executing,
// up to MaxRetries attempts. When every attempt fails it executes the
// guaranteed PassTurn fallback.
func (e *Engine) attemptCandidates(ctx context.Context, snap *WorldSnapshot, candidates []ScoredOption) (TurnPlan, ExecutionResult, int, bool) {
	attempts := len(candidates)
	if attempts > MaxRetries {
		attempts = MaxRetries
	}

	retries := 0
	for i := 0; i < attempts; i++ {
		plan := e.buildPlan(candidates[i], candidates, snap)
		if vr := ValidatePlan(plan, snap); !vr.Valid {
			log.Printf("[Engine] candidate %d invalid: %s", i+1, strings.Join(vr.Violations, "; "))
			retries++
			continue
		}
		res := e.executor.Execute(ctx, plan, snap)
		if !res.Success {
			log.Printf("[Engine] candidate %d execution failed: %s", i+1, res.Error)
			retries++
			continue
		}
		return plan, res, retries, false
	}

	pass := TurnPlan{Actions: []Feasible{{
		Action:      ActionPassTurn,
		Description: "Pass the turn",
		Params:      PassParams{},
	}}}
	return pass, e.executor.Execute(ctx, pass, snap), retries, true
}

// finish persists the audit (best-effort) and emits turn completion.
func (e *Engine) finish(ctx context.Context, audit *StrategyAudit) {
	if err := e.audits.SaveTurnAudit(ctx, audit.GameID, audit.BotPlayerID, audit); err != nil {
		log.Printf("[Engine] audit persist failed (ignored): game=%s err=%v", audit.GameID, err)
	}
	e.emitter.EmitToGame(audit.GameID, "bot:turn-complete", map[string]any{
		"botPlayerId": audit.BotPlayerID,
		"audit":       audit,
	})
}

// perturbOrder applies the single per-turn skill draw: a low roll swaps in a
// uniformly random feasible option, the next band promotes the second-ranked
// one, and otherwise the ranked order stands.
func perturbOrder(scored []ScoredOption, cfg BotConfig, rng *rand.Rand) []ScoredOption {
	if len(scored) < 2 || cfg.Skill == nil {
		return scored
	}
	out := make([]ScoredOption, len(scored))
	copy(out, scored)

	draw := rng.Float64()
	switch {
	case draw < cfg.Skill.RandomChoicePercent:
		pick := rng.Intn(len(out))
		out[0], out[pick] = out[pick], out[0]
	case draw < cfg.Skill.RandomChoicePercent+cfg.Skill.SuboptimalityPercent:
		out[0], out[1] = out[1], out[0]
	}
	return out
}

// buildPlan turns a candidate into a plan. A delivery with leftover build
// budget chains the best build option behind it.
func (e *Engine) buildPlan(candidate ScoredOption, all []ScoredOption, snap *WorldSnapshot) TurnPlan {
	plan := TurnPlan{Actions: []Feasible{candidate.Feasible}}
	if candidate.Action != ActionDeliverLoad {
		return plan
	}
	budgetLeft := snap.Config().BuildBudgetPerTurn - snap.TurnBuildSpend()
	if budgetLeft <= 0 {
		return plan
	}
	for _, other := range all {
		if other.Action != ActionBuildTrack && other.Action != ActionBuildTowardMajorCity {
			continue
		}
		if p, ok := other.Params.(BuildParams); ok && p.Cost <= budgetLeft {
			plan.Actions = append(plan.Actions, other.Feasible)
			break
		}
	}
	return plan
}

func planNarrative(plan TurnPlan, candidates []ScoredOption) string {
	var b strings.Builder
	for i, a := range plan.Actions {
		if i > 0 {
			b.WriteString("; then ")
		}
		b.WriteString(a.Description)
	}
	for _, c := range candidates {
		if len(plan.Actions) > 0 && c.Description == plan.Actions[0].Description {
			fmt.Fprintf(&b, " (%s)", c.Rationale)
			break
		}
	}
	return b.String()
}
