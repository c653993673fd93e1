package bot

// Dimension is one axis of the fixed scoring catalog.
type Dimension string

const (
	DimIncomeNow         Dimension = "incomeNow"
	DimIncomePerDistance Dimension = "incomePerDistance"
	DimMultiDelivery     Dimension = "multiDelivery"
	DimNetworkExpansion  Dimension = "networkExpansion"
	DimVictoryProgress   Dimension = "victoryProgress"
	DimBlocking          Dimension = "blocking"
	DimRiskExposure      Dimension = "riskExposure"
	DimLoadScarcity      Dimension = "loadScarcity"
	DimUpgradeROI        Dimension = "upgradeROI"
	DimBackboneAlignment Dimension = "backboneAlignment"
	DimLoadSynergy       Dimension = "loadSynergy"
	DimCityProximity     Dimension = "cityProximity"
)

// Dimensions lists the full catalog in fixed order.
var Dimensions = []Dimension{
	DimIncomeNow,
	DimIncomePerDistance,
	DimMultiDelivery,
	DimNetworkExpansion,
	DimVictoryProgress,
	DimBlocking,
	DimRiskExposure,
	DimLoadScarcity,
	DimUpgradeROI,
	DimBackboneAlignment,
	DimLoadSynergy,
	DimCityProximity,
}

// SkillProfile controls competence: base dimension weights, injected
// randomness/suboptimality, and lookahead shape.
type SkillProfile struct {
	ID          string                `json:"id" yaml:"id"`
	Name        string                `json:"name" yaml:"name"`
	BaseWeights map[Dimension]float64 `json:"baseWeights" yaml:"baseWeights"`

	// RandomChoicePercent of turns pick a uniformly random feasible option;
	// the next SuboptimalityPercent pick the second-ranked one.
	RandomChoicePercent  float64 `json:"randomChoicePercent" yaml:"randomChoicePercent"`
	SuboptimalityPercent float64 `json:"suboptimalityPercent" yaml:"suboptimalityPercent"`

	LookaheadDepth    int     `json:"lookaheadDepth" yaml:"lookaheadDepth"`
	LookaheadBreadth  int     `json:"lookaheadBreadth" yaml:"lookaheadBreadth"`
	LookaheadDiscount float64 `json:"lookaheadDiscount" yaml:"lookaheadDiscount"`
}

// ArchetypeProfile is a named strategic personality: per-dimension
// multipliers over the skill base weights plus display metadata.
type ArchetypeProfile struct {
	ID          string                `json:"id" yaml:"id"`
	Name        string                `json:"name" yaml:"name"`
	Tagline     string                `json:"tagline" yaml:"tagline"`
	Multipliers map[Dimension]float64 `json:"multipliers" yaml:"multipliers"`
}

// Weight resolves the effective weight of a dimension for a skill/archetype
// pair: base weight times archetype multiplier (multiplier defaults to 1).
func Weight(skill *SkillProfile, archetype *ArchetypeProfile, dim Dimension) float64 {
	base := skill.BaseWeights[dim]
	mult := 1.0
	if archetype != nil {
		if m, ok := archetype.Multipliers[dim]; ok {
			mult = m
		}
	}
	return base * mult
}

// BotConfig pairs the two profiles for one bot plus its RNG seed.
type BotConfig struct {
	Skill     *SkillProfile
	Archetype *ArchetypeProfile
	Seed      int64
}
