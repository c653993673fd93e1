package bot

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ProfileRegistry holds all skill and archetype definitions. A process loads
// one registry at startup and treats it as read-only afterwards.
type ProfileRegistry struct {
	mu         sync.RWMutex
	skills     map[string]*SkillProfile
	archetypes map[string]*ArchetypeProfile
}

// NewRegistry creates a registry pre-populated with the builtin profiles.
func NewRegistry() *ProfileRegistry {
	r := &ProfileRegistry{
		skills:     make(map[string]*SkillProfile),
		archetypes: make(map[string]*ArchetypeProfile),
	}
	for _, s := range builtinSkills() {
		r.skills[s.ID] = s
	}
	for _, a := range builtinArchetypes() {
		r.archetypes[a.ID] = a
	}
	return r
}

type profileFile struct {
	Skills     []*SkillProfile     `yaml:"skills"`
	Archetypes []*ArchetypeProfile `yaml:"archetypes"`
}

// LoadFromFile merges profile definitions from a YAML file over the builtins.
func (r *ProfileRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profiles file: %w", err)
	}
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse profiles yaml: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range pf.Skills {
		if s.ID == "" {
			continue
		}
		r.skills[s.ID] = s
	}
	for _, a := range pf.Archetypes {
		if a.ID == "" {
			continue
		}
		r.archetypes[a.ID] = a
	}
	return nil
}

// Skill returns a skill profile by ID.
func (r *ProfileRegistry) Skill(id string) *SkillProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.skills[id]
}

// Archetype returns an archetype profile by ID.
func (r *ProfileRegistry) Archetype(id string) *ArchetypeProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.archetypes[id]
}

// Config builds a BotConfig from profile IDs.
func (r *ProfileRegistry) Config(skillID, archetypeID string, seed int64) (BotConfig, error) {
	skill := r.Skill(skillID)
	if skill == nil {
		return BotConfig{}, fmt.Errorf("unknown skill profile %q", skillID)
	}
	arch := r.Archetype(archetypeID)
	if arch == nil {
		return BotConfig{}, fmt.Errorf("unknown archetype profile %q", archetypeID)
	}
	return BotConfig{Skill: skill, Archetype: arch, Seed: seed}, nil
}

func builtinSkills() []*SkillProfile {
	flat := func(w float64) map[Dimension]float64 {
		m := make(map[Dimension]float64, len(Dimensions))
		for _, d := range Dimensions {
			m[d] = w
		}
		return m
	}

	novice := &SkillProfile{
		ID:                   "novice",
		Name:                 "Novice",
		BaseWeights:          flat(1.0),
		RandomChoicePercent:  0.15,
		SuboptimalityPercent: 0.25,
		LookaheadDepth:       1,
		LookaheadBreadth:     3,
		LookaheadDiscount:    0.5,
	}
	// Novices barely weigh long-term dimensions.
	novice.BaseWeights[DimVictoryProgress] = 0.3
	novice.BaseWeights[DimBackboneAlignment] = 0.2
	novice.BaseWeights[DimBlocking] = 0.1

	standard := &SkillProfile{
		ID:                   "standard",
		Name:                 "Standard",
		BaseWeights:          flat(1.0),
		RandomChoicePercent:  0.05,
		SuboptimalityPercent: 0.15,
		LookaheadDepth:       2,
		LookaheadBreadth:     4,
		LookaheadDiscount:    0.7,
	}

	expert := &SkillProfile{
		ID:                   "expert",
		Name:                 "Expert",
		BaseWeights:          flat(1.0),
		RandomChoicePercent:  0.0,
		SuboptimalityPercent: 0.05,
		LookaheadDepth:       3,
		LookaheadBreadth:     6,
		LookaheadDiscount:    0.85,
	}
	expert.BaseWeights[DimVictoryProgress] = 1.6
	expert.BaseWeights[DimIncomePerDistance] = 1.4
	expert.BaseWeights[DimBackboneAlignment] = 1.3

	return []*SkillProfile{novice, standard, expert}
}

func builtinArchetypes() []*ArchetypeProfile {
	return []*ArchetypeProfile{
		{
			ID:          "balanced",
			Name:        "Balanced",
			Tagline:     "No strong leanings",
			Multipliers: map[Dimension]float64{},
		},
		{
			ID:      "tycoon",
			Name:    "Tycoon",
			Tagline: "Cash first, questions later",
			Multipliers: map[Dimension]float64{
				DimIncomeNow:         1.8,
				DimIncomePerDistance: 1.5,
				DimUpgradeROI:        1.3,
				DimVictoryProgress:   0.8,
			},
		},
		{
			ID:      "expansionist",
			Name:    "Expansionist",
			Tagline: "Track everywhere",
			Multipliers: map[Dimension]float64{
				DimNetworkExpansion:  1.8,
				DimCityProximity:     1.5,
				DimBackboneAlignment: 1.4,
				DimIncomeNow:         0.7,
			},
		},
		{
			ID:      "blocker",
			Name:    "Blocker",
			Tagline: "Your route is my route now",
			Multipliers: map[Dimension]float64{
				DimBlocking:     2.0,
				DimRiskExposure: 1.3,
				DimLoadScarcity: 1.4,
			},
		},
	}
}
