package rail

import "fmt"

// Config carries the fixed rule numbers the bot pipeline consumes.
type Config struct {
	// Track construction cap per turn, distinct from total money.
	BuildBudgetPerTurn int

	// Victory requires both thresholds at once.
	VictoryMoney  int
	VictoryCities int

	StartMoney int
}

// DefaultConfig returns the standard rule set.
func DefaultConfig() Config {
	return Config{
		BuildBudgetPerTurn: 20,
		VictoryMoney:       250,
		VictoryCities:      7,
		StartMoney:         50,
	}
}

func (c Config) Validate() error {
	if c.BuildBudgetPerTurn <= 0 {
		return fmt.Errorf("BuildBudgetPerTurn must be > 0")
	}
	if c.VictoryMoney <= 0 {
		return fmt.Errorf("VictoryMoney must be > 0")
	}
	if c.VictoryCities <= 0 {
		return fmt.Errorf("VictoryCities must be > 0")
	}
	if c.StartMoney < 0 {
		return fmt.Errorf("StartMoney must be >= 0")
	}
	return nil
}
