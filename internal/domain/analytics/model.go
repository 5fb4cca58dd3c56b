package analytics

import (
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/team"
)

// Tier is a snapshot-relative quantile bucket label. Bucket boundaries are
// recomputed over each snapshot, so the same value may land in different
// tiers on different runs; consumers must not treat tiers as absolute
// thresholds.
type Tier string

const (
	TierVeryLow  Tier = "Very Low"
	TierLow      Tier = "Low"
	TierMedium   Tier = "Medium"
	TierHigh     Tier = "High"
	TierVeryHigh Tier = "Very High"
)

// Tiers in ascending order.
var Tiers = []Tier{TierVeryLow, TierLow, TierMedium, TierHigh, TierVeryHigh}

// TeamMetrics is the derived efficiency/pace view of one canonical team
// record. Pointer fields are undefined (not zero) when their inputs are
// missing, e.g. per-possession stats at zero possessions.
type TeamMetrics struct {
	Team                team.Abbreviation `json:"team"`
	FourFactorsScore    float64           `json:"four_factors_score"`
	PointsPer100        *float64          `json:"points_per_100,omitempty"`
	PointsAllowedPer100 *float64          `json:"points_allowed_per_100,omitempty"`
	RelativePace        float64           `json:"relative_pace"`
	PaceTier            Tier              `json:"pace_tier"`
	OffenseVsLeague     float64           `json:"offense_vs_league"`
	DefenseVsLeague     float64           `json:"defense_vs_league"`
	ExpectedWinPct      *float64          `json:"expected_win_pct,omitempty"`
	LuckRating          *float64          `json:"luck_rating,omitempty"`
	Availability        *float64          `json:"availability,omitempty"`
}

// PlayerMetrics is the derived view of one canonical player record. Eligible
// is false below the configured minutes threshold; derived fields are still
// computed where defined.
type PlayerMetrics struct {
	Player              string            `json:"player"`
	Team                team.Abbreviation `json:"team"`
	Eligible            bool              `json:"eligible"`
	UsageTier           Tier              `json:"usage_tier"`
	PointsPer36         *float64          `json:"points_per_36,omitempty"`
	ReboundsPer36       *float64          `json:"rebounds_per_36,omitempty"`
	AssistsPer36        *float64          `json:"assists_per_36,omitempty"`
	PointsPerShot       *float64          `json:"points_per_shot,omitempty"`
	TrueShootingAtt     float64           `json:"true_shooting_attempts"`
	AssistTurnoverRatio *float64          `json:"assist_turnover_ratio,omitempty"`
	ImpactEstimate      *float64          `json:"impact_estimate,omitempty"`
	SpacingImpact       float64           `json:"spacing_impact"`
}

// BetCandidate is one priced side of a game with the model's edge and the
// resulting Kelly stake. Stake follows the documented staking formula
// literally and is capped; it is not a verified betting strategy.
type BetCandidate struct {
	GameID             string            `json:"game_id"`
	Team               team.Abbreviation `json:"team"`
	Opponent           team.Abbreviation `json:"opponent"`
	Market             odds.Market       `json:"market"`
	Price              float64           `json:"price"`
	ImpliedProbability float64           `json:"implied_probability"`
	PredictedWinProb   float64           `json:"predicted_win_prob"`
	Edge               float64           `json:"edge"`
	KellyStake         float64           `json:"kelly_stake"`
}
