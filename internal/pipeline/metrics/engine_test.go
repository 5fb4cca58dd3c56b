package metrics

import (
	"math"
	"testing"

	"github.com/courtline/courtline/internal/domain/analytics"
	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/lineup"
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/playerstats"
	"github.com/courtline/courtline/internal/domain/team"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestFourFactorsScoreKnownValue(t *testing.T) {
	got := FourFactorsScore(0.5, 0.15, 0.25, 0.2)
	if !almostEqual(got, 0.2425) {
		t.Fatalf("FourFactorsScore = %v, want 0.2425", got)
	}
}

func TestPossessionsEstimate(t *testing.T) {
	got := Possessions(85, 10, 14, 25)
	want := 85.0 - 10.0 + 14.0 + 0.44*25.0
	if !almostEqual(got, want) {
		t.Fatalf("Possessions = %v, want %v", got, want)
	}
}

func TestPer100UndefinedAtZeroPossessions(t *testing.T) {
	if got := Per100(100, 0); got != nil {
		t.Fatalf("Per100 at zero possessions = %v, want nil", *got)
	}
	got := Per100(110, 100)
	if got == nil || !almostEqual(*got, 110) {
		t.Fatalf("Per100(110, 100) = %v", got)
	}
}

func TestPer36UndefinedAtZeroMinutes(t *testing.T) {
	if got := Per36(20, 0); got != nil {
		t.Fatalf("Per36 at zero minutes = %v, want nil", *got)
	}
	got := Per36(18, 36)
	if got == nil || !almostEqual(*got, 18) {
		t.Fatalf("Per36(18, 36) = %v", got)
	}
}

func TestRelativePace(t *testing.T) {
	if got := RelativePace(104.94, 99.0); !almostEqual(got, 6.0) {
		t.Fatalf("RelativePace = %v, want 6.0", got)
	}
}

func TestKellyStakeDocumentedExample(t *testing.T) {
	// predicted 0.6 at decimal odds 2.0: edge = 0.1, fraction = -0.8,
	// clamped to zero.
	if got := KellyStake(0.6, 2.0, 1000); got != 0 {
		t.Fatalf("KellyStake = %v, want 0", got)
	}
}

func TestKellyStakeCappedAtFivePercent(t *testing.T) {
	// Overwhelming edge: raw fraction far above the cap.
	got := KellyStake(0.99, 5.0, 1000)
	if !almostEqual(got, 50) {
		t.Fatalf("KellyStake = %v, want 5%% cap of 50", got)
	}
}

func TestKellyStakeNeverNegative(t *testing.T) {
	for _, prob := range []float64{0, 0.1, 0.3, 0.5} {
		if got := KellyStake(prob, 1.8, 500); got < 0 {
			t.Fatalf("KellyStake(%v) = %v, negative", prob, got)
		}
	}
}

func TestPointsPerShotUsesTrueShootingAttempts(t *testing.T) {
	got := PointsPerShot(27.1, 17.5, 5.1)
	want := 27.1 / (17.5 + 0.44*5.1)
	if got == nil || !almostEqual(*got, want) {
		t.Fatalf("PointsPerShot = %v, want %v", got, want)
	}
	if got := PointsPerShot(2, 0, 0); got != nil {
		t.Fatalf("points per shot without attempts = %v, want nil", *got)
	}
}

func TestAssistTurnoverRatioUndefinedAtZeroTurnovers(t *testing.T) {
	if got := AssistTurnoverRatio(7, 0); got != nil {
		t.Fatalf("ratio at zero turnovers = %v, want nil", *got)
	}
}

func TestPythagoreanWinPct(t *testing.T) {
	if got := PythagoreanWinPct(0, 0); got != nil {
		t.Fatalf("expected nil without scoring data")
	}
	even := PythagoreanWinPct(8800, 8800)
	if even == nil || !almostEqual(*even, 0.5) {
		t.Fatalf("even scoring = %v, want 0.5", even)
	}
	better := PythagoreanWinPct(9100, 8700)
	if better == nil || *better <= 0.5 {
		t.Fatalf("outscoring team win pct = %v, want > 0.5", better)
	}
}

func TestWinProbabilityProperties(t *testing.T) {
	strong := team.Record{Team: "BOS", NetRating: 8, Pace: 99, WinPct: 0.7}
	weak := team.Record{Team: "WAS", NetRating: -8, Pace: 99, WinPct: 0.3}

	pStrongHome := WinProbability(strong, weak)
	pWeakHome := WinProbability(weak, strong)
	if pStrongHome <= 0.5 {
		t.Fatalf("strong home team prob = %v, want > 0.5", pStrongHome)
	}
	if pStrongHome <= pWeakHome {
		t.Fatalf("home ordering broken: %v <= %v", pStrongHome, pWeakHome)
	}
	// Deterministic: identical inputs, identical output.
	if pStrongHome != WinProbability(strong, weak) {
		t.Fatal("WinProbability is not deterministic")
	}

	even := WinProbability(
		team.Record{Team: "A", NetRating: 0},
		team.Record{Team: "B", NetRating: 0},
	)
	if even <= 0.5 {
		t.Fatalf("home court advantage missing: %v", even)
	}
}

func TestAssignTiersQuantiles(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tiers := AssignTiers(values)
	if tiers[0] != analytics.TierVeryLow {
		t.Fatalf("lowest value tier = %q", tiers[0])
	}
	if tiers[9] != analytics.TierVeryHigh {
		t.Fatalf("highest value tier = %q", tiers[9])
	}
	// Monotonic: tier rank never decreases as values increase.
	rank := func(tier analytics.Tier) int {
		for i, t := range analytics.Tiers {
			if t == tier {
				return i
			}
		}
		return -1
	}
	for i := 1; i < len(tiers); i++ {
		if rank(tiers[i]) < rank(tiers[i-1]) {
			t.Fatalf("tiers not monotonic at %d: %v", i, tiers)
		}
	}
}

func TestAssignTiersEmpty(t *testing.T) {
	if tiers := AssignTiers(nil); len(tiers) != 0 {
		t.Fatalf("tiers for empty input = %v", tiers)
	}
}

func TestTeamMetricsLeagueRelativeBaselines(t *testing.T) {
	teams := []team.Record{
		{Team: "BOS", Pace: 96, OffensiveRating: 118, DefensiveRating: 108, WinPct: 0.7, Points: 9100, PointsAllowed: 8700, Possessions: 7900, EFGPct: 0.5, TOVPct: 0.15, ORebPct: 0.25, FTRate: 0.2},
		{Team: "MIA", Pace: 100, OffensiveRating: 112, DefensiveRating: 112, WinPct: 0.5},
		{Team: "WAS", Pace: 104, OffensiveRating: 106, DefensiveRating: 116, WinPct: 0.3},
	}
	engine := NewEngine(Config{Bankroll: 1000, MinMinutes: 15})

	out := engine.TeamMetrics(teams, []lineup.Entry{
		{GameID: "g1", Team: "BOS", Player: "A", Status: lineup.StatusActive, PlayProb: 1},
		{GameID: "g1", Team: "BOS", Player: "B", Status: lineup.StatusOut, PlayProb: 0},
	})

	if len(out) != 3 {
		t.Fatalf("metrics rows = %d", len(out))
	}
	bos := out[0]
	if !almostEqual(bos.FourFactorsScore, 0.2425) {
		t.Fatalf("FourFactorsScore = %v", bos.FourFactorsScore)
	}
	if !almostEqual(bos.RelativePace, (96.0-100.0)/100.0*100) {
		t.Fatalf("RelativePace = %v", bos.RelativePace)
	}
	if !almostEqual(bos.OffenseVsLeague, 118-112) {
		t.Fatalf("OffenseVsLeague = %v", bos.OffenseVsLeague)
	}
	if !almostEqual(bos.DefenseVsLeague, 112-108) {
		t.Fatalf("DefenseVsLeague = %v", bos.DefenseVsLeague)
	}
	if bos.Availability == nil || !almostEqual(*bos.Availability, 0.5) {
		t.Fatalf("Availability = %v", bos.Availability)
	}
	if bos.ExpectedWinPct == nil || bos.LuckRating == nil {
		t.Fatal("expected win pct and luck rating should be defined")
	}
	if out[1].Availability != nil {
		t.Fatal("team without lineup entries should have nil availability")
	}
	if out[1].PointsPer100 != nil {
		t.Fatal("per-100 without possessions should be nil")
	}
}

func TestPlayerMetricsEligibilityFloor(t *testing.T) {
	players := []playerstats.Record{
		{Name: "Starter", Team: "BOS", MinutesPerGame: 34, Points: 25, UsagePct: 0.30, FieldGoalsAttempted: 18, Turnovers: 2, Assists: 5},
		{Name: "Rotation", Team: "BOS", MinutesPerGame: 22, Points: 11, UsagePct: 0.18, FieldGoalsAttempted: 9, Turnovers: 1, Assists: 2},
		{Name: "Bench", Team: "BOS", MinutesPerGame: 4, Points: 1, UsagePct: 0.10, FieldGoalsAttempted: 1},
	}
	engine := NewEngine(Config{Bankroll: 1000, MinMinutes: 15})

	out := engine.PlayerMetrics(players)

	if !out[0].Eligible || !out[1].Eligible || out[2].Eligible {
		t.Fatalf("eligibility = %v %v %v", out[0].Eligible, out[1].Eligible, out[2].Eligible)
	}
	if out[2].UsageTier != "" {
		t.Fatalf("ineligible player tiered: %q", out[2].UsageTier)
	}
	if out[0].UsageTier == "" {
		t.Fatal("eligible player untiered")
	}
	if out[0].PointsPer36 == nil {
		t.Fatal("per-36 should be defined with minutes")
	}
	if out[1].AssistTurnoverRatio == nil || !almostEqual(*out[1].AssistTurnoverRatio, 2) {
		t.Fatalf("ast/tov = %v", out[1].AssistTurnoverRatio)
	}
}

func TestPlayerMetricsImpactIsSnapshotShare(t *testing.T) {
	players := []playerstats.Record{
		{Name: "Star", Team: "DEN", MinutesPerGame: 35, Points: 27, Rebounds: 12, Assists: 9, Steals: 1.2, Blocks: 0.8, Turnovers: 3, FieldGoalsAttempted: 17, FreeThrowsAttempted: 6},
		{Name: "Role", Team: "DEN", MinutesPerGame: 24, Points: 10, Rebounds: 4, Assists: 2, Steals: 0.7, Blocks: 0.3, Turnovers: 1, FieldGoalsAttempted: 8, FreeThrowsAttempted: 2},
	}
	engine := NewEngine(Config{Bankroll: 1000, MinMinutes: 10})

	out := engine.PlayerMetrics(players)

	if out[0].ImpactEstimate == nil || out[1].ImpactEstimate == nil {
		t.Fatal("impact estimates should be defined")
	}
	if !almostEqual(*out[0].ImpactEstimate+*out[1].ImpactEstimate, 1.0) {
		t.Fatalf("impact shares sum to %v, want 1",
			*out[0].ImpactEstimate+*out[1].ImpactEstimate)
	}
	if *out[0].ImpactEstimate <= *out[1].ImpactEstimate {
		t.Fatalf("impact ordering broken: %v <= %v",
			*out[0].ImpactEstimate, *out[1].ImpactEstimate)
	}
}

func TestBetCandidatesMoneylineOnly(t *testing.T) {
	home := team.Record{Team: "DEN", NetRating: 6, Pace: 99}
	away := team.Record{Team: "POR", NetRating: -4, Pace: 99}
	games := []game.MergedRecord{
		{
			GameID: "g1", Home: home, Away: away,
			Quotes: []odds.Quote{
				{GameID: "g1", HomeTeam: "DEN", AwayTeam: "POR", Market: odds.MarketMoneyline, Price: 1.5},
				{GameID: "g1", HomeTeam: "DEN", AwayTeam: "POR", Market: odds.MarketTotal, Price: 1.9},
			},
		},
		{GameID: "g2", Home: away, Away: home, Quotes: []odds.Quote{
			{GameID: "g2", HomeTeam: "POR", AwayTeam: "DEN", Market: odds.MarketSpread, Price: 1.9},
		}},
	}
	engine := NewEngine(Config{Bankroll: 1000})

	out := engine.BetCandidates(games)

	if len(out) != 1 {
		t.Fatalf("candidates = %d, want 1", len(out))
	}
	candidate := out[0]
	if candidate.Team != "DEN" || candidate.Opponent != "POR" {
		t.Fatalf("candidate sides = %s vs %s", candidate.Team, candidate.Opponent)
	}
	if !almostEqual(candidate.ImpliedProbability, 1/1.5) {
		t.Fatalf("implied = %v", candidate.ImpliedProbability)
	}
	if !almostEqual(candidate.Edge, candidate.PredictedWinProb-candidate.ImpliedProbability) {
		t.Fatalf("edge inconsistent: %+v", candidate)
	}
	if candidate.KellyStake < 0 || candidate.KellyStake > MaxStakePct*1000 {
		t.Fatalf("stake out of bounds: %v", candidate.KellyStake)
	}
}
