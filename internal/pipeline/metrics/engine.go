package metrics

import (
	"math"

	"github.com/courtline/courtline/internal/domain/analytics"
	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/lineup"
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/playerstats"
	"github.com/courtline/courtline/internal/domain/team"
)

const (
	// FreeThrowPossessionWeight converts free-throw attempts into possession
	// equivalents in the standard possession estimate.
	FreeThrowPossessionWeight = 0.44

	// PythagoreanExponent is the NBA exponent for expected win percentage.
	PythagoreanExponent = 16.5

	// MaxStakePct caps every Kelly stake at 5% of bankroll. A fixed ceiling,
	// not a tunable.
	MaxStakePct = 0.05

	// homeCourtMargin and marginStddev parameterize the analytic win
	// probability model: expected margin is the net-rating gap plus home
	// court, mapped through a normal CDF.
	homeCourtMargin = 3.0
	marginStddev    = 12.0
)

// Possessions estimates possessions from box-score counting stats.
func Possessions(fga, oreb, tov, fta float64) float64 {
	return fga - oreb + tov + FreeThrowPossessionWeight*fta
}

// FourFactorsScore is the weighted Dean Oliver decomposition. All inputs are
// fractions in [0,1].
func FourFactorsScore(efgPct, tovPct, orebPct, ftRate float64) float64 {
	return 0.4*efgPct - 0.25*tovPct + 0.2*orebPct + 0.15*ftRate
}

// Per100 scales a counting stat to a 100-possession basis. Undefined at zero
// possessions: nil, never infinity and never a silent zero.
func Per100(stat, possessions float64) *float64 {
	if possessions == 0 {
		return nil
	}
	v := stat / possessions * 100
	return &v
}

// Per36 scales a per-game stat to a 36-minute basis. Undefined at zero
// minutes.
func Per36(stat, minutes float64) *float64 {
	if minutes == 0 {
		return nil
	}
	v := stat / minutes * 36
	return &v
}

// RelativePace is the percentage deviation of a team's pace from the league
// mean of the current snapshot.
func RelativePace(pace, leagueMean float64) float64 {
	if leagueMean == 0 {
		return 0
	}
	return (pace - leagueMean) / leagueMean * 100
}

// TrueShootingAttempts combines field-goal and free-throw attempts into one
// scoring-attempt count.
func TrueShootingAttempts(fga, fta float64) float64 {
	return fga + FreeThrowPossessionWeight*fta
}

// PointsPerShot is points per true-shooting attempt, so free-throw trips
// count against efficiency. Undefined at zero attempts.
func PointsPerShot(points, fga, fta float64) *float64 {
	tsa := TrueShootingAttempts(fga, fta)
	if tsa == 0 {
		return nil
	}
	v := points / tsa
	return &v
}

// AssistTurnoverRatio is undefined at zero turnovers rather than infinite.
func AssistTurnoverRatio(assists, turnovers float64) *float64 {
	if turnovers == 0 {
		return nil
	}
	v := assists / turnovers
	return &v
}

// PythagoreanWinPct is the expected win percentage from points scored and
// allowed. Undefined when no scoring data is present.
func PythagoreanWinPct(points, pointsAllowed float64) *float64 {
	if points == 0 && pointsAllowed == 0 {
		return nil
	}
	pf := math.Pow(points, PythagoreanExponent)
	pa := math.Pow(pointsAllowed, PythagoreanExponent)
	if pf+pa == 0 {
		return nil
	}
	v := pf / (pf + pa)
	return &v
}

// Edge is the model's predicted win probability minus the bookmaker's
// implied probability.
func Edge(predictedProb, decimalOdds float64) float64 {
	return predictedProb - 1.0/decimalOdds
}

// KellyStake sizes a stake from the documented staking formula: with
// b = decimalOdds-1 and edge = predicted - implied,
// fraction = (b*edge - (1-edge)) / b, clamped to [0, MaxStakePct*bankroll].
// This is the source formula as documented, including its sign convention;
// it is not a verified-optimal betting strategy.
func KellyStake(predictedProb, decimalOdds, bankroll float64) float64 {
	b := decimalOdds - 1
	if b <= 0 {
		return 0
	}
	edge := Edge(predictedProb, decimalOdds)
	fraction := (b*edge - (1 - edge)) / b
	stake := fraction * bankroll
	if stake < 0 {
		return 0
	}
	if limit := MaxStakePct * bankroll; stake > limit {
		return limit
	}
	return stake
}

// WinProbability maps the expected margin between two teams through a normal
// CDF. Deterministic: the same inputs always produce the same probability.
func WinProbability(home, away team.Record) float64 {
	margin := (home.NetRating - away.NetRating) + homeCourtMargin
	return normalCDF(margin / marginStddev)
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// Config carries the engine's two knobs. Bankroll feeds stake sizing;
// MinMinutes is the eligibility floor for player tiering.
type Config struct {
	Bankroll   float64
	MinMinutes float64
}

// Engine derives the analytics views from merged, cleaned records. All
// methods are pure: same snapshot in, same metrics out.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// TeamMetrics computes the efficiency and pace view for every team in the
// snapshot. League baselines are recomputed from this snapshot, never cached
// across runs.
func (e *Engine) TeamMetrics(teams []team.Record, lineups []lineup.Entry) []analytics.TeamMetrics {
	if len(teams) == 0 {
		return nil
	}

	var paceSum, offSum, defSum float64
	paces := make([]float64, len(teams))
	for i, record := range teams {
		paceSum += record.Pace
		offSum += record.OffensiveRating
		defSum += record.DefensiveRating
		paces[i] = record.Pace
	}
	n := float64(len(teams))
	paceMean, offMean, defMean := paceSum/n, offSum/n, defSum/n
	paceTiers := AssignTiers(paces)

	probsByTeam := make(map[team.Abbreviation][]float64)
	for _, entry := range lineups {
		probsByTeam[entry.Team] = append(probsByTeam[entry.Team], entry.PlayProb)
	}

	out := make([]analytics.TeamMetrics, 0, len(teams))
	for i, record := range teams {
		m := analytics.TeamMetrics{
			Team:                record.Team,
			FourFactorsScore:    FourFactorsScore(record.EFGPct, record.TOVPct, record.ORebPct, record.FTRate),
			PointsPer100:        Per100(record.Points, record.Possessions),
			PointsAllowedPer100: Per100(record.PointsAllowed, record.Possessions),
			RelativePace:        RelativePace(record.Pace, paceMean),
			PaceTier:            paceTiers[i],
			OffenseVsLeague:     record.OffensiveRating - offMean,
			DefenseVsLeague:     defMean - record.DefensiveRating,
			ExpectedWinPct:      PythagoreanWinPct(record.Points, record.PointsAllowed),
		}
		if m.ExpectedWinPct != nil {
			luck := record.WinPct - *m.ExpectedWinPct
			m.LuckRating = &luck
		}
		if probs := probsByTeam[record.Team]; len(probs) > 0 {
			var sum float64
			for _, p := range probs {
				sum += p
			}
			availability := sum / float64(len(probs))
			m.Availability = &availability
		}
		out = append(out, m)
	}
	return out
}

// PlayerMetrics computes the per-player derived view. Usage tiers are
// quantile buckets over this snapshot's eligible players, so boundaries move
// between runs; below the minutes floor a player is ineligible and left
// untiered.
func (e *Engine) PlayerMetrics(players []playerstats.Record) []analytics.PlayerMetrics {
	if len(players) == 0 {
		return nil
	}

	eligible := make([]int, 0, len(players))
	usages := make([]float64, 0, len(players))
	var impactTotal float64
	for i, record := range players {
		if record.MinutesPerGame >= e.cfg.MinMinutes {
			eligible = append(eligible, i)
			usages = append(usages, record.UsagePct)
		}
		impactTotal += impactContribution(record)
	}
	tiers := AssignTiers(usages)
	tierByIndex := make(map[int]analytics.Tier, len(eligible))
	for j, i := range eligible {
		tierByIndex[i] = tiers[j]
	}

	out := make([]analytics.PlayerMetrics, 0, len(players))
	for i, record := range players {
		m := analytics.PlayerMetrics{
			Player:              record.Name,
			Team:                record.Team,
			Eligible:            record.MinutesPerGame >= e.cfg.MinMinutes,
			PointsPer36:         Per36(record.Points, record.MinutesPerGame),
			ReboundsPer36:       Per36(record.Rebounds, record.MinutesPerGame),
			AssistsPer36:        Per36(record.Assists, record.MinutesPerGame),
			PointsPerShot:       PointsPerShot(record.Points, record.FieldGoalsAttempted, record.FreeThrowsAttempted),
			TrueShootingAtt:     TrueShootingAttempts(record.FieldGoalsAttempted, record.FreeThrowsAttempted),
			AssistTurnoverRatio: AssistTurnoverRatio(record.Assists, record.Turnovers),
			SpacingImpact:       record.ThreePtAttempted * record.ThreePtPct,
		}
		if tier, ok := tierByIndex[i]; ok {
			m.UsageTier = tier
		}
		if impactTotal > 0 {
			impact := impactContribution(record) / impactTotal
			m.ImpactEstimate = &impact
		}
		out = append(out, m)
	}
	return out
}

// impactContribution is one player's share mass for the impact estimate:
// positive box-score events net of the attempts and giveaways spent on them.
// A player's estimate is their contribution over the snapshot total, so the
// shares of all players in a run sum to one.
func impactContribution(r playerstats.Record) float64 {
	return r.Points + r.Rebounds + r.Assists + r.Steals + r.Blocks -
		r.FieldGoalsAttempted - r.FreeThrowsAttempted - r.Turnovers
}

// BetCandidates prices the home side of every moneyline quote against the
// analytic win model. Quotes for other markets carry no side-win semantics
// and are skipped.
func (e *Engine) BetCandidates(games []game.MergedRecord) []analytics.BetCandidate {
	out := make([]analytics.BetCandidate, 0, len(games))
	for _, g := range games {
		quote, ok := g.QuoteForMarket(odds.MarketMoneyline)
		if !ok {
			continue
		}
		predicted := WinProbability(g.Home, g.Away)
		out = append(out, analytics.BetCandidate{
			GameID:             g.GameID,
			Team:               g.Home.Team,
			Opponent:           g.Away.Team,
			Market:             quote.Market,
			Price:              quote.Price,
			ImpliedProbability: quote.ImpliedProbability(),
			PredictedWinProb:   predicted,
			Edge:               Edge(predicted, quote.Price),
			KellyStake:         KellyStake(predicted, quote.Price, e.cfg.Bankroll),
		})
	}
	return out
}
