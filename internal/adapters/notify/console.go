package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polysignal/internal/domain"
)

// detailTop es cuántos resultados reciben desglose completo bajo la tabla.
const detailTop = 3

// Console implementa ports.Notifier imprimiendo el resumen del ciclo como
// tabla y, en modo detail, el desglose completo de los mejores setups.
type Console struct {
	out    io.Writer
	detail bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(detail bool) *Console {
	return &Console{out: os.Stdout, detail: detail}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, detail bool) *Console {
	return &Console{out: w, detail: detail}
}

// Notify imprime los resultados del ciclo: línea de resumen, tabla con el
// top y, si detail está activo, el desglose de los primeros setups.
func (c *Console) Notify(_ context.Context, results []domain.DeepAnalysisResult) error {
	now := time.Now().Format("15:04:05")
	if len(results) == 0 {
		fmt.Fprintf(c.out, "[%s] no new signals\n", now)
		return nil
	}

	yes, no, positive := countSides(results)
	fmt.Fprintf(c.out, "\n[%s] %d signals — YES:%d NO:%d positive:%d\n",
		now, len(results), yes, no, positive)

	c.printTable(results)

	if c.detail {
		top := results
		if len(top) > detailTop {
			top = results[:detailTop]
		}
		for _, r := range top {
			c.RenderDetail(r, nil)
		}
	}
	return nil
}

// printTable imprime el resumen tabular del ciclo.
func (c *Console) printTable(results []domain.DeepAnalysisResult) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Side", "Model", "Price", "Edge%", "Conf", "Kelly%", "Signal", "Setup")

	for i, r := range results {
		setup := "-"
		if r.IsPositiveSetup {
			setup = "+"
		}
		if r.HasConflict() {
			setup = "!"
		}

		table.Append(
			fmt.Sprintf("%d", i+1),
			marketLabel(r.Market),
			r.RecommendedSide,
			fmt.Sprintf("%.3f", r.ModelProbability),
			fmt.Sprintf("%.3f", r.MarketPrice),
			fmt.Sprintf("%.1f", r.EdgePct()),
			fmt.Sprintf("%d", r.Confidence),
			fmt.Sprintf("%.2f", r.KellyPct*100),
			fmt.Sprintf("%d", r.Market.SignalScore),
			setup,
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Model = consensus prob | Edge% = edge sobre el costo de entrada del lado")
	fmt.Fprintln(c.out, "  Kelly% = fracción del bankroll tras confianza | Setup: + positivo, ! conflicto")
}

// RenderDetail imprime el desglose completo de un análisis: consenso,
// sub-modelos, holders, kelly y plan si lo hay.
func (c *Console) RenderDetail(r domain.DeepAnalysisResult, plan *domain.TradePlan) {
	m := r.Market
	slug := m.Slug
	if slug == "" {
		slug = m.ConditionID
	}

	fmt.Fprintf(c.out, "\n--- %s  [%s] [conf %d] ---\n",
		domain.TruncateQuestion(m.Question, m.ConditionID, 70), r.RecommendedSide, r.Confidence)
	fmt.Fprintf(c.out, "  URL: https://polymarket.com/event/%s\n", slug)
	if !m.EndDate.IsZero() {
		fmt.Fprintf(c.out, "  End: %s (%.1fd left)\n",
			m.EndDate.Format("2006-01-02"), m.DaysToClose())
	}

	fmt.Fprintf(c.out, "\n  1. CONSENSUS:\n")
	fmt.Fprintf(c.out, "     model=%.3f  market=%.3f  edge=%+.1fpp (%.1f%% on cost)\n",
		r.ModelProbability, r.MarketPrice, r.Edge*100, r.EdgePct())
	fmt.Fprintf(c.out, "     signal_score=%d  volume24h=$%.0f  liquidity=$%.0f\n",
		m.SignalScore, m.Volume24h, m.Liquidity)
	if w := m.Whale; w != nil {
		fmt.Fprintf(c.out, "     whale flow %.0fh: $%.0f total, %.0f%% YES, tilt %+.2f, smart %.0f%%\n",
			w.WindowHours, w.TotalVolume, w.YesShare()*100, w.Tilt(), m.SmartMoneyRatio*100)
	}
	for _, conflict := range r.Conflicts {
		fmt.Fprintf(c.out, "     CONFLICT [%s]: %s\n", conflict.Kind, conflict.Detail)
	}

	if mc := r.MonteCarlo; mc != nil {
		fmt.Fprintf(c.out, "\n  2. MONTE CARLO (%s, %d runs):\n", mc.Mode, mc.NumSimulations)
		fmt.Fprintf(c.out, "     P(YES)=%.3f  edge=%+.1fpp\n", mc.ProbabilityYes, mc.Edge*100)
		if mc.Mode == "crypto" {
			fmt.Fprintf(c.out, "     asset: %s $%.2f → target $%.2f (%s)\n",
				mc.CoinID, mc.CurrentAssetPrice, mc.Threshold, mc.Direction)
			fmt.Fprintf(c.out, "     final p5/p50/p95: $%.2f / $%.2f / $%.2f\n",
				mc.Pct5, mc.Pct50, mc.Pct95)
			for _, bucket := range mc.Distribution {
				fmt.Fprintf(c.out, "       %-14s %5.1f%%\n", bucket.Label, bucket.Probability*100)
			}
		}
	}

	if b := r.Bayesian; b != nil {
		fmt.Fprintf(c.out, "\n  3. BAYESIAN:\n")
		fmt.Fprintf(c.out, "     prior=%.3f → posterior=%.3f (LR %.2f, Δ%.1fpp)\n",
			b.Prior, b.Posterior, b.CombinedLR, b.UpdateMagnitude*100)
		for _, ev := range b.Evidence {
			fmt.Fprintf(c.out, "     [%s/%s] %s (LR %.2f)\n",
				ev.Category, ev.Strength(), ev.Description, ev.LikelihoodRatio)
		}
	}

	if g := r.Greeks; g != nil {
		fmt.Fprintf(c.out, "\n  4. GREEKS:\n")
		theta := g.Theta
		mark := ""
		if theta.IsOpportunity {
			mark = " → opportunity"
		}
		fmt.Fprintf(c.out, "     theta: expected %+.2fpp/d  actual %+.2fpp/d  anomaly %+.2fpp/d%s\n",
			theta.ExpectedDrift*100, theta.ActualDrift*100, theta.Anomaly*100, mark)
		vega := g.Vega
		if vega.HasData {
			fmt.Fprintf(c.out, "     vega: hist %.2f  recent %.2f  ratio %.2f  regime %s\n",
				vega.HistoricalVol, vega.RecentVol, vega.VolRatio, vega.Regime)
		}
	}

	if h := r.Holders; h != nil && h.HasPositions {
		fmt.Fprintf(c.out, "\n  5. HOLDERS:\n")
		printSideStats(c.out, h.YesStats)
		printSideStats(c.out, h.NoStats)
		fmt.Fprintf(c.out, "     smart score %d → %s (holders %.0f / tilt %.0f / model %.0f)\n",
			h.SmartScore, h.SmartScoreSide,
			h.Breakdown.Holders, h.Breakdown.Tilt, h.Breakdown.Model)
	}

	if k := r.Kelly; k != nil {
		fmt.Fprintf(c.out, "\n  6. KELLY:\n")
		fmt.Fprintf(c.out, "     %s on $%.0f: %.2f%% → $%.2f (potential +$%.2f)\n",
			k.FractionName, k.Bankroll, k.SizePct(), k.RecommendedSize, k.PotentialProfit())
	}

	if plan != nil {
		fmt.Fprintf(c.out, "\n  7. PLAN:\n")
		fmt.Fprintf(c.out, "     side %s  entry %.3f  target %.3f  stop %.3f  r:r %.2f\n",
			plan.Side, plan.Entry, plan.Target, plan.Stop, plan.RiskReward)
		for _, reason := range plan.Reasons {
			fmt.Fprintf(c.out, "     + %s\n", reason)
		}
		for _, warning := range plan.Warnings {
			fmt.Fprintf(c.out, "     ! %s\n", warning)
		}
		if plan.ShouldBet {
			fmt.Fprintf(c.out, "     >>> BET (kelly %.2f%%)\n", r.KellyPct*100)
		} else {
			fmt.Fprintf(c.out, "     >>> SKIP\n")
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(c.out, "\n  fetch errors:\n")
		sources := make([]string, 0, len(r.Errors))
		for source := range r.Errors {
			sources = append(sources, source)
		}
		sort.Strings(sources)
		for _, source := range sources {
			fmt.Fprintf(c.out, "     %s: %s\n", source, r.Errors[source])
		}
	}
	fmt.Fprintln(c.out)
}

// --- helpers ---

func printSideStats(out io.Writer, s domain.SideStats) {
	if s.Count == 0 {
		fmt.Fprintf(out, "     %-4s no holders\n", s.Side+":")
		return
	}
	fmt.Fprintf(out, "     %-4s %d holders, %.0f%% profitable, median pnl $%.0f, >$10k: %d\n",
		s.Side+":", s.Count, s.ProfitablePct, s.MedianPnL, s.Above10kCount)
}

func countSides(results []domain.DeepAnalysisResult) (yes, no, positive int) {
	for _, r := range results {
		switch r.RecommendedSide {
		case domain.SideYes:
			yes++
		case domain.SideNo:
			no++
		}
		if r.IsPositiveSetup {
			positive++
		}
	}
	return
}

func marketLabel(m domain.MarketSnapshot) string {
	return domain.TruncateQuestion(m.Question, m.ConditionID, 38)
}
