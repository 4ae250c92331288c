// Package reporter formats detected arbitrage opportunities for output.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

// OutputFormat specifies the output format for reports.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// Reporter writes opportunity reports in a chosen format and keeps
// summary statistics across runs.
type Reporter struct {
	output  io.Writer
	format  OutputFormat
	verbose bool

	mu             sync.Mutex
	runs           int
	reported       int
	bestMultiplier float64
}

// New creates a reporter. A nil output writes to stdout.
func New(output io.Writer, format OutputFormat, verbose bool) *Reporter {
	if output == nil {
		output = os.Stdout
	}
	return &Reporter{output: output, format: format, verbose: verbose}
}

// Report writes one detection run's opportunities. An empty slice writes
// an explicit no-arbitrage notice (text mode, verbose only).
func (r *Reporter) Report(opportunities []*types.Opportunity) error {
	r.mu.Lock()
	r.runs++
	r.reported += len(opportunities)
	for _, opp := range opportunities {
		if opp.Multiplier > r.bestMultiplier {
			r.bestMultiplier = opp.Multiplier
		}
	}
	r.mu.Unlock()

	switch r.format {
	case FormatJSON:
		return r.reportJSON(opportunities)
	case FormatCSV:
		return r.reportCSV(opportunities)
	default:
		return r.reportText(opportunities)
	}
}

func (r *Reporter) reportText(opportunities []*types.Opportunity) error {
	if len(opportunities) == 0 {
		if r.verbose {
			fmt.Fprintf(r.output, "[%s] no arbitrage\n", time.Now().Format(time.RFC3339))
		}
		return nil
	}

	fmt.Fprintln(r.output, strings.Repeat("=", 72))
	fmt.Fprintf(r.output, "ARBITRAGE OPPORTUNITIES: %d (%s)\n",
		len(opportunities), time.Now().Format(time.RFC3339))
	fmt.Fprintln(r.output, strings.Repeat("=", 72))

	for i, opp := range opportunities {
		fmt.Fprintf(r.output, "\n#%d  %s\n", i+1, strings.Join(opp.Path, " -> "))
		fmt.Fprintf(r.output, "    multiplier: %.6f  (+%d bps over %d hops)\n",
			opp.Multiplier, opp.ProfitBps, opp.Hops())
		if r.verbose {
			for _, leg := range opp.Legs {
				line := fmt.Sprintf("    %s -> %s @ %.8f", leg.From, leg.To, leg.Rate)
				if leg.Fee > 0 {
					line += fmt.Sprintf(" (fee %.4f)", leg.Fee)
				}
				fmt.Fprintln(r.output, line)
			}
			fmt.Fprintf(r.output, "    id: %s\n", opp.ID)
		}
	}
	fmt.Fprintln(r.output)
	return nil
}

func (r *Reporter) reportJSON(opportunities []*types.Opportunity) error {
	if opportunities == nil {
		opportunities = []*types.Opportunity{}
	}
	enc := json.NewEncoder(r.output)
	enc.SetIndent("", "  ")
	return enc.Encode(opportunities)
}

func (r *Reporter) reportCSV(opportunities []*types.Opportunity) error {
	w := csv.NewWriter(r.output)
	defer w.Flush()

	if err := w.Write([]string{"id", "path", "multiplier", "profit_bps", "hops", "detected_at"}); err != nil {
		return err
	}
	for _, opp := range opportunities {
		record := []string{
			opp.ID,
			strings.Join(opp.Path, "->"),
			strconv.FormatFloat(opp.Multiplier, 'f', 8, 64),
			strconv.Itoa(opp.ProfitBps),
			strconv.Itoa(opp.Hops()),
			opp.DetectedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// PrintStats writes a summary of everything reported so far.
func (r *Reporter) PrintStats() {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.output, strings.Repeat("-", 72))
	fmt.Fprintf(r.output, "runs: %d  opportunities: %d", r.runs, r.reported)
	if r.reported > 0 {
		fmt.Fprintf(r.output, "  best multiplier: %.6f", r.bestMultiplier)
	}
	fmt.Fprintln(r.output)
}
