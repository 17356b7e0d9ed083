package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"social-insights-service/internal/domain"
)

// Report is everything analyze computes for a record file.
type Report struct {
	Aggregates domain.Aggregates `json:"summary"`
	Insights   []domain.Insight  `json:"insights"`
	Forecast   domain.Forecast   `json:"forecast"`
}

type analyzeOptions struct {
	asJSON        bool
	noMultipliers bool
	jitter        string
	timezone      string
	timeRange     string
	platform      string
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Score a YAML or JSON export of post records",
		Long: `Reads a list of post records, either a top-level list or a mapping with
a "posts" key, and prints totals, per-platform breakdown, insights and the
weighted score forecast. JSON is accepted since it is valid YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			posts, err := LoadRecords(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			report, err := Analyze(posts, opts, time.Now())
			if err != nil {
				return err
			}

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), RenderReport(report))

			return err
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.noMultipliers, "no-multipliers", false, "score without platform multipliers")
	cmd.Flags().StringVar(&opts.jitter, "jitter", string(domain.JitterNone), "tie-breaking jitter: none or hashed")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "UTC", "IANA timezone for peak hours")
	cmd.Flags().StringVar(&opts.timeRange, "range", string(domain.RangeAll), "time range: 7days, 30days or all")
	cmd.Flags().StringVar(&opts.platform, "platform", "", "only score posts from this platform")

	return cmd
}

// LoadRecords decodes post records from r.
func LoadRecords(r io.Reader) ([]domain.Post, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Post{}, nil
		}
		return nil, err
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["posts"].([]any)
		if !ok {
			return nil, errors.New(`expected a list of records or a "posts" list`)
		}
		items = list
	case nil:
		return []domain.Post{}, nil
	default:
		return nil, errors.New(`expected a list of records or a "posts" list`)
	}

	posts := make([]domain.Post, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is not a mapping", i)
		}
		posts = append(posts, domain.PostFromRecord(rec))
	}

	return posts, nil
}

// Analyze scores the posts with the options, after filtering at now.
func Analyze(posts []domain.Post, opts analyzeOptions, now time.Time) (*Report, error) {
	jitter, err := domain.ParseJitterMode(opts.jitter)
	if err != nil {
		return nil, err
	}
	tr, err := domain.ParseTimeRange(opts.timeRange)
	if err != nil {
		return nil, err
	}
	loc := time.UTC
	if opts.timezone != "" {
		if loc, err = time.LoadLocation(opts.timezone); err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", opts.timezone, err)
		}
	}

	posts = domain.PostFilter{Range: tr, Platform: opts.platform, Now: now}.Apply(posts)
	agg := domain.BuildAggregates(posts, domain.AggregateOptions{
		Policy:   domain.ScoringPolicy{Multipliers: !opts.noMultipliers, Jitter: jitter},
		Location: loc,
	})

	return &Report{
		Aggregates: agg,
		Insights:   domain.GenerateInsights(agg),
		Forecast:   domain.BuildForecast(posts),
	}, nil
}
