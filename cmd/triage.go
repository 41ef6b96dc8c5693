// -- cmd/triage.go --
package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/triage-cli/api/schemas"
	"github.com/xkilldash9x/triage-cli/internal/analysis"
	"github.com/xkilldash9x/triage-cli/internal/config"
	"github.com/xkilldash9x/triage-cli/internal/hypothesis"
	"github.com/xkilldash9x/triage-cli/internal/observability"
	"github.com/xkilldash9x/triage-cli/internal/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newTriageCmd creates and configures the `triage` command.
func newTriageCmd() *cobra.Command {
	var (
		reportPath string
		files      []string
		sessionID  string
		jsonOut    bool
	)

	triageCmd := &cobra.Command{
		Use:   "triage",
		Short: "Generates ranked root-cause hypotheses for a bug report",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Flag overrides follow the usual viper precedence.
			if err := viper.BindPFlag("engine.min_confidence", cmd.Flags().Lookup("min-confidence")); err != nil {
				return err
			}
			return viper.BindPFlag("engine.max_hypotheses", cmd.Flags().Lookup("max-hypotheses"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			issue, err := loadIssueReport(reportPath)
			if err != nil {
				return err
			}

			targets := files
			if len(targets) == 0 {
				targets = issue.SuspectedFiles
			}

			analyzer := analysis.NewAnalyzer(cfg.Analysis.Root, logger)
			analysisCtx := hypothesis.BuildCodeAnalysisContext(ctx, targets, analyzer, analyzer, logger)

			engine := hypothesis.NewEngine(logger, hypothesis.Options{
				MinConfidence: cfg.Engine.MinConfidence,
				MaxHypotheses: cfg.Engine.MaxHypotheses,
			})

			if sessionID == "" {
				sessionID = uuid.New().String()
			}

			var hyps []schemas.Hypothesis
			if cfg.Database.URL != "" {
				pool, err := pgxpool.New(ctx, cfg.Database.URL)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer pool.Close()

				store, err := session.NewPostgresStore(ctx, pool, logger)
				if err != nil {
					return err
				}
				if err := store.EnsureSchema(ctx); err != nil {
					return err
				}
				hyps, err = engine.GenerateAndStore(ctx, sessionID, store, issue, analysisCtx)
				if err != nil {
					return err
				}
				logger.Info("Hypotheses persisted.", zap.String("session_id", sessionID))
			} else {
				hyps = engine.Generate(issue, analysisCtx)
			}

			return printHypotheses(cmd, hyps, jsonOut)
		},
	}

	triageCmd.Flags().StringVarP(&reportPath, "report", "r", "", "path to the JSON bug report (required)")
	triageCmd.Flags().StringSliceVarP(&files, "files", "f", nil, "source files to analyze (defaults to the report's suspected files)")
	triageCmd.Flags().StringVarP(&sessionID, "session", "s", "", "session ID for persistence (generated when omitted)")
	triageCmd.Flags().BoolVar(&jsonOut, "json", false, "emit hypotheses as JSON")
	triageCmd.Flags().Float64("min-confidence", hypothesis.DefaultMinConfidence, "minimum confidence for returned hypotheses")
	triageCmd.Flags().Int("max-hypotheses", hypothesis.DefaultMaxHypotheses, "maximum number of returned hypotheses")
	_ = triageCmd.MarkFlagRequired("report")

	return triageCmd
}

// loadIssueReport reads and decodes the IssueContext JSON file.
func loadIssueReport(path string) (schemas.IssueContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schemas.IssueContext{}, fmt.Errorf("failed to read report file: %w", err)
	}
	var issue schemas.IssueContext
	if err := json.Unmarshal(data, &issue); err != nil {
		return schemas.IssueContext{}, fmt.Errorf("failed to parse report file %s: %w", path, err)
	}
	return issue, nil
}

// printHypotheses renders the result list, either as JSON or as a short
// human-readable ranking.
func printHypotheses(cmd *cobra.Command, hyps []schemas.Hypothesis, jsonOut bool) error {
	if jsonOut {
		out, err := json.MarshalIndent(hyps, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode hypotheses: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	if len(hyps) == 0 {
		cmd.Println("No hypotheses generated.")
		return nil
	}
	for i, h := range hyps {
		cmd.Printf("%d. [%s] (confidence %.2f) %s\n", i+1, h.FailureMode, h.Confidence, h.Description)
		for _, f := range h.AffectedFiles {
			cmd.Printf("   %s", f.Path)
			for _, r := range f.LineRanges {
				cmd.Printf(" %d-%d", r.Start, r.End)
			}
			cmd.Println()
		}
	}
	return nil
}
