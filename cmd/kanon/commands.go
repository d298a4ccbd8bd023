package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/kanon"
	"github.com/viant/kanon/config"
	"github.com/viant/kanon/dataset"
	"github.com/viant/kanon/engine"
	"github.com/viant/kanon/store"
	"go.uber.org/zap"
)

type flags struct {
	config   string
	database string
	table    string
	idColumn string
	output   string
	plan     string
	kTarget  int
	seed     uint64
}

// session is the state shared by a single command run.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
}

func (s *session) close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = s.logger.Sync()
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "kanon",
		Short:         "k-anonymize SQLite tables by merging small equivalence classes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", "kanon.yaml", "YAML configuration file")
	root.PersistentFlags().StringVar(&f.database, "db", "", "SQLite database (overrides config)")
	root.PersistentFlags().StringVar(&f.table, "table", "", "input table (overrides config)")
	root.PersistentFlags().StringVar(&f.idColumn, "id-column", "", "row id column (overrides config)")
	root.PersistentFlags().StringVar(&f.plan, "plan", "", "saved plan name (overrides config)")
	root.PersistentFlags().IntVarP(&f.kTarget, "k-target", "k", 0, "anonymity target (overrides config)")
	root.PersistentFlags().Uint64Var(&f.seed, "seed", 0, "random seed (overrides config)")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a merge plan on the input table and save it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, f)
			if err != nil {
				return err
			}
			defer s.close()
			return runFit(cmd.Context(), s)
		},
	}
	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a saved plan to the input table and write the output table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, f)
			if err != nil {
				return err
			}
			defer s.close()
			return runApply(cmd.Context(), s)
		},
	}
	anonymizeCmd := &cobra.Command{
		Use:   "anonymize",
		Short: "Fit and apply in one step without saving the plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, f)
			if err != nil {
				return err
			}
			defer s.close()
			return runAnonymize(cmd.Context(), s)
		},
	}
	plansCmd := &cobra.Command{
		Use:   "plans",
		Short: "List saved plans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, f)
			if err != nil {
				return err
			}
			defer s.close()
			return runPlans(cmd, s)
		},
	}
	for _, cmd := range []*cobra.Command{applyCmd, anonymizeCmd} {
		cmd.Flags().StringVarP(&f.output, "out", "o", "", "output table (overrides config)")
	}
	root.AddCommand(fitCmd, applyCmd, anonymizeCmd, plansCmd)
	return root
}

// open loads the configuration, applies flag overrides and opens the
// database.
func open(cmd *cobra.Command, f *flags) (*session, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, f, cfg)
	if cmd.Name() != "plans" {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	logger, err := cfg.Log.Logger()
	if err != nil {
		return nil, err
	}
	db, err := engine.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Database, err)
	}
	return &session{cfg: cfg, logger: logger, db: db}, nil
}

func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("db") {
		cfg.Database = f.database
	}
	if changed("table") {
		cfg.Table = f.table
	}
	if changed("id-column") {
		cfg.IDColumn = f.idColumn
	}
	if changed("plan") {
		cfg.Plan = f.plan
	}
	if changed("out") {
		cfg.Output = f.output
	}
	if changed("k-target") {
		cfg.Anonymize.KTarget = f.kTarget
	}
	if changed("seed") {
		cfg.Anonymize.Seed = f.seed
	}
}

func runFit(ctx context.Context, s *session) error {
	anonymizer, err := kanon.New(s.cfg.Anonymize, kanon.WithLogger(s.logger))
	if err != nil {
		return err
	}
	ds, err := store.LoadTable(ctx, s.db, s.cfg.Table, s.cfg.IDColumn)
	if err != nil {
		return err
	}
	plan, err := anonymizer.Fit(ds)
	if err != nil {
		return err
	}
	if err := store.SavePlan(ctx, s.db, s.cfg.Plan, plan); err != nil {
		return err
	}
	s.logger.Info("saved plan", zap.String("name", s.cfg.Plan), zap.String("id", plan.ID()))
	return nil
}

func runApply(ctx context.Context, s *session) error {
	plan, err := store.LoadPlan(ctx, s.db, s.cfg.Plan)
	if err != nil {
		return err
	}
	anonymizer, err := kanon.New(plan.Config(), kanon.WithLogger(s.logger))
	if err != nil {
		return err
	}
	ds, err := store.LoadTable(ctx, s.db, s.cfg.Table, s.cfg.IDColumn)
	if err != nil {
		return err
	}
	out, err := anonymizer.Transform(ds, plan)
	if err != nil {
		return err
	}
	return writeOutput(ctx, s, out)
}

func runAnonymize(ctx context.Context, s *session) error {
	anonymizer, err := kanon.New(s.cfg.Anonymize, kanon.WithLogger(s.logger))
	if err != nil {
		return err
	}
	ds, err := store.LoadTable(ctx, s.db, s.cfg.Table, s.cfg.IDColumn)
	if err != nil {
		return err
	}
	out, _, err := anonymizer.FitTransform(ds)
	if err != nil {
		return err
	}
	return writeOutput(ctx, s, out)
}

func runPlans(cmd *cobra.Command, s *session) error {
	infos, err := store.ListPlans(cmd.Context(), s.db)
	if err != nil {
		return err
	}
	for _, info := range infos {
		cmd.Printf("%s\t%s\tk=%d\tclasses=%d\tgroups=%d\tunresolved=%d\t%s\n",
			info.Name, info.ID, info.KTarget, info.Classes, info.Groups, info.Unresolved, info.Created.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

func writeOutput(ctx context.Context, s *session, out *dataset.Dataset) error {
	table := outputTable(s.cfg)
	if err := store.WriteTable(ctx, s.db, table, out); err != nil {
		return err
	}
	s.logger.Info("wrote output", zap.String("table", table), zap.Int("rows", out.Len()))
	return nil
}

func outputTable(cfg *config.Config) string {
	if cfg.Output != "" {
		return cfg.Output
	}
	return cfg.Table + "_anon"
}
