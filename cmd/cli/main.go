package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gostatcore/adapters/excel"
	"gostatcore/app"
	"gostatcore/domain/analysis"
	"gostatcore/internal/config"
	"gostatcore/internal/container"
	"gostatcore/internal/migration"
	"gostatcore/internal/render"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every analysis command
type globalFlags struct {
	configPath string
	dataPath   string
	vars       []string
	format     string
	xlsxPath   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "gostat",
		Short:         "Run Frequencies, Chi-Square and Runs Test analyses on a data file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (yaml, json or toml)")
	pf.StringVar(&g.dataPath, "data", "", "Data file (.xlsx Sheet1 or .csv); defaults to EXCEL_FILE")
	pf.StringSliceVar(&g.vars, "vars", nil, "Variables to analyze, comma separated")
	pf.StringVar(&g.format, "format", "text", "Output format: text, markdown, html or json")
	pf.StringVar(&g.xlsxPath, "xlsx", "", "Also export the tables to this xlsx file")

	rootCmd.AddCommand(
		newFrequenciesCmd(g),
		newChiSquareCmd(g),
		newRunsCmd(g),
		newMigrateCmd(g),
	)
	return rootCmd
}

func newFrequenciesCmd(g *globalFlags) *cobra.Command {
	var f frequenciesFlags
	cmd := &cobra.Command{
		Use:   "frequencies",
		Short: "Frequency tables, descriptive statistics and charts",
		Long: `Frequency tables, descriptive statistics and charts for one or more variables.

Example: gostat frequencies --data survey.csv --vars age,region --stats mean,median,mode --quartiles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer s.close()

			vars, err := s.dataset.Select(g.vars)
			if err != nil {
				return err
			}
			req, err := f.request(vars, s.dataset)
			if err != nil {
				return err
			}
			out, err := app.NewFrequenciesAnalysis(s.deps()).Run(cmd.Context(), req)
			return s.emit(cmd, out, err)
		},
	}
	f.register(cmd)
	return cmd
}

func newChiSquareCmd(g *globalFlags) *cobra.Command {
	var f chiSquareFlags
	cmd := &cobra.Command{
		Use:   "chi-square",
		Short: "One-sample Chi-Square goodness-of-fit test",
		Long: `One-sample Chi-Square goodness-of-fit test per variable.

Categories come from the data unless --lower or --upper is given. Expected
frequencies are equal unless --expected lists relative proportions.

Example: gostat chi-square --data survey.csv --vars rating --lower 1 --upper 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer s.close()

			vars, err := s.dataset.Select(g.vars)
			if err != nil {
				return err
			}
			req := app.ChiSquareRequest{Variables: vars, Options: f.options(cmd)}
			out, err := app.NewChiSquareAnalysis(s.deps()).Run(cmd.Context(), req)
			return s.emit(cmd, out, err)
		},
	}
	f.register(cmd)
	return cmd
}

func newRunsCmd(g *globalFlags) *cobra.Command {
	var f runsFlags
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "One-sample Runs Test for randomness",
		Long: `One-sample Runs Test per variable and cut point.

Example: gostat runs --data series.csv --vars value --cut median,custom --custom 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer s.close()

			vars, err := s.dataset.Select(g.vars)
			if err != nil {
				return err
			}
			opts, err := f.options(cmd)
			if err != nil {
				return err
			}
			out, err := app.NewRunsAnalysis(s.deps()).Run(cmd.Context(), app.RunsRequest{Variables: vars, Options: opts})
			return s.emit(cmd, out, err)
		},
	}
	f.register(cmd)
	return cmd
}

func newMigrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the result tables in PostgreSQL (DATABASE_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(g.configPath)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			db, err := sqlx.Connect("postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := migration.NewRunner().Run(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

// session is the loaded configuration, container and dataset of one command
type session struct {
	container *container.Container
	dataset   *excel.Dataset
	format    string
	xlsxPath  string
}

func newSession(ctx context.Context, g *globalFlags) (*session, error) {
	if len(g.vars) == 0 {
		return nil, fmt.Errorf("--vars is required")
	}
	format := strings.ToLower(g.format)
	if format != "json" {
		if _, err := render.ParseFormat(format); err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadFile(g.configPath)
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := c.InitWithDatabase(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	path := g.dataPath
	if path == "" {
		path = cfg.Data.ExcelFile
	}
	if path == "" {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("--data or EXCEL_FILE is required")
	}
	ds, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	return &session{container: c, dataset: ds, format: format, xlsxPath: g.xlsxPath}, nil
}

func (s *session) deps() app.Deps {
	return s.container.Deps(nil)
}

func (s *session) close() {
	s.container.Shutdown(context.Background())
}

// weightVariable resolves an optional weight variable
func weightVariable(ds *excel.Dataset, name string) (*analysis.VariableData, error) {
	if name == "" {
		return nil, nil
	}
	vd, ok := ds.Variable(name)
	if !ok {
		return nil, fmt.Errorf("weight variable %q not found in dataset", name)
	}
	return &vd, nil
}
