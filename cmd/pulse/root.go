package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aristath/pulse/internal/database"
	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/modules/catalog"
	"github.com/aristath/pulse/internal/modules/dashboard"
	"github.com/aristath/pulse/internal/modules/history"
	"github.com/aristath/pulse/internal/modules/recommendation"
	"github.com/aristath/pulse/pkg/logger"
)

var version = "dev"

type rootOptions struct {
	inputs              []string
	dbPath              string
	catalogPath         string
	recommendationsPath string
	format              string
	debug               bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse - contact-center KPI scoring from the command line",
		Long: `Pulse scores contact-center KPI records against a configurable catalog.

Records are read from JSON or YAML files given with --input, either as a list
of records or as an object with a "records" list:

  [{"entity_id": "ana", "period": "2024-05", "values": {"tmo": 5.2, "satEP": 91}}]

Without --db the records are loaded into a scratch database that is removed on
exit. With --db they are appended to a persistent observation log, the same
history.db the server uses.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringSliceVarP(&opts.inputs, "input", "i", nil, "Record file (JSON or YAML), repeatable")
	flags.StringVar(&opts.dbPath, "db", "", "Persistent history database")
	flags.StringVar(&opts.catalogPath, "catalog", "", "KPI catalog override (YAML)")
	flags.StringVar(&opts.recommendationsPath, "recommendations", "", "Recommendation table override (YAML)")
	flags.StringVarP(&opts.format, "format", "f", "table", "Output format: table or json")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newIngestCommand(opts))
	cmd.AddCommand(newScoreCommand(opts))
	cmd.AddCommand(newLeaderboardCommand(opts))
	cmd.AddCommand(newSummaryCommand(opts))
	cmd.AddCommand(newTrendCommand(opts))
	cmd.AddCommand(newRiskCommand(opts))
	cmd.AddCommand(newHeatmapCommand(opts))
	cmd.AddCommand(newCatalogCommand(opts))

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

// notFoundError marks lookups of periods, entities or KPIs with no data
type notFoundError struct {
	err error
}

func (e *notFoundError) Error() string { return e.err.Error() }
func (e *notFoundError) Unwrap() error { return e.err }

func classify(err error) error {
	if errors.Is(err, history.ErrNotFound) || errors.Is(err, catalog.ErrUnknownKPI) {
		return &notFoundError{err: err}
	}
	return err
}

// session is one command's engine, observation log and dashboard service
type session struct {
	service *dashboard.Service
	db      *database.DB
	scratch string
	log     zerolog.Logger
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	level := "warn"
	if o.debug {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Pretty: true, Output: cmd.ErrOrStderr()})
}

func (o *rootOptions) validate() error {
	if o.format != "table" && o.format != "json" {
		return fmt.Errorf("invalid format %q: use table or json", o.format)
	}
	return nil
}

func (o *rootOptions) engine() (*dashboard.Engine, error) {
	c := catalog.Default()
	if o.catalogPath != "" {
		var err error
		if c, err = catalog.LoadFile(o.catalogPath); err != nil {
			return nil, err
		}
	}

	selector := recommendation.Default()
	if o.recommendationsPath != "" {
		var err error
		if selector, err = recommendation.LoadTableFile(o.recommendationsPath); err != nil {
			return nil, err
		}
	}

	return dashboard.NewEngine(c, selector), nil
}

// open builds a session and ingests every --input file
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	log := o.logger(cmd)
	engine, err := o.engine()
	if err != nil {
		return nil, err
	}

	s := &session{log: log}
	path, profile := o.dbPath, database.ProfileLedger
	if path == "" {
		if s.scratch, err = os.MkdirTemp("", "pulse-"); err != nil {
			return nil, fmt.Errorf("failed to create scratch directory: %w", err)
		}
		path, profile = filepath.Join(s.scratch, "history.db"), database.ProfileStandard
	}

	s.db, err = database.New(database.Config{Path: path, Profile: profile, Name: database.NameHistory})
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := s.db.Migrate(); err != nil {
		s.Close()
		return nil, err
	}

	repo := history.NewSQLiteRepository(s.db.Conn(), log)
	s.service = dashboard.NewService(engine, repo, nil, nil, log)

	for _, input := range o.inputs {
		records, err := readRecords(input)
		if err != nil {
			s.Close()
			return nil, err
		}
		result, err := s.service.Ingest(cmd.Context(), records)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to ingest %s: %w", input, err)
		}
		log.Debug().Str("input", input).Int("inserted", result.Inserted).Msg("Loaded records")
	}

	return s, nil
}

// Close releases the database and removes a scratch directory
func (s *session) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to close database")
		}
	}
	if s.scratch != "" {
		_ = os.RemoveAll(s.scratch)
	}
}

type recordFile struct {
	Records []domain.Record `json:"records" yaml:"records"`
}

// readRecords accepts a list of records or an object wrapping one
func readRecords(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []domain.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			var file recordFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			records = file.Records
		}
	default:
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "{") {
			var file recordFile
			if err := json.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			records = file.Records
		} else if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s contains no records", path)
	}
	return records, nil
}
