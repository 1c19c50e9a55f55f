package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/visa-tracker/internal/domain"
	"github.com/pkordes/visa-tracker/internal/visa"
)

// options are the flags shared by every subcommand.
type options struct {
	staysFile   string
	nationality string
	date        string
	rulesFile   string
	userKey     string
	logLevel    string
}

// stayFile is the on-disk input. JSON documents decode too, since JSON is YAML:
//
//	nationality: US
//	stays:
//	  - {id: a, country_code: JP, entry_date: 2024-01-01, exit_date: 2024-01-30}
type stayFile struct {
	Nationality string        `yaml:"nationality,omitempty"`
	UserKey     string        `yaml:"user_key,omitempty"`
	Stays       []domain.Stay `yaml:"stays"`
}

// env is what a subcommand works with once the flags have been resolved.
type env struct {
	stays []domain.Stay
	vctx  domain.VisaContext
	calc  *visa.Calculator
	log   *slog.Logger
	out   io.Writer
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "visactl",
		Short:        "Visa-day accounting and stay-conflict repair",
		Long:         `Computes visa allowance usage per destination and detects or repairs conflicting stay dates in a YAML or JSON stays file.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.staysFile, "stays", "", "YAML or JSON stays file (required)")
	pf.StringVar(&opts.nationality, "nationality", "", "traveler nationality; overrides the stays file")
	pf.StringVar(&opts.date, "date", "", "reference date YYYY-MM-DD (default today)")
	pf.StringVar(&opts.rulesFile, "rules", "", "YAML rule catalog (default built-in rules)")
	pf.StringVar(&opts.userKey, "user-key", "", "key selecting user-specific rule overrides")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	_ = root.MarkPersistentFlagRequired("stays")

	root.AddCommand(
		newStatusCmd(opts),
		newConflictsCmd(opts),
		newResolveCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

// setup loads the stays file and rule catalog named by opts.
func setup(cmd *cobra.Command, opts *options) (*env, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", opts.logLevel)
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	f, err := loadStayFile(opts.staysFile)
	if err != nil {
		return nil, err
	}

	catalog := visa.DefaultCatalog()
	if opts.rulesFile != "" {
		if catalog, err = visa.LoadCatalogFile(opts.rulesFile); err != nil {
			return nil, err
		}
	}

	vctx := domain.VisaContext{
		Nationality:  firstNonEmpty(opts.nationality, f.Nationality),
		UserKey:      firstNonEmpty(opts.userKey, f.UserKey),
		LookbackDays: visa.DefaultLookbackDays,
	}
	if vctx.Nationality == "" {
		return nil, fmt.Errorf("nationality is required: set --nationality or nationality in %s", opts.staysFile)
	}
	if opts.date != "" {
		ref, ok := domain.ParseCalendarDate(opts.date)
		if !ok {
			return nil, fmt.Errorf("--date must be a YYYY-MM-DD date, got %q", opts.date)
		}
		vctx.ReferenceDate = ref
	}

	return &env{
		stays: f.Stays,
		vctx:  vctx,
		calc:  visa.NewCalculator(catalog, visa.WithLogger(log)),
		log:   log,
		out:   cmd.OutOrStdout(),
	}, nil
}

// loadStayFile decodes path. Stays without an ID are numbered by position so
// conflicts and resolutions can refer to them.
func loadStayFile(path string) (stayFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return stayFile{}, fmt.Errorf("read stays: %w", err)
	}
	var f stayFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return stayFile{}, fmt.Errorf("decode %s: %w", path, err)
	}
	for i := range f.Stays {
		if strings.TrimSpace(f.Stays[i].ID) == "" {
			f.Stays[i].ID = fmt.Sprintf("stay-%d", i+1)
		}
	}
	return f, nil
}

// writeStayFile writes stays back in the input format.
func writeStayFile(path string, f stayFile) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write stays: %w", err)
	}
	if err := encodeYAML(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// projectionDate is the reference date for validating a candidate: the
// explicit --date, or otherwise the later of today and the candidate's last day.
func projectionDate(vctx domain.VisaContext, candidate domain.Stay, now time.Time) time.Time {
	if !vctx.ReferenceDate.IsZero() {
		return vctx.ReferenceDate
	}
	ref := domain.CalendarDay(now)
	last := candidate.ExitDate
	if last == "" {
		last = candidate.EntryDate
	}
	if t, ok := domain.ParseCalendarDate(last); ok && t.After(ref) {
		return t
	}
	return ref
}
