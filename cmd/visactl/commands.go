package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/visa-tracker/internal/conflict"
	"github.com/pkordes/visa-tracker/internal/domain"
)

// errRejected makes validate exit non-zero after printing its result.
var errRejected = errors.New("stay rejected")

func newStatusCmd(opts *options) *cobra.Command {
	var visaType string
	cmd := &cobra.Command{
		Use:   "status [country]",
		Short: "Show visa-day usage for one destination or every visited one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return encodeYAML(e.out, e.calc.Status(args[0], e.stays, e.vctx, visaType))
			}
			return encodeYAML(e.out, e.calc.AllStatuses(e.stays, e.vctx))
		},
	}
	cmd.Flags().StringVar(&visaType, "visa-type", "", "visa type used to select a user override")
	return cmd
}

func newConflictsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List date conflicts between stays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			found := conflict.NewDetector(e.log).Detect(e.stays)
			if found == nil {
				found = []domain.DateConflict{}
			}
			return encodeYAML(e.out, found)
		},
	}
}

// resolveOutput is what resolve prints.
type resolveOutput struct {
	Stays      []domain.ResolvedStay       `yaml:"stays"`
	Validation domain.ResolutionValidation `yaml:"validation"`
}

func newResolveCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Repair conflicting stays and report what remains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			r := conflict.NewResolver(e.log)
			resolved := r.Resolve(e.stays, conflict.MaxPasses)
			result := resolveOutput{Stays: resolved, Validation: r.Validate(resolved)}

			if out != "" {
				f := stayFile{Nationality: e.vctx.Nationality, UserKey: e.vctx.UserKey, Stays: domain.Stays(resolved)}
				if err := writeStayFile(out, f); err != nil {
					return err
				}
				e.log.Info("resolved stays written", "path", out, "stays", len(resolved))
			}
			return encodeYAML(e.out, result)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "also write the resolved stays to this file")
	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	var candidate domain.Stay
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether adding a stay would exceed a visa allowance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			candidate.CountryCode = strings.ToUpper(strings.TrimSpace(candidate.CountryCode))
			vctx := e.vctx
			vctx.ReferenceDate = projectionDate(vctx, candidate, time.Now())

			result := e.calc.ValidateNewStay(candidate, e.stays, vctx)
			if err := encodeYAML(e.out, result); err != nil {
				return err
			}
			if !result.IsValid {
				return fmt.Errorf("%w: %s", errRejected, result.Message)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&candidate.ID, "id", "", "ID of an existing stay being edited")
	f.StringVar(&candidate.CountryCode, "country", "", "destination country code")
	f.StringVar(&candidate.EntryDate, "entry", "", "entry date YYYY-MM-DD")
	f.StringVar(&candidate.ExitDate, "exit", "", "exit date YYYY-MM-DD; omit while ongoing")
	f.StringVar(&candidate.VisaType, "visa-type", "", "visa type")
	_ = cmd.MarkFlagRequired("country")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}
