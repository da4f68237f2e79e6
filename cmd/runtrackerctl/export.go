package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump a user's profile and reports as YAML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagFormat, "format", "yaml", "output format: yaml or json")
}

// exportDoc is the export file layout.
type exportDoc struct {
	Profile models.Profile  `json:"profile" yaml:"profile"`
	Reports []models.Report `json:"reports" yaml:"reports"`
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(flagFormat)
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unknown format %q (want yaml or json)", flagFormat)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close(cmd)

	ctx := cmd.Context()
	profile, err := s.users.Get(ctx, flagUser)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("user %q has no profile", flagUser)
	}
	if err != nil {
		return err
	}
	reports, err := s.reports.ListByUser(ctx, flagUser)
	if err != nil {
		return err
	}
	doc := exportDoc{Profile: profile, Reports: reports}

	out := cmd.OutOrStdout()
	if format == "json" {
		return printJSON(out, doc)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
