package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinicload/internal/constraint"
	"github.com/gyeh/clinicload/internal/exitcode"
	"github.com/gyeh/clinicload/internal/logging"
	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/shape"
	"github.com/gyeh/clinicload/internal/source"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run the patient export (no writes)",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&cfg.ExportPath, "export", "", "Path to the SharePoint patient export CSV (required)")
	_ = planCmd.MarkFlagRequired("export")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		return exitWith(exitcode.UsageError, err)
	}
	if err := cfg.ValidateExport(); err != nil {
		log.Error().Err(err).Msg("export validation failed")
		return exitWith(exitcode.UsageError, err)
	}

	exp, err := source.ReadPatientExport(cfg.ExportPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to read patient export")
		return exitWith(exitcode.SourceError, err)
	}

	records := shape.NormalizePatients(exp.Rows, cfg.Vocabulary)
	kept, drops := constraint.Filter(records, constraint.PatientRules)
	tables := shape.SplitPatients(kept, time.Now())

	fmt.Println("=== clinicload plan ===")
	fmt.Printf("File:       %s\n", exp.Path)
	fmt.Printf("SHA-256:    %s\n", exp.SHA256)
	fmt.Printf("Window:     %s .. %s\n", cfg.WindowStart.Format(time.DateOnly), cfg.WindowEnd.Format(time.DateOnly))
	fmt.Printf("Rows:       %d read, %d skipped (bad ID)\n", len(exp.Rows), exp.Skipped)
	fmt.Printf("Kept:       %d patients, %d dropped by constraints\n", len(kept), drops.Total())

	if len(drops) > 0 {
		fmt.Println()
		fmt.Println("Drops by rule:")
		for _, rule := range sortedKeys(drops) {
			fmt.Printf("  %-28s %6d\n", rule, drops[rule])
		}
	}

	fmt.Println()
	fmt.Println("Rows per table:")
	counts := tables.Counts()
	for _, t := range []model.Table{
		model.PatientTable, model.AddressTable, model.InsuranceTable,
		model.MedicalNecessityTable, model.StatusTable, model.EmergencyContactTable,
	} {
		fmt.Printf("  %-28s %6d\n", t.Name, counts[t.Name])
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
