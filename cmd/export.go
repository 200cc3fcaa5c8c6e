/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/api"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/database"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export handover records to an xlsx file",
	Long: `Export handover records to an Excel workbook.
The same filters as the record list API are supported.
Completed and handed-over records are skipped unless --include-completed is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := api.GetLogger()

		filter := &service.ListFilter{}
		filter.PredecessorID, _ = cmd.Flags().GetString("predecessor")
		filter.Keyword, _ = cmd.Flags().GetString("keyword")
		filter.Status, _ = cmd.Flags().GetString("status")
		filter.IncludeCompleted, _ = cmd.Flags().GetBool("include-completed")
		output, _ := cmd.Flags().GetString("output")

		db, err := database.ConnectWithRetry(cmd.Context(), cfg.Database, cfg.Database.ConnectRetries, defaultRetryInterval)
		if err != nil {
			return err
		}
		defer database.Close(db)

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		count, err := service.NewExportService(db, logger).ExportXLSX(cmd.Context(), filter, f)
		if err != nil {
			return fmt.Errorf("failed to export records: %w", err)
		}

		logger.WithFields(logrus.Fields{"file": output, "records": count}).Info("export completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "handovers.xlsx", "Output file path")
	exportCmd.Flags().String("predecessor", "", "Only export records owned by this worker")
	exportCmd.Flags().String("keyword", "", "Customer id or company name contains")
	exportCmd.Flags().String("status", "", "Only export records in this status (e.g. PENDING_3)")
	exportCmd.Flags().Bool("include-completed", false, "Include completed and handed-over records")
}
