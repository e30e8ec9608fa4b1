package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pricelist-tracker/internal/export"
)

var exportFlags struct {
	list string
	out  string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored items of a price list to an XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFlags.list == "" || exportFlags.out == "" {
			return fmt.Errorf("--list and --out are required")
		}
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		_, _, items, err := newProcessor(db)
		if err != nil {
			return err
		}
		data, err := export.NewService(items, logger).ExportListXLSX(ctx, exportFlags.list)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportFlags.out, data, 0o644); err != nil {
			return err
		}
		logger.Info("export written", "path", exportFlags.out, "bytes", len(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFlags.list, "list", "", "price list id")
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "O", "", "output XLSX file path")
}
