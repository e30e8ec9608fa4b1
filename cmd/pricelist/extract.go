package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pricelist-tracker/internal/server"
)

var extractOCR bool

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Extract line items from one page and print them as JSON",
	Long: `Reads one page of OCR text from a file or stdin ("-" or no argument) and prints
the detected layout and line items. With --ocr the file is an image or PDF that
is OCR'd first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}

		text, err := readPage(cmd, path)
		if err != nil {
			return err
		}
		extractor, err := newExtractor()
		if err != nil {
			return err
		}

		page := extractor.ExtractPage(text)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(server.PageToMap(page))
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractOCR, "ocr", false, "OCR the file (image or PDF) before extracting")
}

func readPage(cmd *cobra.Command, path string) (string, error) {
	if extractOCR {
		if path == "-" {
			return "", fmt.Errorf("--ocr needs a file path")
		}
		engine, err := newOCR()
		if err != nil {
			return "", err
		}
		res, err := engine.Extract(cmd.Context(), path)
		if err != nil {
			return "", err
		}
		return res.Text, nil
	}
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
