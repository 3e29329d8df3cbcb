// Payplan extracts structured payment installments from pasted BNPL
// (Buy-Now-Pay-Later) reminder emails: Klarna, Affirm, Afterpay, PayPal
// Pay in 4, Zip, and Sezzle.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/api"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/config"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/extract"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/ingest"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/logging"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/writer"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payplan",
		Short: "Extract BNPL payment installments from reminder emails",
		Long: `Payplan parses pasted Buy-Now-Pay-Later reminder emails (Klarna,
Affirm, Afterpay, PayPal Pay in 4, Zip, Sezzle) into a structured list of
installments: provider, due date, amount, autopay flag, late fee, and a
confidence score.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(extractCmd(), serveCmd(), versionCmd())
	return cmd
}

func extractCmd() *cobra.Command {
	var (
		timezone string
		locale   string
		asCSV    bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract installments from a text or PDF file (or stdin)",
		Long: `Reads reminder email text from the given file, or stdin when the
argument is omitted or "-". Files ending in .pdf are converted to text
first. The result is printed as JSON, or CSV with --csv.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args)
			if err != nil {
				return err
			}

			dateLocale := models.LocaleUS
			if strings.EqualFold(locale, string(models.LocaleEU)) {
				dateLocale = models.LocaleEU
			}

			svc := extract.NewService(extract.Config{})
			res, err := svc.Extract(text, timezone, models.Options{
				DateLocale:  dateLocale,
				BypassCache: noCache,
			})
			if err != nil {
				return err
			}

			if asCSV {
				w := &writer.CSVWriter{IncludeHeader: true}
				return w.Write(cmd.OutOrStdout(), res)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone for date plausibility checks")
	cmd.Flags().StringVar(&locale, "locale", "US", "date locale for ambiguous slash dates: US or EU")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print CSV instead of JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the extraction cache")
	return cmd
}

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer log.Sync()

			svc := extract.NewService(extract.Config{CacheSize: cfg.Cache.Size})
			h := api.NewHandler(svc, log)

			app := fiber.New(fiber.Config{
				AppName:               "payplan",
				DisableStartupMessage: true,
			})
			app.Use(recover.New())
			app.Use(cors.New())
			h.Register(app)

			log.Info("listening",
				zap.String("addr", cfg.Server.Addr),
				zap.Int("cacheSize", cfg.Cache.Size),
				zap.String("version", api.Version),
			)
			return app.Listen(cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "payplan v%s\n", api.Version)
		},
	}
}

// readInput loads the paste from a file argument, a PDF, or stdin.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("input file not found: %s", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ingest.ExtractTextCombined(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
