package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/platable/insights-backend/internal/aggregate"
	"github.com/platable/insights-backend/internal/config"
	"github.com/platable/insights-backend/internal/domain"
	"github.com/platable/insights-backend/internal/ingest"
	"github.com/platable/insights-backend/internal/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "insights",
		Usage: "Offline transformation of marketplace order sheets",
		Commands: []*cli.Command{
			{
				Name:  "transform",
				Usage: "Normalize sheets and emit per-file KPI summaries",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "input",
						Usage:    "Input CSV/XLSX file (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out-dir",
						Usage: "Output directory for normalized CSVs and KPI JSON",
						Value: ".",
					},
					&cli.StringFlag{
						Name:  "env",
						Usage: "Path to .env file with IMPACT_* overrides",
						Value: ".env",
					},
				},
				Action: runTransform,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runTransform(c *cli.Context) error {
	if err := godotenv.Load(c.String("env")); err != nil {
		log.Printf("warning: could not load env file: %v", err)
	}
	cfg := config.Load()

	outDir := c.String("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	g, _ := errgroup.WithContext(c.Context)
	for _, input := range c.StringSlice("input") {
		input := input
		g.Go(func() error {
			return transformFile(input, outDir, cfg.Impact)
		})
	}
	return g.Wait()
}

func transformFile(input, outDir string, params domain.ImpactParams) error {
	table, err := ingest.ReadTable(input)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	result := pipeline.Transform(table, params)
	if len(result.Unmapped) > 0 {
		log.Printf("%s: unmapped fields: %s", input, strings.Join(result.Unmapped, ", "))
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	csvPath := filepath.Join(outDir, base+"_normalized.csv")
	if err := writeNormalizedCSV(csvPath, result.Orders); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	kpis := aggregate.KPIs(result.Orders, domain.Filter{})
	kpiPath := filepath.Join(outDir, base+"_kpis.json")
	if err := writeKPIJSON(kpiPath, &kpis); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	log.Printf("%s: %d rows -> %s, %s", input, len(result.Orders), csvPath, kpiPath)
	return nil
}

var csvHeader = []string{
	"order_number", "order_state", "service_mode", "brand", "store_name",
	"item_name", "account_manager", "date", "hour", "time_bucket", "customer",
	"order_value", "quantity", "commission_rate", "pg_rate",
	"commission_amount", "pg_amount", "revenue", "payout",
	"food_kg", "meals", "co2e_total_kg",
}

func writeNormalizedCSV(path string, orders []domain.Order) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for i := range orders {
		o := &orders[i]
		row := []string{
			o.OrderNumber, o.OrderState, o.ServiceMode, o.Brand, o.StoreName,
			o.ItemName, o.AccountManager, formatDate(o.Date), formatInt(o.Hour),
			o.TimeBucket, o.Customer,
			formatFloat(o.OrderValue), strconv.Itoa(o.Quantity),
			formatFloat(o.CommissionRate), formatFloat(o.PGRate),
			formatFloat(o.CommissionAmount), formatFloat(o.PGAmount),
			strconv.FormatFloat(o.Revenue, 'f', 2, 64), formatFloat(o.Payout),
			strconv.FormatFloat(o.FoodKg, 'f', -1, 64),
			strconv.FormatFloat(o.Meals, 'f', -1, 64),
			strconv.FormatFloat(o.CO2eTotal, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeKPIJSON(path string, kpis *domain.KPISummary) error {
	data, err := json.MarshalIndent(kpis, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
