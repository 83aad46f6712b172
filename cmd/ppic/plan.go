package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/export"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/demand"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/reorder"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/schedule"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

func planFlags() []cli.Flag {
	today := time.Now().Format(dateLayout)
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "start",
			Usage: "First day of the sales window (YYYY-MM-DD)",
			Value: time.Now().AddDate(0, 0, -30).Format(dateLayout),
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "Last day of the sales window (YYYY-MM-DD)",
			Value: today,
		},
		&cli.StringFlag{
			Name:  "schedule-start",
			Usage: "First day of the production week (YYYY-MM-DD)",
			Value: today,
		},
		&cli.StringFlag{
			Name:  "grid",
			Usage: "JSON file with the weekly grid {sku: [7 batch counts]}",
		},
		&cli.BoolFlag{
			Name:  "auto-fill",
			Usage: "Place each target on its recommended day when no grid is given",
			Value: true,
		},
	}
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:   "plan",
		Usage:  "Run analytics, targets, requirement and reorder for one week",
		Flags:  planFlags(),
		Before: openApp,
		After:  closeApp,
		Action: func(c *cli.Context) error {
			run, err := runPlan(c)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		},
	}
}

func ropCommand() *cli.Command {
	return &cli.Command{
		Name:   "rop",
		Usage:  "Print the reorder table for one planned week",
		Flags:  planFlags(),
		Before: openApp,
		After:  closeApp,
		Action: func(c *cli.Context) error {
			run, err := runPlan(c)
			if err != nil {
				return err
			}
			printReorder(run.Reorder, run.Summary)
			return nil
		},
	}
}

func runPlan(c *cli.Context) (*pipeline.Run, error) {
	a := appFrom(c)
	in := pipeline.Input{
		StartDate:     c.String("start"),
		EndDate:       c.String("end"),
		ScheduleStart: c.String("schedule-start"),
	}

	if path := c.String("grid"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read grid: %w", err)
		}
		if err := json.Unmarshal(raw, &in.Grid); err != nil {
			return nil, fmt.Errorf("failed to parse grid %s: %w", path, err)
		}
		return a.Planning.Run(c.Context, in)
	}

	run, err := a.Planning.Run(c.Context, in)
	if err != nil || !c.Bool("auto-fill") {
		return run, err
	}
	in.Grid = fillRecommended(run.Handoff, in.ScheduleStart)
	return a.Planning.Run(c.Context, in)
}

// fillRecommended puts each SKU's target batches on the column whose weekday
// matches its recommended day, or on the first column.
func fillRecommended(h demand.Handoff, start string) map[string][]int {
	days := schedule.WeekDates(start)
	grid := make(map[string][]int, len(h.Targets))
	for sku, batches := range h.Targets {
		row := make([]int, schedule.DaysPerWeek)
		col := 0
		if rec, ok := h.Recommendations[sku]; ok {
			for i, d := range days {
				if d.DayIdx == rec {
					col = i
					break
				}
			}
		}
		row[col] = batches
		grid[sku] = row
	}
	return grid
}

func printReorder(rows []reorder.Analysis, summary reorder.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMATERIAL\tWEEKLY\tSTOCK\tROP\tHEALTH\tREORDER\tSHORTAGE")
	for _, r := range rows {
		flag := "-"
		if r.IsReorder {
			flag = "YES"
		}
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\t%s%%\t%s\t%s\n",
			r.ID, r.Name,
			export.FormatIDFloat(r.UsageAmount, 2), r.UsageUnit,
			export.FormatIDFloat(r.CurrentStock, 2),
			export.FormatIDFloat(r.ROPThreshold, 2),
			export.FormatIDFloat(r.Health, 0),
			flag,
			export.FormatIDFloat(r.Shortage, 0),
		)
	}
	w.Flush()
	fmt.Printf("\n%d materials, %d to reorder, %d safe\n", summary.Materials, summary.Reorder, summary.Safe)
}
