package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	attendance "github.com/huoston/attendance-transfer"
	"github.com/huoston/attendance-transfer/excel"
	"github.com/huoston/attendance-transfer/export"
)

func main() {
	startTime := kingpin.Flag("start-time", "Class start time in HH:MM (24-hour)").Short('s').Required().String()
	duration := kingpin.Flag("duration", "Class duration in minutes").Short('d').Required().Int()
	formsFlag := kingpin.Flag("forms", "Forms export workbook (default: discovered in the current directory)").ExistingFile()
	templateFlag := kingpin.Flag("template", "Attendance template workbook (default: discovered in the current directory)").ExistingFile()
	verbose := kingpin.Flag("verbose", "Enable debug logging").Short('v').Bool()

	cmdTransfer := kingpin.Command("transfer", "Apply form responses to the template and save an updated copy").Default()
	cmdPreview := kingpin.Command("preview", "Show the template changes as a unified diff without writing anything")
	cmdExport := kingpin.Command("export", "Write the computed presence records to CSV or Postgres")
	exportOut := cmdExport.Flag("out", "CSV output file (default stdout)").String()
	exportDSN := cmdExport.Flag("dsn", "Postgres DSN; when set, records are upserted instead of written as CSV").String()

	cmd := kingpin.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	start, err := attendance.ParseClock(*startTime)
	if err != nil {
		kingpin.Fatalf("invalid --start-time: %v", err)
	}
	if *duration <= 0 {
		kingpin.Fatalf("--duration must be positive, got %d", *duration)
	}
	window := attendance.ClassWindow{Start: start, Duration: *duration}

	formsPath, templatePath := *formsFlag, *templateFlag
	if formsPath == "" || templatePath == "" {
		discForms, discTemplate, err := excel.Discover(".")
		if err != nil {
			fatal("workbook discovery failed", err)
		}
		if formsPath == "" {
			formsPath = discForms
		}
		if templatePath == "" {
			templatePath = discTemplate
		}
	}
	slog.Info("using workbooks", "forms", formsPath, "template", templatePath)
	slog.Info("class window", "start", window.Start, "end", window.End(), "duration", window.Duration)

	data, err := excel.ReadForms(formsPath)
	if err != nil {
		fatal("reading forms export", err)
	}
	slog.Info("read form responses", "observations", len(data.Observations), "skipped", data.Skipped)

	tmpl, err := excel.OpenTemplate(templatePath)
	if err != nil {
		fatal("reading attendance template", err)
	}
	defer tmpl.Close()

	// Absence is only inferred for dates that actually saw responses; a
	// template date with no submissions at all is left untouched.
	roster := tmpl.Roster().WithDates(attendance.ObservedDates(data.Observations))
	records, summary := attendance.Calculate(window, data.Observations, roster)
	summary.Skipped = data.Skipped

	switch cmd {
	case cmdTransfer.FullCommand():
		applied, err := tmpl.Apply(records)
		if err != nil {
			fatal("updating template", err)
		}
		out, err := tmpl.SaveUpdated()
		if err != nil {
			fatal("saving updated template", err)
		}
		slog.Info("saved updated template", "file", out, "records", applied)

	case cmdPreview.FullCommand():
		patch, err := tmpl.Preview(records)
		if err != nil {
			fatal("building preview", err)
		}
		fmt.Print(patch)

	case cmdExport.FullCommand():
		if *exportDSN != "" {
			ctx := context.Background()
			pg, err := export.OpenPostgres(ctx, *exportDSN)
			if err != nil {
				fatal("connecting to postgres", err)
			}
			defer pg.Close()
			if err := pg.Upsert(ctx, records); err != nil {
				fatal("exporting to postgres", err)
			}
			slog.Info("upserted presence records", "count", len(records))
		} else {
			w := io.Writer(os.Stdout)
			if *exportOut != "" {
				fd, err := os.Create(*exportOut)
				if err != nil {
					fatal("creating CSV file", err)
				}
				defer fd.Close()
				w = fd
			}
			if err := export.WriteCSV(w, records); err != nil {
				fatal("writing CSV", err)
			}
		}
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stderr, "%d present, %d absent, %d rows skipped, %d responses not in template\n",
		summary.Present, summary.Absent, summary.Skipped, summary.Ignored)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
