package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"sovdash/internal/config"
	"sovdash/internal/dashboard"
	"sovdash/internal/history"
	"sovdash/internal/logger"
	"sovdash/internal/models"
	"sovdash/internal/report"
	"sovdash/internal/storage"
)

const usage = `usage: dashboard [flags] <command> [args]

commands:
  interactive               read commands from stdin (default)
  search <kw1, kw2, ...>    run a search and print the dashboard
  demo                      load the demo analysis
  history                   list recent searches
  restore <n>               run the search at history position n
  clear                     clear the search history

flags:
`

func main() {
	cfg := config.LoadClient()

	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	apiURL := fs.String("api", cfg.APIURL, "dashboard API base URL")
	numResults := fs.Int("n", 10, "results per keyword (1-50)")
	analysisType := fs.String("type", string(models.AnalysisFull), "analysis type: full, quick or competitor")
	exportFormat := fs.String("export", "", "after search or demo, export the result locally (html, json, csv, txt)")
	outDir := fs.String("out", ".", "directory exported files are written to")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	_ = logger.Init(cfg.LogLevel, "")
	log := logger.For("dashboard")

	store, err := openHistoryStorage(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open history:", err)
		os.Exit(1)
	}
	defer store.Close()

	reports, err := report.New(report.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "init reports:", err)
		os.Exit(1)
	}

	target := dashboard.NewMemoryTarget()
	client := dashboard.NewClient(*apiURL, cfg.RequestTimeout, cfg.AnalysisTimeout)
	sess := dashboard.NewSession(client, target, history.Open(store, log), reports, log)

	typ, ok := models.ParseAnalysisType(*analysisType)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown analysis type %q, using full\n", *analysisType)
	}

	cli := &cli{
		sess:   sess,
		target: target,
		out:    os.Stdout,
		outDir: *outDir,
		form:   dashboard.SearchInput{NumResults: *numResults, AnalysisType: typ},
		log:    log,
	}

	args := fs.Args()
	cmd := "interactive"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	ctx := context.Background()
	if cmd == "interactive" {
		cli.interactive(ctx, os.Stdin)
		return
	}
	if err := cli.run(ctx, cmd, strings.Join(args, " ")); err != nil {
		os.Exit(1)
	}
	if cmd == "restore" {
		if err := cli.run(ctx, "run", ""); err != nil {
			os.Exit(1)
		}
	}
	if *exportFormat != "" && (cmd == "search" || cmd == "demo" || cmd == "restore") {
		if err := cli.export(*exportFormat); err != nil {
			os.Exit(1)
		}
	}
}

// openHistoryStorage picks Redis when configured and the local SQLite file otherwise.
func openHistoryStorage(cfg *config.ClientConfig) (storage.Storage, error) {
	if cfg.HistoryRedisURL != "" {
		return storage.NewRedis(cfg.HistoryRedisURL), nil
	}
	return storage.NewSQLite(cfg.HistoryDB)
}

type cli struct {
	sess   *dashboard.Session
	target *dashboard.MemoryTarget
	out    io.Writer
	outDir string
	form   dashboard.SearchInput
	log    *logrus.Entry
}

func (c *cli) interactive(ctx context.Context, in io.Reader) {
	fmt.Fprintln(c.out, "Atomberg Share of Voice dashboard. Type 'help' for commands.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit", "exit":
			return
		case "help":
			c.help()
		default:
			// Errors are already shown as the status line.
			_ = c.run(ctx, cmd, strings.TrimSpace(rest))
		}
	}
}

func (c *cli) help() {
	fmt.Fprint(c.out, `commands:
  search <kw1, kw2, ...>   run a search with the current settings
  results <n>              set results per keyword
  type <full|quick|competitor>
  demo                     load the demo analysis
  show                     print the dashboard
  history                  list recent searches
  restore <n>              load search n into the form
  run                      run the search in the form
  clear                    clear the search history
  export <format>          write the current result to a local file
  report <format>          have the server render the current result
  quit
`)
}

func (c *cli) run(ctx context.Context, cmd, arg string) error {
	var err error
	switch cmd {
	case "search":
		if arg != "" {
			c.form.KeywordsText = arg
		}
		_, err = c.sess.PerformSearch(ctx, c.form)
		c.show()
	case "run":
		_, err = c.sess.PerformSearch(ctx, c.form)
		c.show()
	case "demo":
		_, err = c.sess.LoadDemo(ctx)
		c.show()
	case "show":
		c.show()
	case "results":
		n, convErr := strconv.Atoi(arg)
		if convErr != nil {
			fmt.Fprintln(c.out, "results must be a number")
			return convErr
		}
		c.form.NumResults = n
	case "type":
		typ, ok := models.ParseAnalysisType(arg)
		if !ok {
			fmt.Fprintf(c.out, "unknown analysis type %q\n", arg)
			return fmt.Errorf("unknown analysis type %q", arg)
		}
		c.form.AnalysisType = typ
	case "history":
		c.printHistory()
	case "restore":
		err = c.restore(ctx, arg)
	case "clear":
		err = c.sess.ClearHistory()
		c.printStatus()
	case "export":
		err = c.export(arg)
	case "report":
		err = c.download(ctx, arg)
	default:
		fmt.Fprintf(c.out, "unknown command %q\n", cmd)
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		c.log.WithError(err).WithField("command", cmd).Debug("Command failed")
	}
	return err
}

func (c *cli) restore(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintln(c.out, "restore needs a history position")
		return err
	}
	// History is listed from 1 for people, stored from 0.
	form, err := c.sess.Restore(n - 1)
	if err != nil {
		c.printStatus()
		return err
	}
	c.form.KeywordsText = form.KeywordsText
	c.form.AnalysisType = form.AnalysisType
	fmt.Fprintf(c.out, "Restored: %s (%s)\n", form.KeywordsText, form.AnalysisType)
	return nil
}

func (c *cli) export(format string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return err
	}
	rep, err := c.sess.Export(f)
	if err != nil {
		c.printStatus()
		return err
	}
	return c.write(rep.Filename, rep.Content)
}

func (c *cli) download(ctx context.Context, format string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return err
	}
	resp, err := c.sess.DownloadReport(ctx, f)
	if err != nil {
		c.printStatus()
		return err
	}
	// The server names the file; keep only its base name.
	return c.write(filepath.Base(resp.Filename), []byte(resp.Content))
}

func (c *cli) write(name string, content []byte) error {
	path := filepath.Join(c.outDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		fmt.Fprintln(c.out, "write export:", err)
		return err
	}
	fmt.Fprintln(c.out, "Saved", path)
	return nil
}

func (c *cli) show() {
	_, _ = c.target.WriteTo(c.out)
}

func (c *cli) printStatus() {
	if st := c.target.Snapshot().Status; st.Message != "" {
		fmt.Fprintf(c.out, "[%s] %s\n", st.Kind, st.Message)
	}
}

func (c *cli) printHistory() {
	entries := c.sess.History()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No searches yet.")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(c.out, "%2d. %s  %-10s %d keyword(s): %s\n",
			i+1, e.Timestamp, e.AnalysisType, e.ResultsCount, strings.Join(e.Keywords, ", "))
	}
}
