package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"nqtv/internal/config"
	"nqtv/internal/model"
	"nqtv/internal/query"
	"nqtv/internal/tui"
	"nqtv/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
)

const (
	releaseOwner = "nqtv"
	releaseRepo  = "nqtv"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      releaseOwner,
		Repository: releaseRepo,
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Printf("👉 Download it from https://github.com/%s/%s/releases\n", releaseOwner, releaseRepo)
	} else if pflag.Lookup("update").Changed {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nqtv [options] <store-path>\n\n")
		fmt.Fprintf(os.Stderr, "nqtv browses the dependency tree printed by `nix-store --query --tree`.\n")
		fmt.Fprintf(os.Stderr, "Entries nix-store printed as [...] link back to where their dependencies are listed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nqtv /run/current-system        # Start TUI mode\n")
		fmt.Fprintf(os.Stderr, "  nqtv --report $(which hello)    # Print a summary report\n")
		fmt.Fprintf(os.Stderr, "  nqtv -r -o r.txt ./result        # Save report to file\n")
		fmt.Fprintf(os.Stderr, "  nqtv --check ./result            # Verify the parser against nix-store\n")
		fmt.Fprintf(os.Stderr, "  nix-store -q --tree ./result | nqtv -i - --json\n")
	}

	rawFlag := pflag.BoolP("raw", "R", false, "Print the raw nix-store output and exit")
	jsonFlag := pflag.BoolP("json", "j", false, "Output the parsed tree as JSON")
	reportFlag := pflag.BoolP("report", "r", false, "Generate a summary report (CLI mode)")
	outputFlag := pflag.StringP("output", "o", "", "Save report to the specified file (combined with --report)")
	verboseFlag := pflag.BoolP("verbose", "v", false, "List every store path in the report")
	checkFlag := pflag.BoolP("check", "c", false, "Re-print the parsed tree and diff it against the nix-store output")
	inputFlag := pflag.StringP("input", "i", "", "Read tree text from a file ('-' for stdin) instead of running nix-store")
	sortFlag := pflag.StringP("sort", "s", "", "Sibling order: store or alpha (default from config, else store)")
	webFlag := pflag.BoolP("web", "w", false, "Start Web Mode")
	addrFlag := pflag.String("addr", "", "Web Mode listen address (default localhost:8080)")
	configFlag := pflag.String("config", "", "Config file (default $XDG_CONFIG_HOME/nqtv/config.toml)")
	logFileFlag := pflag.String("log-file", "", "Write debug logs to this file")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("nqtv version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if pflag.Lookup("sort").Changed {
		cfg.Sort = *sortFlag
	}
	if *addrFlag != "" {
		cfg.WebAddr = *addrFlag
	}
	if *logFileFlag != "" {
		cfg.LogFile = *logFileFlag
	}

	order, err := query.ParseSortOrder(cfg.Sort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "nqtv")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else if !*webFlag {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tool := query.DetectTool(cfg.NixStore)
	storePath := pflag.Arg(0)
	if pflag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected one store path, got %d arguments\n", pflag.NArg())
		os.Exit(2)
	}

	if *rawFlag {
		runRawMode(ctx, tool, storePath, *inputFlag)
		return
	}

	cliMode := *jsonFlag || *reportFlag || *checkFlag || *webFlag
	if !cliMode && *inputFlag == "" {
		// Default: TUI. It can prompt for a store path when none is given.
		runTuiMode(ctx, tool, storePath, nil, order, cfg.Theme)
		return
	}

	res := loadResult(ctx, tool, storePath, *inputFlag)

	switch {
	case *checkFlag:
		runCheckMode(res)
	case *reportFlag:
		runReportMode(res.Sorted(order), *outputFlag, *verboseFlag)
	case *jsonFlag:
		runJsonMode(res.Sorted(order))
	case *webFlag:
		web.StartServer(cfg.WebAddr, res.Sorted(order))
	default:
		runTuiMode(ctx, tool, storePath, res, order, cfg.Theme)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		def, err := config.DefaultPath()
		if err != nil {
			return config.Default(), nil
		}
		path = def
	}
	return config.Load(path)
}

// readInput returns the tree text of --input, or the nix-store output for
// storePath.
func readInput(ctx context.Context, tool query.Tool, storePath, input string) (string, error) {
	switch {
	case input == "-":
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	case input != "":
		data, err := os.ReadFile(input)
		return string(data), err
	case storePath == "":
		return "", errors.New("no store path given")
	}
	return query.Run(ctx, tool, storePath)
}

func loadResult(ctx context.Context, tool query.Tool, storePath, input string) *query.Result {
	var (
		res *query.Result
		raw string
		err error
	)
	switch {
	case input == "-":
		res, raw, err = query.Load(os.Stdin)
	case input != "":
		f, openErr := os.Open(input)
		if openErr != nil {
			fail(openErr, "")
		}
		defer f.Close()
		res, raw, err = query.Load(f)
	case storePath == "":
		pflag.Usage()
		os.Exit(2)
	default:
		res, raw, err = query.Query(ctx, tool, storePath)
	}
	if err != nil {
		fail(err, raw)
	}
	return res
}

// fail reports err and exits. Parse errors show the offending output lines.
func fail(err error, raw string) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var pe *query.ParseError
	if errors.As(err, &pe) && raw != "" {
		ctx := model.LineContextOf(raw, pe.Line)
		if ctx.ErrorMsg == "" {
			if ctx.HasBefore1 {
				fmt.Fprintf(os.Stderr, "  %4d  %s\n", ctx.LineNumber-1, ctx.Before1)
			}
			fmt.Fprintf(os.Stderr, "» %4d  %s\n", ctx.LineNumber, ctx.Target)
			if ctx.HasAfter1 {
				fmt.Fprintf(os.Stderr, "  %4d  %s\n", ctx.LineNumber+1, ctx.After1)
			}
		}
	}
	os.Exit(1)
}

func runRawMode(ctx context.Context, tool query.Tool, storePath, input string) {
	raw, err := readInput(ctx, tool, storePath, input)
	if err != nil {
		fail(err, "")
	}
	fmt.Print(raw)
}

func runCheckMode(res *query.Result) {
	diff, ok := query.Verify(res)
	if !ok {
		fmt.Print(diff)
		os.Exit(1)
	}
	fmt.Printf("ok: %d entries re-render identically\n", res.Size())
}

func runReportMode(res *query.Result, outputFile string, verbose bool) {
	report := query.GenerateReport(res, verbose)

	if outputFile != "" {
		err := os.WriteFile(outputFile, []byte(report), 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report to %s: %v\n", outputFile, err)
			os.Exit(1)
		}
		fmt.Printf("Report saved to %s\n", outputFile)
	} else {
		fmt.Println(report)
	}
}

func runJsonMode(res *query.Result) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(query.NewDocument(res)); err != nil {
		fail(err, "")
	}
}

func runTuiMode(ctx context.Context, tool query.Tool, storePath string, res *query.Result, order query.SortOrder, theme config.Theme) {
	m := tui.InitialModel(tui.Options{
		Ctx:       ctx,
		Tool:      tool,
		StorePath: storePath,
		Result:    res,
		Order:     order,
		Theme:     theme,
	})
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
