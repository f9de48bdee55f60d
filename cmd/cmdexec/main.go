// Command cmdexec exposes local command execution as an MCP tool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/deixis/cmdexec"
	"github.com/deixis/cmdexec/internal/config"
	"github.com/deixis/cmdexec/internal/history"
	execmcp "github.com/deixis/cmdexec/internal/mcp"
	"github.com/deixis/cmdexec/internal/runner"
	"github.com/joho/godotenv"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("cmdexec: ")

	// Environment overrides from .env, when present.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "mcp":
		err = mcpMain(args)
	case "run":
		err = runMain(args)
	case "log":
		err = logMain(args)
	case "version":
		fmt.Println(cmdexec.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "cmdexec: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: cmdexec <command> [flags] [args]

Commands:
  mcp         Start the MCP server (stdio by default)
  run         Run a command once and print the result
  log         Show recent runs
  version     Print the version
  help        Show this help

Use "cmdexec <command> -h" for command-specific flags.`)
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(execmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return serve(ctx, *httpAddr)
}

func serve(ctx context.Context, httpAddr string) error {
	cfg, r, err := load()
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	server := execmcp.NewServer(r, store)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- run ---

func runMain(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	_ = fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 2 {
		return fmt.Errorf("usage: cmdexec run <cmd> [args]")
	}
	command := rest[0]
	var cmdArgs string
	if len(rest) == 2 {
		cmdArgs = rest[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, r, err := load()
	if err != nil {
		return err
	}

	res := r.Run(ctx, command, cmdArgs)

	if store, err := newStore(cfg); err == nil && store != nil {
		if err := store.Save(history.NewRecord(res)); err != nil {
			log.Printf("saving run %s: %v", res.RunID, err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	if res.StatusCode != 0 {
		os.Exit(res.StatusCode)
	}
	return nil
}

// --- log ---

func logMain(args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	count := fs.Int("n", 10, "number of runs to show")
	jsonFlag := fs.Bool("json", false, "output records as JSON")
	_ = fs.Parse(args)

	cfg, _, err := load()
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("run history is disabled (history: 0 in .cmdexec)")
	}

	recs, err := store.Recent(*count)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, rec := range recs {
		line := rec.Run.Command
		if rec.Run.Args != "" {
			line += " " + rec.Run.Args
		}
		fmt.Printf("%s  exit %-3d  %s  %s\n",
			rec.Time.Local().Format("2006-01-02 15:04:05"),
			rec.Run.StatusCode, rec.ID, line)
	}
	return nil
}

// --- shared ---

func load() (*config.Config, *runner.Runner, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("determining working directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, &runner.Runner{MaxOutput: cfg.MaxOutputBytes()}, nil
}

// newStore builds the run history store, or nil when history is disabled.
func newStore(cfg *config.Config) (history.Store, error) {
	keep := cfg.HistorySize()
	if keep == 0 {
		return nil, nil
	}

	dir := cfg.HistoryDir
	if dir == "" {
		var err error
		dir, err = history.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("locating history directory: %w", err)
		}
	}
	return history.NewLRUStore(5, history.NewDiskStore(dir, keep)), nil
}
