// VeridicalDB - a SQL resolver, logical-plan generator, and expression
// evaluator. Main entry point for the CLI and REPL.

package main

import (
	"fmt"
	"os"

	"github.com/JayabrataBasu/VeridicalDB/internal/cli"
	"github.com/JayabrataBasu/VeridicalDB/internal/config"
	"github.com/JayabrataBasu/VeridicalDB/internal/logger"
	"github.com/JayabrataBasu/VeridicalDB/internal/physmem"
	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/parsesql"
	"github.com/JayabrataBasu/VeridicalDB/pkg/plan"
	"github.com/JayabrataBasu/VeridicalDB/pkg/resolver"
	"github.com/JayabrataBasu/VeridicalDB/pkg/subq"
	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	buildDate = "dev"
	cfgFile   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "veridicaldb",
		Short: "VeridicalDB - a SQL resolver and query planner",
		Long: `VeridicalDB parses, resolves, and plans SQL: SELECT/INSERT/UPDATE/
DELETE/CALC statements are bound against an in-memory catalog and lowered
to a logical plan tree, with a minimal in-memory executor to run them.
It holds no on-disk tables, WAL, or indexes.

Start the interactive shell:
  veridicaldb

Start with a specific config file:
  veridicaldb --config /path/to/config.yaml`,
		Run: runServer,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("VeridicalDB %s (built %s)\n", version, buildDate)
		},
	})

	// Init command - initialize a new data directory
	rootCmd.AddCommand(&cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new data directory",
		Args:  cobra.MaximumNArgs(1),
		Run:   initDatabase,
	})

	// Explain command - plan a SQL string from argv without the REPL
	rootCmd.AddCommand(&cobra.Command{
		Use:   "explain [sql]",
		Short: "Parse, resolve, and plan a SQL string, printing its logical tree",
		Args:  cobra.ExactArgs(1),
		Run:   explainSQL,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting VeridicalDB",
		"version", version,
		"data_dir", cfg.Storage.DataDir,
	)

	// Validate data directory exists
	if err := config.ValidateDataDir(cfg.Storage.DataDir); err != nil {
		log.Error("Data directory validation failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'veridicaldb init' to create a new data directory\n")
		os.Exit(1)
	}

	// Start the CLI REPL
	repl := cli.NewREPL(cfg, log)
	if err := repl.Run(); err != nil {
		log.Error("REPL error", "error", err)
		os.Exit(1)
	}
}

func initDatabase(cmd *cobra.Command, args []string) {
	dir := "./data"
	if len(args) > 0 {
		dir = args[0]
	}

	fmt.Printf("Initializing new VeridicalDB data directory in: %s\n", dir)

	if err := config.InitDataDir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create default config file
	cfgPath := "veridicaldb.yaml"
	if err := config.CreateDefaultConfig(cfgPath, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create config file: %v\n", err)
	} else {
		fmt.Printf("Created config file: %s\n", cfgPath)
	}

	fmt.Println("Data directory initialized successfully!")
	fmt.Printf("Start the REPL with: veridicaldb --config %s\n", cfgPath)
}

// explainSQL parses, resolves, and plans a single SQL string from argv,
// then prints its logical tree — the non-interactive counterpart to the
// REPL's own EXPLAIN statement handling (internal/cli.REPL.runSQL).
func explainSQL(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	cat := catalog.New()
	if cfg.Catalog.SeedFile != "" {
		if err := catalog.LoadSeed(cat, cfg.Catalog.SeedFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading catalog seed file: %v\n", err)
			os.Exit(1)
		}
	}

	stmtNode, err := parsesql.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
		os.Exit(1)
	}

	stmt, err := resolver.New(cat).Resolve(stmtNode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve error: %v\n", err)
		os.Exit(1)
	}
	if e, ok := stmt.(*resolver.Explain); ok {
		stmt = e.Child
	}

	node, err := plan.Generate(stmt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "plan error: %v\n", err)
		os.Exit(1)
	}
	planner := physmem.NewPlanner(physmem.NewStore())
	if node, err = subq.Materialize(node, planner); err != nil {
		fmt.Fprintf(os.Stderr, "plan error: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(node.Explain(0))
}
