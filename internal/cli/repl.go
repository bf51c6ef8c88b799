// Package cli provides the command-line interface and REPL for the
// query-planning core.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JayabrataBasu/VeridicalDB/internal/config"
	"github.com/JayabrataBasu/VeridicalDB/internal/logger"
	"github.com/JayabrataBasu/VeridicalDB/internal/physmem"
	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/parsesql"
	"github.com/JayabrataBasu/VeridicalDB/pkg/plan"
	"github.com/JayabrataBasu/VeridicalDB/pkg/resolver"
	"github.com/JayabrataBasu/VeridicalDB/pkg/subq"
	"github.com/chzyer/readline"
)

// REPL implements the Read-Eval-Print Loop for the query core.
type REPL struct {
	config *config.Config
	log    *logger.Logger
	rl     *readline.Instance

	catalog  *catalog.Catalog
	store    *physmem.Store
	planner  *physmem.Planner
	resolver *resolver.Resolver
}

// NewREPL creates a new REPL instance, seeding the catalog from
// config.Catalog.SeedFile if one is configured.
func NewREPL(cfg *config.Config, log *logger.Logger) *REPL {
	cat := catalog.New()
	if cfg.Catalog.SeedFile != "" {
		if err := catalog.LoadSeed(cat, cfg.Catalog.SeedFile); err != nil {
			log.Warn("failed to load catalog seed file", "path", cfg.Catalog.SeedFile, "error", err)
		}
	}
	store := physmem.NewStore()

	return &REPL{
		config:   cfg,
		log:      log,
		catalog:  cat,
		store:    store,
		planner:  physmem.NewPlanner(store),
		resolver: resolver.New(cat),
	}
}

// Run starts the REPL loop
func (r *REPL) Run() error {
	// Configure readline
	rlConfig := &readline.Config{
		Prompt:          "qcore> ",
		HistoryFile:     getHistoryFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    newCompleter(),
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	// Print welcome message
	r.printWelcome()

	// Main REPL loop
	var multilineBuffer strings.Builder
	inMultiline := false

	for {
		// Update prompt for multiline input
		if inMultiline {
			rl.SetPrompt("      -> ")
		} else {
			rl.SetPrompt("qcore> ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if inMultiline {
				// Cancel multiline input
				multilineBuffer.Reset()
				inMultiline = false
				fmt.Println("^C")
				continue
			}
			continue
		} else if err == io.EOF {
			fmt.Println("\nGoodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle multiline input
		multilineBuffer.WriteString(line)
		fullInput := multilineBuffer.String()

		// Check if command is complete (ends with semicolon for SQL, immediate for backslash commands)
		if strings.HasPrefix(fullInput, "\\") || strings.HasSuffix(fullInput, ";") {
			// Process complete command
			result := r.processCommand(strings.TrimSuffix(fullInput, ";"))
			if result == commandExit {
				fmt.Println("Goodbye!")
				return nil
			}
			multilineBuffer.Reset()
			inMultiline = false
		} else {
			// Continue collecting multiline input
			multilineBuffer.WriteString(" ")
			inMultiline = true
		}
	}
}

type commandResult int

const (
	commandOK commandResult = iota
	commandExit
	commandError
)

func (r *REPL) processCommand(input string) commandResult {
	input = strings.TrimSpace(input)
	upperInput := strings.ToUpper(input)

	// Handle backslash commands
	if strings.HasPrefix(input, "\\") {
		return r.handleBackslashCommand(input)
	}

	switch {
	case upperInput == "EXIT" || upperInput == "QUIT" || upperInput == "\\Q":
		return commandExit

	case upperInput == "HELP" || upperInput == "\\?" || upperInput == "\\HELP":
		r.printHelp()
		return commandOK

	case strings.HasPrefix(upperInput, "SELECT"),
		strings.HasPrefix(upperInput, "INSERT"),
		strings.HasPrefix(upperInput, "UPDATE"),
		strings.HasPrefix(upperInput, "DELETE"),
		strings.HasPrefix(upperInput, "CALC"),
		strings.HasPrefix(upperInput, "EXPLAIN"):
		return r.runSQL(input)

	case strings.HasPrefix(upperInput, "BEGIN"),
		strings.HasPrefix(upperInput, "COMMIT"),
		strings.HasPrefix(upperInput, "ROLLBACK"):
		fmt.Println("Note: transactions are out of scope for this core")
		return commandOK

	default:
		fmt.Printf("Unknown command: %s\n", input)
		fmt.Println("Type HELP; for available commands")
		return commandError
	}
}

// runSQL parses, resolves, and plans input, then either prints the
// logical tree (EXPLAIN) or drives it through the in-memory reference
// executor and prints its rows.
func (r *REPL) runSQL(input string) commandResult {
	stmtNode, err := parsesql.Parse(input)
	if err != nil {
		fmt.Printf("parse error: %v\n", err)
		return commandError
	}

	stmt, err := r.resolver.Resolve(stmtNode)
	if err != nil {
		fmt.Printf("resolve error: %v\n", err)
		return commandError
	}

	explainOnly := false
	if e, ok := stmt.(*resolver.Explain); ok {
		explainOnly = true
		stmt = e.Child
	}

	node, err := plan.Generate(stmt)
	if err != nil {
		fmt.Printf("plan error: %v\n", err)
		return commandError
	}
	if _, err := subq.Materialize(node, r.planner); err != nil {
		fmt.Printf("plan error: %v\n", err)
		return commandError
	}

	if explainOnly {
		fmt.Print(node.Explain(0))
		return commandOK
	}

	if err := r.execute(node); err != nil {
		fmt.Printf("execution error: %v\n", err)
		return commandError
	}
	return commandOK
}

func (r *REPL) execute(node plan.Node) error {
	phys, err := r.planner.Create(node)
	if err != nil {
		return err
	}
	return runAndPrint(phys)
}

func (r *REPL) handleBackslashCommand(input string) commandResult {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return commandOK
	}

	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "\\q", "\\quit", "\\exit":
		return commandExit

	case "\\?", "\\help":
		r.printHelp()
		return commandOK

	case "\\dt", "\\tables":
		for _, name := range r.catalog.ListTables() {
			fmt.Println(name)
		}
		return commandOK

	case "\\d":
		if len(parts) > 1 {
			r.describeTable(parts[1])
		} else {
			fmt.Println("Usage: \\d <table_name>")
		}
		return commandOK

	case "\\status":
		r.printStatus()
		return commandOK

	case "\\config":
		r.printConfig()
		return commandOK

	case "\\clear":
		fmt.Print("\033[H\033[2J") // ANSI clear screen
		return commandOK

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		fmt.Println("Type \\? for help")
		return commandError
	}
}

func (r *REPL) describeTable(name string) {
	table, err := r.catalog.GetTable(name)
	if err != nil {
		fmt.Printf("no such table: %s\n", name)
		return
	}
	for _, col := range table.VisibleColumns() {
		fmt.Printf("%-20s %s\n", col.Name, col.Type)
	}
}

func (r *REPL) printWelcome() {
	fmt.Println(`
 __      __        _     _ _           _ ____  ____
 \ \    / /       (_)   | (_)         | |  _ \|  _ \
  \ \  / /__ _ __  _  __| |_  ___ __ _| | | | | |_) |
   \ \/ / _ \ '__|| |/ _' | |/ __/ _' | | | | |  _ <
    \  /  __/ |   | | (_| | | (_| (_| | | |_| | |_) |
     \/ \___|_|   |_|\__,_|_|\___\__,_|_|____/|____/

    Query-planning core REPL
    Type HELP; or \? for available commands
    `)
}

func (r *REPL) printHelp() {
	fmt.Println(`
Commands
========

SQL:
  SELECT cols FROM table [WHERE ...]   Query data
  INSERT INTO table VALUES (...)       Insert rows
  UPDATE table SET ... [WHERE]         Update rows
  DELETE FROM table [WHERE]            Delete rows
  CALC expr, ...                       Evaluate expressions with no FROM
  EXPLAIN <statement>                  Print the logical plan instead of running it

Backslash Commands:
  \dt, \tables                     List all tables
  \d <table>                       Describe a table
  \status                          Show REPL status
  \config                          Show configuration
  \clear                           Clear screen
  \?, \help                        Show this help
  \q, \quit                        Exit

Other:
  EXIT; or QUIT;                   Exit the shell
  HELP;                            Show this help

Note: Commands must end with ; (semicolon)
      Backslash commands do not need ;`)
}

func (r *REPL) printStatus() {
	fmt.Println("\nStatus")
	fmt.Println("======")
	fmt.Printf("Tables:          %d\n", len(r.catalog.ListTables()))
	fmt.Printf("Planner batch:   %d\n", r.config.Planner.BatchSize)
	fmt.Printf("Log Level:       %s\n", r.config.Log.Level)
	fmt.Println()
}

func (r *REPL) printConfig() {
	fmt.Println("\nCurrent Configuration")
	fmt.Println("=====================")
	fmt.Printf("Catalog:\n")
	fmt.Printf("  Seed File:               %s\n", r.config.Catalog.SeedFile)
	fmt.Printf("\nPlanner:\n")
	fmt.Printf("  Batch Size:              %d\n", r.config.Planner.BatchSize)
	fmt.Printf("  Correlated Sub-Q Limit:  %d\n", r.config.Planner.CorrelatedSubqueryLimit)
	fmt.Printf("\nLogging:\n")
	fmt.Printf("  Level:                   %s\n", r.config.Log.Level)
	fmt.Printf("  Format:                  %s\n", r.config.Log.Format)
	fmt.Printf("  Output:                  %s\n", r.config.Log.Output)
	fmt.Println()
}

func getHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.qcore_history"
}

// newCompleter creates an auto-completer for the REPL
func newCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("SELECT"),
		readline.PcItem("INSERT"),
		readline.PcItem("UPDATE"),
		readline.PcItem("DELETE"),
		readline.PcItem("CALC"),
		readline.PcItem("EXPLAIN"),
		readline.PcItem("HELP"),
		readline.PcItem("EXIT"),
		readline.PcItem("QUIT"),
		readline.PcItem("\\dt"),
		readline.PcItem("\\d"),
		readline.PcItem("\\status"),
		readline.PcItem("\\config"),
		readline.PcItem("\\clear"),
		readline.PcItem("\\help"),
		readline.PcItem("\\q"),
	)
}
