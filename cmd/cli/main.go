package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nickyhof/GateDB"
	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/db"
	"github.com/nickyhof/GateDB/ps"
	"github.com/nickyhof/GateDB/sql"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

const maxHistory = 1000

// Version is set at build time via -ldflags
var Version = "dev"

// CLI holds the CLI state
type CLI struct {
	ctx         context.Context
	config      *core.Config
	engine      *db.Engine
	out         io.Writer
	history     []string
	historyFile string
}

func main() {
	configPath := flag.String("config", "", "Connection config (path, file://, http(s):// or s3://); in-memory DuckDB if empty")
	zone := flag.String("zone", "default", "Zone to connect to")
	sqlFile := flag.String("sqlFile", "", "SQL file to execute (non-interactive)")
	userName := flag.String("name", "GateDB", "User name recorded in failure logs")
	userEmail := flag.String("email", "cli@gatedb.local", "User email recorded in failure logs")
	flag.Parse()

	printBanner()

	ctx := context.Background()

	config := &core.Config{Connections: map[string]core.Zone{"default": {Scheme: "duckdb"}}}
	if *configPath != "" {
		loaded, err := ps.LoadConfig(ctx, *configPath)
		if err != nil {
			fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		config = loaded
		fmt.Printf("%sUsing config: %s%s\n", SuccessColor, *configPath, ResetColor)
	} else {
		fmt.Printf("%sUsing in-memory DuckDB%s\n", SuccessColor, ResetColor)
	}

	instance := GateDB.Open(config)
	engine, err := instance.Connect(ctx, core.Identity{Name: *userName, Email: *userEmail}, *zone)
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	defer engine.Close()

	cli := newCLI(ctx, config, engine, os.Stdout)
	cli.historyFile = getHistoryPath()
	cli.loadHistory()

	if *sqlFile != "" {
		if err := cli.importFile(*sqlFile); err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		return
	}

	cli.run(os.Stdin)
}

func newCLI(ctx context.Context, config *core.Config, engine *db.Engine, out io.Writer) *CLI {
	return &CLI{
		ctx:     ctx,
		config:  config,
		engine:  engine,
		out:     out,
		history: make([]string, 0),
	}
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("GateDB v%s", Version)
	padding := max(bannerWidth-len(versionLine)-2, 0) // -2 for "  " margins
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║   Shape-checked SQL access layer      ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

func (cli *CLI) run(in io.Reader) {
	reader := bufio.NewReader(in)
	var multiLineBuffer strings.Builder

	for {
		fmt.Fprint(cli.out, cli.getPrompt(multiLineBuffer.Len() > 0))

		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintf(cli.out, "\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			cli.saveHistory()
			return
		}

		input = strings.TrimRight(input, "\r\n")
		if strings.TrimSpace(input) == "" {
			continue
		}

		// Dot commands only at the start of a statement
		if multiLineBuffer.Len() == 0 && strings.HasPrefix(input, ".") {
			if !cli.handleCommand(input) {
				cli.saveHistory()
				return
			}
			continue
		}

		// Accumulate until the statement ends with ;
		multiLineBuffer.WriteString(input)
		trimmed := strings.TrimSpace(multiLineBuffer.String())
		if !strings.HasSuffix(trimmed, ";") {
			multiLineBuffer.WriteString(" ")
			continue
		}

		statement := strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
		multiLineBuffer.Reset()
		if statement == "" {
			continue
		}

		cli.addToHistory(statement + ";")
		cli.display(statement)
	}
}

func (cli *CLI) display(statement string) {
	result, message, err := cli.execute(statement)
	switch {
	case err != nil:
		fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
	case message != "":
		fmt.Fprintf(cli.out, "%s✓ %s%s\n", SuccessColor, message, ResetColor)
	default:
		result.Display(cli.out)
	}
}

// execute routes one statement to the engine by its leading keyword.
// Statements of no known kind run unchecked through Execute.
func (cli *CLI) execute(statement string) (db.QueryResult, string, error) {
	ctx := cli.ctx
	engine := cli.engine

	switch sql.Classify(statement) {
	case sql.SelectKind:
		result, err := engine.Select(ctx, statement, nil)
		return db.QueryResult{Result: result}, "", err

	case sql.InsertKind:
		affected, err := engine.Insert(ctx, statement)
		return db.QueryResult{RowsAffected: affected}, "", err

	case sql.UpdateKind:
		affected, err := engine.Update(ctx, statement, nil)
		return db.QueryResult{RowsAffected: affected}, "", err

	case sql.DeleteKind:
		affected, err := engine.Delete(ctx, statement, nil)
		return db.QueryResult{RowsAffected: affected}, "", err

	case sql.DDLKind:
		affected, err := engine.Statement(ctx, statement)
		return db.QueryResult{RowsAffected: affected}, "", err

	case sql.BeginKind:
		return db.QueryResult{}, "Transaction started", engine.Begin(ctx)

	case sql.CommitKind:
		return db.QueryResult{}, "Transaction committed", engine.Commit()

	case sql.RollbackKind:
		return db.QueryResult{}, "Transaction rolled back", engine.Rollback()

	case sql.UseKind:
		fields := strings.Fields(statement)
		if len(fields) != 2 {
			return db.QueryResult{}, "", fmt.Errorf("usage: USE <zone>")
		}
		return cli.switchZone(fields[1])

	default:
		result, err := engine.Execute(ctx, statement, nil)
		return result, "", err
	}
}

func (cli *CLI) switchZone(zone string) (db.QueryResult, string, error) {
	if err := cli.engine.SwitchTo(cli.ctx, zone); err != nil {
		return db.QueryResult{}, "", err
	}
	return db.QueryResult{}, "Using zone: " + cli.engine.Zone(), nil
}

func (cli *CLI) getPrompt(multiLine bool) string {
	if multiLine {
		return fmt.Sprintf("%s   ...>%s ", PromptColor, ResetColor)
	}

	zonePart := ""
	if zone := cli.engine.Zone(); zone != "" {
		zonePart = fmt.Sprintf(" (%s)", zone)
	}
	txPart := ""
	if cli.engine.InTransaction() {
		txPart = "*"
	}

	return fmt.Sprintf("%sgatedb%s%s>%s ", PromptColor, zonePart, txPart, ResetColor)
}

// handleCommand runs a dot command. It returns false when the CLI should exit.
func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return true
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit", ".q":
		fmt.Fprintf(cli.out, "%sGoodbye!%s\n", SuccessColor, ResetColor)
		return false

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".zone", ".use":
		if len(parts) > 1 {
			_, message, err := cli.switchZone(parts[1])
			if err != nil {
				fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
			} else {
				fmt.Fprintf(cli.out, "%s✓ %s%s\n", SuccessColor, message, ResetColor)
			}
		} else {
			fmt.Fprintf(cli.out, "Current zone: %s\n", cli.engine.Zone())
		}

	case ".zones":
		cli.printZones()

	case ".errors":
		snapshot := cli.engine.LastError()
		fmt.Fprintf(cli.out, "Statement:  %s\n", snapshot.Statement)
		fmt.Fprintf(cli.out, "Connection: %s\n", snapshot.Connection)

	case ".clear", ".cls":
		fmt.Fprint(cli.out, "\033[H\033[2J")

	case ".history":
		cli.printHistory()

	case ".version":
		fmt.Fprintf(cli.out, "GateDB version %s\n", Version)

	case ".import":
		if len(parts) > 1 {
			if err := cli.importFile(parts[1]); err != nil {
				fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
			}
		} else {
			fmt.Fprintf(cli.out, "%s✗ Usage: .import <file.sql>%s\n", ErrorColor, ResetColor)
		}

	default:
		fmt.Fprintf(cli.out, "%s✗ Unknown command: %s (type .help for commands)%s\n", ErrorColor, parts[0], ResetColor)
	}

	return true
}

func (cli *CLI) printHelp() {
	out := cli.out
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(out, "  .help, .h        Show this help message")
	fmt.Fprintln(out, "  .quit, .exit     Exit the CLI")
	fmt.Fprintln(out, "  .zone [name]     Show or switch the current zone")
	fmt.Fprintln(out, "  .zones           List configured zones")
	fmt.Fprintln(out, "  .errors          Show the last statement and connection diagnostics")
	fmt.Fprintln(out, "  .import <file>   Execute SQL statements from a file")
	fmt.Fprintln(out, "  .history         Show command history")
	fmt.Fprintln(out, "  .clear           Clear the screen")
	fmt.Fprintln(out, "  .version         Show version info")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s%sChecked statements:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(out, "  SELECT <cols> FROM <table> [...];")
	fmt.Fprintln(out, "  INSERT INTO <table> (<cols>) VALUES (<vals>)[, (<vals>)...];")
	fmt.Fprintln(out, "  INSERT INTO <table> SET <col> = <val>, ...;")
	fmt.Fprintln(out, "  UPDATE <table> SET <col> = <val> WHERE ...;")
	fmt.Fprintln(out, "  DELETE FROM <table> WHERE ...;")
	fmt.Fprintln(out, "  CREATE TABLE ... | ALTER TABLE ... | DROP ... | TRUNCATE ...;")
	fmt.Fprintln(out, "  BEGIN; COMMIT; ROLLBACK; USE <zone>;")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Any other statement runs unchecked in the current session.")
	fmt.Fprintln(out)
}

func (cli *CLI) printZones() {
	names := make([]string, 0, len(cli.config.Connections))
	for name := range cli.config.Connections {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		marker := " "
		if name == cli.engine.Zone() {
			marker = "*"
		}
		fmt.Fprintf(cli.out, " %s %s (%s)\n", marker, name, cli.config.Connections[name].Scheme)
	}
}

func (cli *CLI) addToHistory(cmd string) {
	// Don't add duplicates of the last command
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	if len(cli.history) > maxHistory {
		cli.history = cli.history[len(cli.history)-maxHistory:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Fprintln(cli.out, "No command history")
		return
	}

	start := max(len(cli.history)-20, 0)
	for i := start; i < len(cli.history); i++ {
		fmt.Fprintf(cli.out, "  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gatedb_history")
}

func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, scanner.Text())
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	start := max(len(cli.history)-maxHistory, 0)
	for i := start; i < len(cli.history); i++ {
		_, _ = file.WriteString(cli.history[i] + "\n")
	}
}

// importFile reads and executes SQL statements from a file
func (cli *CLI) importFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	successCount := 0
	errorCount := 0

	for i, statement := range splitStatements(string(data)) {
		result, message, err := cli.execute(statement)
		if err != nil {
			fmt.Fprintf(cli.out, "%s[%d] ✗ %s%s\n", ErrorColor, i+1, truncate(statement, 50), ResetColor)
			fmt.Fprintf(cli.out, "      Error: %v\n", err)
			errorCount++
			continue
		}

		successCount++
		detail := message
		switch {
		case detail != "":
		case len(result.Result.Columns) > 0:
			detail = fmt.Sprintf("%d rows", len(result.Result.Rows))
		default:
			detail = fmt.Sprintf("%d affected", result.RowsAffected)
		}
		fmt.Fprintf(cli.out, "%s[%d] ✓ %s (%s)%s\n", SuccessColor, i+1, truncate(statement, 50), detail, ResetColor)
	}

	fmt.Fprintf(cli.out, "\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, successCount, errorCount, ResetColor)

	return nil
}

// splitStatements splits SQL content into individual statements
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := byte(0)

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if (ch == '\'' || ch == '"') && (i == 0 || content[i-1] != '\\') {
			if !inString {
				inString = true
				stringChar = ch
			} else if ch == stringChar {
				inString = false
			}
		}

		// Skip line comments
		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			continue
		}

		if !inString && ch == ';' {
			if statement := strings.TrimSpace(current.String()); statement != "" {
				statements = append(statements, statement)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	// Last statement may lack a semicolon
	if statement := strings.TrimSpace(current.String()); statement != "" {
		statements = append(statements, statement)
	}

	return statements
}

// truncate shortens a string to limit bytes with an ellipsis
func truncate(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
