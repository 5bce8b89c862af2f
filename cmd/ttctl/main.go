package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"schooltimetable/internal/app"
	"schooltimetable/internal/config"
	"schooltimetable/internal/security"
	"schooltimetable/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: timetable_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Replace the whole timetable instead of merging slots (WARNING: destructive)")

	// Validate flags
	validateEmail := validateCmd.Bool("email", false, "Mail the report to REPORT_TO_EMAIL")

	// Token flags
	tokenEditor := tokenCmd.String("editor", "", "Editor name (required)")
	tokenTTL := tokenCmd.Duration("ttl", 24*time.Hour, "Token lifetime")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	// Tokens only need the secret, not the database
	if os.Args[1] == "token" {
		tokenCmd.Parse(os.Args[2:])
		handleToken(cfg, *tokenEditor, *tokenTTL)
		return
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	// os.Exit skips deferred calls, so the database is closed explicitly
	exitCode := 0
	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(application.Backup, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			exitCode = 1
			break
		}
		handleImport(application.Backup, *importInput, *importClear)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if !handleValidate(cfg, application, *validateEmail) {
			exitCode = 2
		}

	default:
		printUsage()
		exitCode = 1
	}

	if err := application.Close(); err != nil {
		log.Printf("Failed to close: %v", err)
	}
	os.Exit(exitCode)
}

func handleExport(backupService *service.BackupService, outputPath string) {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("timetable_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	log.Printf("Exporting timetable to: %s", outputPath)
	if err := backupService.Export(outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fileInfo, err := os.Stat(outputPath)
	if err == nil {
		log.Printf("Export complete! File size: %.2f KB", float64(fileInfo.Size())/1024)
	}
}

func handleImport(backupService *service.BackupService, inputPath string, clearData bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	if clearData {
		fmt.Print("WARNING: This will replace the whole timetable. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Println("Import cancelled")
			return
		}
	}

	log.Printf("Importing timetable from: %s", inputPath)
	if err := backupService.Import(inputPath, clearData); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println("Import complete!")
}

// handleValidate prints the report and returns false when errors were found
func handleValidate(cfg *config.Config, application *app.App, email bool) bool {
	results := application.Engine.Validate()
	summary := application.Engine.GetSummary(results)

	fmt.Println(summary)
	for _, issue := range results.Errors {
		fmt.Printf("  ERROR   [%s] %s\n", issue.RuleID, issue.Message)
	}
	for _, issue := range results.Warnings {
		fmt.Printf("  WARNING [%s] %s\n", issue.RuleID, issue.Message)
	}
	for _, issue := range results.Info {
		fmt.Printf("  INFO    [%s] %s\n", issue.RuleID, issue.Message)
	}

	if email {
		if cfg.ReportToEmail == "" {
			log.Fatalf("REPORT_TO_EMAIL must be set to mail the report")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
		if err != nil {
			log.Fatalf("Failed to initialize email service: %v", err)
		}
		if err := emailService.SendValidationReport(ctx, cfg.ReportToEmail, application.School.Name, results, summary); err != nil {
			log.Fatalf("Failed to send report: %v", err)
		}
	}

	return len(results.Errors) == 0
}

func handleToken(cfg *config.Config, editor string, ttl time.Duration) {
	if editor == "" {
		log.Fatalf("-editor flag is required")
	}
	token, err := security.NewEditorTokens(cfg.EditorTokenSecret).Issue(editor, ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}

func printUsage() {
	fmt.Println("School Timetable Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ttctl export [options]      Export the timetable to a JSON file")
	fmt.Println("  ttctl import [options]      Import a timetable from a JSON file")
	fmt.Println("  ttctl validate [-email]     Run the validation rules and print a report")
	fmt.Println("  ttctl token -editor <name>  Issue an editor token for the API")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: timetable_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Replace the whole timetable instead of merging slots")
	fmt.Println()
	fmt.Println("Token Options:")
	fmt.Println("  -editor <name>    Editor name (required)")
	fmt.Println("  -ttl <duration>   Token lifetime (default: 24h)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE               Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH               SQLite database path (default: ./timetable.db)")
	fmt.Println("  DATABASE_URL          PostgreSQL or MySQL connection URL")
	fmt.Println("  SCHOOL_CONFIG_PATH    School description JSON (default: built-in sample)")
	fmt.Println("  EDITOR_TOKEN_SECRET   Secret used to sign editor tokens")
	fmt.Println("  REPORT_TO_EMAIL       Recipient of 'validate -email'")
}
