// billctl drives the employee expense workflow from the command line:
// submit a new bill with its receipt, list submitted bills, export the
// list for accounting.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/billedhq/expense-client/internal/attachment"
	"github.com/billedhq/expense-client/internal/billlist"
	"github.com/billedhq/expense-client/internal/config"
	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/billedhq/expense-client/internal/export"
	"github.com/billedhq/expense-client/internal/form"
	"github.com/billedhq/expense-client/internal/router"
	"github.com/billedhq/expense-client/internal/session"
	"github.com/billedhq/expense-client/internal/store/api"
	"github.com/billedhq/expense-client/internal/submission"
	"github.com/billedhq/expense-client/internal/views"
	"github.com/billedhq/expense-client/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	_ = gotenv.Load()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "login":
		err = runLogin(args)
	case "list":
		err = runList(args)
	case "submit":
		err = runSubmit(args)
	case "export":
		err = runExport(args)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: billctl <login|list|submit|export> [flags]")
}

type env struct {
	cfg    *config.Config
	sess   session.Context
	client *api.Client
	logger *zap.Logger
}

func loadEnv(configPath string, needSession bool) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: "stderr",
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:    cfg,
		client: api.NewClient(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, logger),
		logger: logger,
	}

	if needSession {
		data, err := os.ReadFile(cfg.Session.Path)
		if err != nil {
			return nil, fmt.Errorf("no session found, run billctl login first: %w", err)
		}
		e.sess, err = session.FromJSON(data)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.yaml", "Path to configuration file")
	email := fs.String("email", "", "Employee email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required")
	}
	if err := utils.ValidateEmail(*email); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Session.Path), 0755); err != nil {
		return err
	}
	blob := fmt.Sprintf(`{"email":%q,"type":"Employee"}`, *email)
	if err := os.WriteFile(cfg.Session.Path, []byte(blob), 0600); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", *email)
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.yaml", "Path to configuration file")
	asHTML := fs.Bool("html", false, "Emit the rendered table markup instead of text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*configPath, true)
	if err != nil {
		return err
	}

	loader := billlist.NewLoader(e.client, e.logger)
	bills, err := loader.Load(context.Background())
	if err != nil {
		// The error panel carries the upstream message verbatim
		fmt.Println(views.ErrorPanel(err))
		return err
	}

	if *asHTML {
		markup, err := views.BillRows(bills)
		if err != nil {
			return err
		}
		fmt.Println(markup)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tNOM\tMONTANT\tSTATUT")
	for _, b := range bills {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f €\t%s\n", b.FormattedDate, b.Type, b.Name, b.Amount, b.StatusLabel)
	}
	return w.Flush()
}

func runSubmit(args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.yaml", "Path to configuration file")
	filePath := fs.String("file", "", "Receipt image (jpg, jpeg or png)")
	expenseType := fs.String("type", "", "Expense category")
	name := fs.String("name", "", "Expense label")
	date := fs.String("date", "", "Expense date (YYYY-MM-DD)")
	amount := fs.String("amount", "", "Amount")
	vat := fs.String("vat", "", "VAT amount")
	pct := fs.String("pct", "", "Percentage (defaults to 20)")
	commentary := fs.String("commentary", "", "Free-text commentary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *filePath == "" {
		return fmt.Errorf("-file is required")
	}

	e, err := loadEnv(*configPath, true)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("failed to read receipt: %w", err)
	}

	fileName := filepath.Base(*filePath)
	candidate := entity.AttachmentCandidate{
		FileName:  fileName,
		Extension: attachment.ExtensionOf(fileName),
		Content:   content,
	}

	navigator := router.NavigatorFunc(func(pathname string) {
		e.logger.Info("Navigation requested", zap.String("pathname", pathname))
	})

	controller := submission.NewController(e.client, attachment.NewValidator(), navigator, e.sess, e.logger)

	ctx := context.Background()
	if err := controller.HandleFileSelected(ctx, candidate); err != nil {
		return err
	}
	controller.WaitForUpload()
	if controller.StagedUpload().Key == "" {
		// The transport failure itself is already on the log
		return fmt.Errorf("receipt upload failed, bill not submitted")
	}

	fields := form.Values{
		ExpenseType: *expenseType,
		ExpenseName: *name,
		ExpenseDate: *date,
		AmountRaw:   *amount,
		VATRaw:      *vat,
		PctRaw:      *pct,
		Comment:     *commentary,
	}
	if err := controller.HandleSubmit(ctx, fields); err != nil {
		return err
	}

	fmt.Printf("Bill submitted (%s)\n", controller.StagedUpload().Key)
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.yaml", "Path to configuration file")
	outputPath := fs.String("out", "bills.xlsx", "Output workbook path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*configPath, true)
	if err != nil {
		return err
	}

	loader := billlist.NewLoader(e.client, e.logger)
	bills, err := loader.Load(context.Background())
	if err != nil {
		return err
	}

	exporter := export.NewExcelExporter(e.logger)
	if err := exporter.Export(bills, *outputPath); err != nil {
		return err
	}
	fmt.Printf("Exported %d bills to %s\n", len(bills), *outputPath)
	return nil
}
