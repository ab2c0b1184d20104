package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/util"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("usage")

var stdout io.Writer = os.Stdout

func (a *app) run(ctx context.Context, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch command {
	case "signup":
		return a.signUp(ctx, fs, args)
	case "verify":
		return a.verify(ctx, fs, args)
	case "summary", "months", "expenses", "export",
		"add-category", "edit-category", "delete-category", "add-expense", "delete-expense":
	case "help", "-h", "--help":
		return errUsage
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	month := fs.String("month", "", "month to show (YYYY-MM)")
	prev := fs.Int("prev", 0, "step back this many months")
	next := fs.Int("next", 0, "step forward this many months")
	out := fs.String("out", a.cfg.ExportDir, "directory for exported reports")
	id := fs.String("id", "", "category or expense id")
	name := fs.String("name", "", "category name")
	budget := fs.String("budget", "", "monthly budget")
	color := fs.String("color", "#6b7280", "category color")
	icon := fs.String("icon", "📦", "category icon")
	categoryID := fs.String("category", "", "expense category id")
	amount := fs.String("amount", "", "expense amount")
	description := fs.String("description", "", "expense description")
	date := fs.String("date", time.Now().Format(domain.DateLayout), "expense date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *month != "" {
		if err := a.months.SelectMonth(*month); err != nil {
			return err
		}
	}
	if err := a.navigate(*prev, *next); err != nil {
		return err
	}

	if err := a.signIn(ctx); err != nil {
		return err
	}
	defer a.finish(ctx)

	switch command {
	case "summary":
		return a.printSummary()
	case "months":
		return a.printMonths()
	case "expenses":
		return a.printExpenses()
	case "export":
		return a.export(*out)
	case "add-category":
		fields, err := categoryFields(*name, *budget, *color, *icon)
		if err != nil {
			return err
		}
		c := a.store.AddCategory(fields)
		fmt.Fprintf(stdout, "Added category %s (%s)\n", c.Name, c.ID)
		return nil
	case "edit-category":
		patch, err := categoryPatch(set, *name, *budget, *color, *icon)
		if err != nil {
			return err
		}
		if err := a.store.UpdateCategory(*id, patch); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Updated category %s\n", *id)
		return nil
	case "delete-category":
		if err := a.store.DeleteCategory(*id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Deleted category %s and its expenses\n", *id)
		return nil
	case "add-expense":
		fields, err := expenseFields(*categoryID, *amount, *description, *date)
		if err != nil {
			return err
		}
		e := a.store.AddExpense(fields)
		fmt.Fprintf(stdout, "Added %s to %s on %s (%s)\n",
			domain.FormatCurrency(e.Amount), a.store.CategoryName(e.CategoryID), util.FormatShortDate(e.Date), e.ID)
		return nil
	case "delete-expense":
		if err := a.store.DeleteExpense(*id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Deleted expense %s\n", *id)
		return nil
	}
	return nil
}

// navigate steps the month window back prev times, then forward next times
func (a *app) navigate(prev, next int) error {
	if prev < 0 || next < 0 {
		return domain.NewValidationError("prev", "prev and next must not be negative")
	}
	for i := 0; i < prev; i++ {
		if _, err := a.months.Navigate(domain.DirectionPrev); err != nil {
			return err
		}
	}
	for i := 0; i < next; i++ {
		if _, err := a.months.Navigate(domain.DirectionNext); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) signUp(ctx context.Context, fs *flag.FlagSet, args []string) error {
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	pending, err := a.gateway.SignUp(ctx, domain.Credentials{Email: *email, Password: *password}, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %s (%s)\n", pending.Message, pending.Identity.Email, pending.Identity.ID)
	return nil
}

func (a *app) verify(ctx context.Context, fs *flag.FlagSet, args []string) error {
	email := fs.String("email", a.cfg.Email, "account email")
	code := fs.String("code", "", "one-time code")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *email == "" || *code == "" {
		return domain.NewValidationError("code", "Email and code are required")
	}

	identity, err := a.gateway.VerifyOTP(ctx, *email, *code)
	if err != nil {
		return err
	}
	defer a.finish(ctx)

	fmt.Fprintf(stdout, "Verified %s; %d categories loaded\n", identity.Email, len(a.store.Categories()))
	return nil
}

func (a *app) printSummary() error {
	month := a.months.Current()
	summary := a.calc.Summarize(a.store.Categories(), a.store.Expenses(), month)

	status := "on track"
	if summary.OverBudget {
		status = "over budget"
	}
	fmt.Fprintf(stdout, "%s\n", summary.Label)
	fmt.Fprintf(stdout, "Budget %s  Spent %s  Remaining %s  Used %s%%  (%s)\n\n",
		domain.FormatCurrency(summary.TotalBudget),
		domain.FormatCurrency(summary.TotalSpent),
		domain.FormatCurrency(summary.Remaining),
		summary.PercentageUsed.StringFixed(2),
		status)

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tSPENT\tBUDGET\tUSED\t")
	for _, c := range summary.Categories {
		note := ""
		if c.OverBudget {
			note = "over by " + domain.FormatCurrency(c.OverBy)
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s%%\t%s\n",
			c.Category.ID, c.Category.Icon, c.Category.Name,
			domain.FormatCurrency(c.Spent), domain.FormatCurrency(c.Category.Budget),
			c.Percentage.StringFixed(2), note)
	}
	return w.Flush()
}

func (a *app) printMonths() error {
	months := a.months.MonthsWithData(a.store.Expenses())
	if len(months) == 0 {
		fmt.Fprintln(stdout, "No expenses recorded yet")
		return nil
	}
	for _, m := range months {
		marker := ""
		if a.months.IsCurrentCalendarMonth(m) {
			marker = " (current)"
		}
		fmt.Fprintf(stdout, "%s  %s%s\n", m, a.months.Label(m), marker)
	}
	return nil
}

func (a *app) printExpenses() error {
	month := a.months.Current()
	expenses := a.calc.SortByDateDesc(a.calc.ExpensesInMonth(a.store.Expenses(), month))
	if len(expenses) == 0 {
		fmt.Fprintf(stdout, "No expenses in %s\n", a.months.Label(month))
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCATEGORY\tDESCRIPTION\tAMOUNT\tID")
	for _, e := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			util.FormatShortDate(e.Date), a.store.CategoryName(e.CategoryID), e.Description,
			domain.FormatCurrency(e.Amount), e.ID)
	}
	return w.Flush()
}

func (a *app) export(dir string) error {
	report, data, err := a.reports.Export(a.store.Categories(), a.store.Expenses(), a.months.Current())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, report.FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, fmt.Sprintf("%s must be a number", field))
	}
	if d.IsNegative() {
		return decimal.Zero, domain.NewValidationError(field, fmt.Sprintf("%s must not be negative", field))
	}
	return d, nil
}

func categoryFields(name, budget, color, icon string) (domain.CategoryFields, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.CategoryFields{}, domain.NewValidationError("name", "name is required")
	}
	b, err := parseAmount("budget", budget)
	if err != nil {
		return domain.CategoryFields{}, err
	}
	return domain.CategoryFields{Name: name, Budget: b, Color: color, Icon: icon}, nil
}

func categoryPatch(set map[string]bool, name, budget, color, icon string) (domain.CategoryPatch, error) {
	var patch domain.CategoryPatch
	if set["name"] {
		patch.Name = &name
	}
	if set["budget"] {
		b, err := parseAmount("budget", budget)
		if err != nil {
			return patch, err
		}
		patch.Budget = &b
	}
	if set["color"] {
		patch.Color = &color
	}
	if set["icon"] {
		patch.Icon = &icon
	}
	return patch, nil
}

func expenseFields(categoryID, amount, description, date string) (domain.ExpenseFields, error) {
	if categoryID == "" {
		return domain.ExpenseFields{}, domain.NewValidationError("category", "category is required")
	}
	a, err := parseAmount("amount", amount)
	if err != nil {
		return domain.ExpenseFields{}, err
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.ExpenseFields{}, domain.NewValidationError("date", "date must be formatted as YYYY-MM-DD")
	}
	return domain.ExpenseFields{CategoryID: categoryID, Amount: a, Description: description, Date: date}, nil
}
