package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dafibh/budget-ledger/internal/config"
	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/gateway"
	"github.com/dafibh/budget-ledger/internal/identity"
	"github.com/dafibh/budget-ledger/internal/ledger"
	"github.com/dafibh/budget-ledger/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `Usage: ledger <command> [flags]

Account:
  signup           -email -password -name
  verify           -email -code

Views (signed in with LEDGER_EMAIL / LEDGER_PASSWORD):
  summary          [-month YYYY-MM] [-prev N] [-next N]
  months
  expenses         [-month YYYY-MM] [-prev N] [-next N]
  export           [-month YYYY-MM] [-prev N] [-next N] [-out DIR]

  -prev and -next step the window from -month, or from the current month.

Changes:
  add-category     -name -budget [-color] [-icon]
  edit-category    -id [-name] [-budget] [-color] [-icon]
  delete-category  -id
  add-expense      -category -amount [-description] [-date YYYY-MM-DD]
  delete-expense   -id
`

// app wires the client-side core for a single command
type app struct {
	cfg     *config.ClientConfig
	store   *ledger.Store
	gateway *gateway.Gateway
	months  *service.MonthService
	calc    *service.CalculationService
	reports *service.ReportService
}

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if os.Getenv("LEDGER_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg)
	defer a.gateway.Close()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func newApp(cfg *config.ClientConfig) *app {
	store := ledger.NewStore()
	remote := gateway.NewAPIClient(cfg.APIURL, cfg.AnonKey, cfg.Timeout)
	identityClient := identity.NewClient(cfg.IdentityURL, cfg.AnonKey)
	calc := service.NewCalculationService()

	return &app{
		cfg:     cfg,
		store:   store,
		gateway: gateway.New(store, remote, identityClient),
		months:  service.NewMonthService(nil),
		calc:    calc,
		reports: service.NewReportService(calc, service.NewXLSXReportWriter()),
	}
}

// signIn opens a session with the configured credentials
func (a *app) signIn(ctx context.Context) error {
	if a.cfg.Email == "" || a.cfg.Password == "" {
		return errors.New("set LEDGER_EMAIL and LEDGER_PASSWORD to sign in")
	}
	who, err := a.gateway.SignIn(ctx, domain.Credentials{Email: a.cfg.Email, Password: a.cfg.Password})
	if err != nil {
		return err
	}
	log.Debug().Str("user_id", who.ID).Msg("Signed in")
	return nil
}

// finish flushes pending pushes and ends the session
func (a *app) finish(ctx context.Context) {
	a.gateway.Wait()
	a.gateway.SignOut(ctx)
}

// describe turns typed errors into the message a person should see
func describe(err error) string {
	var validationErr *domain.ValidationError
	var preconditionErr *domain.PreconditionError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &preconditionErr):
		return preconditionErr.Message
	case domain.IsAuthError(err):
		return "not authorized: " + err.Error()
	}
	return err.Error()
}
