// Package cli команды терминального клиента BudgetKeeper.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iudanet/budgetkeeper/internal/client/api"
	"github.com/iudanet/budgetkeeper/internal/client/auth"
	"github.com/iudanet/budgetkeeper/internal/client/iocli"
	pkgapi "github.com/iudanet/budgetkeeper/pkg/api"
)

// ErrUnknownCommand команда не найдена
var ErrUnknownCommand = errors.New("unknown command")

// BudgetAPI запросы к бюджетным ресурсам сервера
type BudgetAPI interface {
	Categories(ctx context.Context, token string) ([]pkgapi.Category, error)
	CreateTransaction(ctx context.Context, token string, req pkgapi.TransactionRequest) (*pkgapi.Transaction, error)
	ListTransactions(ctx context.Context, token string, q api.TransactionQuery) (*pkgapi.TransactionList, error)
	Dashboard(ctx context.Context, token string, year, month int) (*pkgapi.Dashboard, error)
	MonthlyReport(ctx context.Context, token string, months int) (*pkgapi.MonthlyReport, error)
}

type Cli struct {
	io     iocli.IO
	auth   *auth.Service
	budget BudgetAPI
}

func New(io iocli.IO, authService *auth.Service, budget BudgetAPI) *Cli {
	return &Cli{
		io:     io,
		auth:   authService,
		budget: budget,
	}
}

type command struct {
	run  func(c *Cli, ctx context.Context, args []string) error
	name string
	args string
	help string
}

var commands = []command{
	{name: "register", help: "Register new account", run: (*Cli).runRegister},
	{name: "activate", args: "<token>", help: "Activate account with the token from the e-mail", run: (*Cli).runActivate},
	{name: "login", help: "Login to server", run: (*Cli).runLogin},
	{name: "logout", help: "Logout and revoke the token", run: (*Cli).runLogout},
	{name: "status", help: "Show local session status", run: (*Cli).runStatus},
	{name: "whoami", help: "Show profile from server", run: (*Cli).runWhoami},
	{name: "categories", help: "List available categories", run: (*Cli).runCategories},
	{name: "tx-add", args: "-amount 12.50 [-type expense] [-category ID] [-desc TEXT] [-date YYYY-MM-DD]", help: "Add transaction", run: (*Cli).runTxAdd},
	{name: "tx-list", args: "[-from DATE] [-to DATE] [-type TYPE] [-category ID] [-limit N] [-offset N]", help: "List transactions", run: (*Cli).runTxList},
	{name: "dashboard", args: "[-year YYYY] [-month M]", help: "Monthly summary", run: (*Cli).runDashboard},
	{name: "report", args: "[-months N]", help: "Monthly income and expense report (Pro, Admin)", run: (*Cli).runReport},
}

// Run выполняет команду с аргументами
func (c *Cli) Run(ctx context.Context, name string, args []string) error {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd.run(c, ctx, args)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

// newFlagSet набор флагов команды; ошибки разбора возвращаются, а не завершают процесс
func (c *Cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.io)
	return fs
}

func PrintUsage(w io.Writer) {
	p := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	p("BudgetKeeper Client\n\n")
	p("Usage:\n")
	p("  budgetkeeper [OPTIONS] COMMAND [ARGS]\n\n")
	p("Options:\n")
	p("  --version      Show version information\n")
	p("  --server URL   Server URL (default: http://localhost:8080)\n")
	p("  --db PATH      Path to local session database (default: budgetkeeper-client.db)\n\n")
	p("Commands:\n")
	for _, cmd := range commands {
		p("  %-12s %s\n", cmd.name, cmd.help)
		if cmd.args != "" {
			p("  %-12s   %s %s\n", "", cmd.name, cmd.args)
		}
	}
	p("\nExamples:\n")
	p("  budgetkeeper register\n")
	p("  budgetkeeper login\n")
	p("  budgetkeeper tx-add -amount 12.50 -desc lunch\n")
	p("  budgetkeeper tx-add -type income -amount 2500 -date 2026-03-01\n")
	p("  budgetkeeper dashboard -month 2\n")
	p("  budgetkeeper --server https://budget.example.com login\n")
}
