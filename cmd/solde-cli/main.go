// Command solde-cli lists and adds transactions through the HTTP API.
//
//	solde-cli list
//	solde-cli add -text "Restaurant" -amount -50
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"solde/internal/cli"
	"solde/internal/client"
	"solde/internal/config"
	"solde/internal/core"
	"solde/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentClient)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			logger.Debug("Command failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("solde-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", client.RootFor(client.UserFacing, cfg.APIURL, cfg.PublicAPIURL), "API root URL")
	timeout := fs.Duration("timeout", cfg.ClientTimeout, "request timeout")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: solde-cli [flags] list | add -text TEXT -amount AMOUNT")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}

	api, err := client.New(*apiURL, *timeout)
	if err != nil {
		return err
	}
	home := client.NewHome(api, client.WriterNotifier{Out: stdout, Err: stderr})

	switch cmd, rest := fs.Arg(0), fs.Args()[1:]; cmd {
	case "list":
		if err := home.Load(ctx); err != nil {
			return err
		}
		printLedger(stdout, home)
		return nil

	case "add":
		addFlags := flag.NewFlagSet("add", flag.ContinueOnError)
		addFlags.SetOutput(stderr)
		text := addFlags.String("text", "", "transaction text")
		amount := addFlags.String("amount", "", "signed amount, negative for an expense")
		if err := addFlags.Parse(rest); err != nil {
			return err
		}

		home.OpenModal()
		home.SetText(*text)
		home.SetAmount(*amount)
		if err := home.Submit(ctx); err != nil {
			return err
		}
		printLedger(stdout, home)
		return nil

	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printLedger(w io.Writer, home *client.Home) {
	totals := home.Totals()
	fmt.Fprintf(w, "Solde: %s  Revenus: %s  Dépenses: %s  Dépenses / revenus: %s\n\n",
		totals.BalanceText(), totals.IncomeText(), totals.ExpenseText(), totals.RatioText())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	txs := home.Transactions()
	if len(txs) == 0 {
		fmt.Fprintln(tw, "Aucune transaction")
		return
	}
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.CreatedAt.Local().Format(time.DateTime), t.Text, core.FormatSigned(t.Amount))
	}
}
