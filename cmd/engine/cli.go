package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/runner"
)

type globalFlags struct {
	configPath string
	dataDir    string
	headless   bool
	debug      bool
}

// run executes one command and returns the process exit code. Exactly one
// JSON document is written to stdout; everything else goes to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exit := 1
	emitted := false
	emit := func(doc interface{ OK() bool }) {
		if emitted {
			return
		}
		emitted = true
		if err := writeJSON(stdout, doc); err != nil {
			return
		}
		if doc.OK() {
			exit = 0
		}
	}

	root := newRootCmd(emit)
	root.SetArgs(args)
	root.SetOut(stderr)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		emit(runner.Failed(operationFor(root, args), "", apperrors.InvalidInput(err.Error(), nil)))
	}
	if !emitted {
		// help output or a bare invocation; no operation ran
		emit(runner.Failed(operationFor(root, args), "", apperrors.InvalidInput("no operation ran; use scrape, login or send-proposal", nil)))
	}
	return exit
}

func newRootCmd(emit func(interface{ OK() bool })) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "bidscout",
		Short:         "Scrape freelance marketplaces, manage sessions and send proposals",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default <data-dir>/config.yml)")
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "data directory (env BIDSCOUT_DATA_DIR, default .)")
	root.PersistentFlags().BoolVar(&g.headless, "headless", true, "run the browser headless")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "debug logging to stderr")

	root.AddCommand(
		scrapeCmd(&g, emit),
		loginCmd(&g, emit),
		sendProposalCmd(&g, emit),
	)
	return root
}

// operationFor names the operation for a document emitted before the
// command ran, e.g. on a flag parse error.
func operationFor(root *cobra.Command, args []string) string {
	cmd, _, err := root.Find(args)
	if err != nil || cmd == nil || cmd == root {
		return ""
	}
	switch cmd.Name() {
	case "scrape":
		return runner.OpScrape
	case "login":
		return runner.OpLogin
	case "send-proposal":
		return runner.OpSendProposal
	}
	return cmd.Name()
}
