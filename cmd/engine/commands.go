package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/runner"
)

func scrapeCmd(g *globalFlags, emit func(interface{ OK() bool })) *cobra.Command {
	var req runner.ScrapeRequest
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape job listings, store the new ones and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), g, cmd.Flags())
			if err != nil {
				emit(runner.Failed(runner.OpScrape, req.Platform, err))
				return nil
			}
			defer a.Close()
			emit(a.runner.Scrape(cmd.Context(), req))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Platform, "platform", "p", "all", "workana, upwork or all")
	cmd.Flags().StringVar(&req.UserID, "user-id", "", "scrape with this user's stored session")
	return cmd
}

func loginCmd(g *globalFlags, emit func(interface{ OK() bool })) *cobra.Command {
	var req runner.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a platform and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("BIDSCOUT_PASSWORD")
			}
			a, err := openApp(cmd.Context(), g, cmd.Flags())
			if err != nil {
				emit(runner.Failed(runner.OpLogin, req.Platform, err))
				return nil
			}
			defer a.Close()
			emit(a.runner.Login(cmd.Context(), req))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Platform, "platform", "p", "", "workana or upwork")
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "account email or username")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (env BIDSCOUT_PASSWORD, else keychain)")
	cmd.Flags().StringVar(&req.UserID, "user-id", "", "key for the stored session (default username)")
	cmd.Flags().BoolVar(&req.SavePassword, "save-password", false, "store the password in the OS keychain after login")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func sendProposalCmd(g *globalFlags, emit func(interface{ OK() bool })) *cobra.Command {
	var (
		req      runner.ProposalRequest
		textFile string
	)
	cmd := &cobra.Command{
		Use:   "send-proposal",
		Short: "Send a proposal for one job using a stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if textFile != "" {
				b, err := readText(textFile)
				if err != nil {
					emit(runner.Failed(runner.OpSendProposal, req.Platform, apperrors.InvalidInput("read proposal text", err)))
					return nil
				}
				req.Text = b
			}
			a, err := openApp(cmd.Context(), g, cmd.Flags())
			if err != nil {
				emit(runner.Failed(runner.OpSendProposal, req.Platform, err))
				return nil
			}
			defer a.Close()
			emit(a.runner.SendProposal(cmd.Context(), req))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Platform, "platform", "p", "", "workana or upwork (default: from session or link)")
	cmd.Flags().StringVar(&req.JobLink, "link", "", "job link")
	cmd.Flags().StringVar(&req.Text, "text", "", "proposal text")
	cmd.Flags().StringVar(&textFile, "text-file", "", "read proposal text from a file (- for stdin)")
	cmd.Flags().StringVar(&req.Session, "session", "", "session file path or inline session JSON")
	cmd.Flags().StringVar(&req.UserID, "user-id", "", "load the stored session for this user")
	cmd.MarkFlagsMutuallyExclusive("text", "text-file")
	cmd.MarkFlagsMutuallyExclusive("session", "user-id")
	_ = cmd.MarkFlagRequired("link")
	return cmd
}

func readText(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = readAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
