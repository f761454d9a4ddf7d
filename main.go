package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/server"
	"github.com/carn181/phplsp/transport"
)

var (
	transportFlag string
	addrFlag      string
	logLevelFlag  string
)

var rootCmd = &cobra.Command{
	Use:           "phplsp",
	Short:         "Language server for PHP",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(logging.Options{Level: logging.ParseLevel(logLevelFlag)})
		logging.Logger.Info("starting", "transport", transportFlag)

		var method transport.Method
		switch transportFlag {
		case "stdio":
			method = transport.Stdio
		case "socket":
			method = transport.Socket
		default:
			return fmt.Errorf("unknown transport %q", transportFlag)
		}

		var s server.Server
		if err := s.Init(method, addrFlag); err != nil {
			return err
		}
		return s.Run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&transportFlag, "transport", "stdio", "transport to serve on: stdio or socket")
	rootCmd.Flags().StringVar(&addrFlag, "addr", ":5007", "listen address for the socket transport")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "info", "log level: debug, info, warn or error")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
