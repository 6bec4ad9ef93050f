// Package main provides the samanainn CLI for trying the chat pipeline offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"samanainn/internal/infra"
)

var (
	verbose bool
	logger  *zap.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "samanainn-cli",
		Short: "Offline tools for the SamanaInn chat assistant",
		Long: `samanainn-cli runs the chat pipeline without a database or redis.

Use it to:
- see how a message is classified
- run turns against the bundled sample catalog
- build booking deep links`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				logger = zap.NewNop()
				return nil
			}
			var err error
			logger, err = infra.NewLogger("debug", "development")
			return err
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline decisions to stderr")

	root.AddCommand(newClassifyCmd(), newChatCmd(), newBookingURLCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
