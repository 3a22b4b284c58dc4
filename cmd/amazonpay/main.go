package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "amazonpay",
		Short:        "Amazon Pay MWS client and IPN receiver",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(orderCmd())
	rootCmd.AddCommand(chargeCmd())
	rootCmd.AddCommand(verifyIPNCmd())
	rootCmd.AddCommand(profileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
