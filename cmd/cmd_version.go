package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auditforge/paygate/modules/payment"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show paygate version",
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Println(payment.Version)
			return nil
		},
	}
}
