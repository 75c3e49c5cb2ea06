package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/gateway"
)

func newRefundCommand(c *cli) *cobra.Command {
	var (
		chargeID string
		amount   int64
	)

	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Refund a charge",
		Long:  `Refund part or all of a charge. --amount is in the smallest currency unit (satang for THB).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if amount <= 0 {
				return errors.New("--amount must be a positive number of subunits")
			}
			env, client, err := c.connect()
			if err != nil {
				return err
			}

			charge, err := client.RetrieveCharge(cmd.Context(), chargeID)
			if err != nil {
				return fmt.Errorf("find charge %s: %w", chargeID, err)
			}
			if amount > charge.Amount-charge.Refunded {
				return fmt.Errorf("amount %d exceeds the refundable %d of charge %s", amount, charge.Amount-charge.Refunded, charge.ID)
			}

			refund, err := client.RefundCharge(cmd.Context(), charge.ID, gateway.RefundParams{Amount: amount})
			if err != nil {
				return fmt.Errorf("refund charge %s: %w", charge.ID, err)
			}
			env.Logger.Info("charge refunded",
				zap.String("charge_id", charge.ID),
				zap.String("refund_id", refund.ID),
				zap.Int64("amount", refund.Amount),
			)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Charge refunded successfully!")
			writeTable(out, [][2]string{
				{"Refund ID", refund.ID},
				{"Charge ID", charge.ID},
				{"Amount", refund.DisplayAmount().String() + " " + strings.ToUpper(refund.Currency)},
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&chargeID, "charge", "", "charge ID to refund")
	cmd.Flags().Int64Var(&amount, "amount", 0, "amount to refund in the smallest currency unit")
	_ = cmd.MarkFlagRequired("charge")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
