package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/a2n2k3p4/omise-payments/config"
	"github.com/a2n2k3p4/omise-payments/gateway"
	"github.com/a2n2k3p4/omise-payments/money"
)

const timeLayout = "2006-01-02 15:04:05 -07:00"

func newAccountCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the Omise account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, client, err := c.connect()
			if err != nil {
				return err
			}
			acc, err := client.RetrieveAccount(cmd.Context())
			if err != nil {
				return fmt.Errorf("retrieve account: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Account information retrieved successfully!")
			writeTable(out, [][2]string{
				{"ID", acc.ID},
				{"Email", acc.Email},
				{"Team", acc.Team},
				{"Country", acc.Country},
				{"Currency", strings.ToUpper(acc.Currency)},
				{"Supported Currencies", strings.ToUpper(strings.Join(acc.SupportedCurrencies, ", "))},
				{"API Version", acc.APIVersion},
				{"Webhook URI", acc.WebhookURI},
				{"Zero Interest Installments", strconv.FormatBool(acc.ZeroInterestInstallments)},
				{"Environment", environment(env.Config.Omise)},
				{"Public Key", env.Config.Omise.PublicKey()},
			})
			return nil
		},
	}
}

func newBalanceCommand(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the Omise account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := c.connect()
			if err != nil {
				return err
			}
			bal, err := client.RetrieveBalance(cmd.Context())
			if err != nil {
				return fmt.Errorf("retrieve balance: %w", err)
			}

			out := cmd.OutOrStdout()
			total := money.ToCurrencyUnit(bal.Total, bal.Currency)
			transferable := money.ToCurrencyUnit(bal.Transferable, bal.Currency)
			reserve := money.ToCurrencyUnit(bal.Reserve, bal.Currency)
			onHold := money.ToCurrencyUnit(bal.OnHold, bal.Currency)

			if asJSON {
				return json.NewEncoder(out).Encode(map[string]any{
					"total":        total,
					"transferable": transferable,
					"reserved":     reserve,
					"on_hold":      onHold,
					"currency":     strings.ToUpper(bal.Currency),
					"created_at":   bal.Created.Format(timeLayout),
				})
			}

			fmt.Fprintln(out, "Balance information retrieved successfully!")
			writeTable(out, [][2]string{
				{"Total", total.StringFixed(money.Places(bal.Currency))},
				{"Transferable", transferable.StringFixed(money.Places(bal.Currency))},
				{"Reserved", reserve.StringFixed(money.Places(bal.Currency))},
				{"On Hold", onHold.StringFixed(money.Places(bal.Currency))},
				{"Currency", strings.ToUpper(bal.Currency)},
				{"Created At", bal.Created.Format(timeLayout)},
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newCapabilitiesCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List the payment methods enabled on the Omise account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := c.connect()
			if err != nil {
				return err
			}
			caps, err := client.RetrieveCapabilities(cmd.Context())
			if err != nil {
				return fmt.Errorf("retrieve capabilities: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Country: %s\n", caps.Country)
			fmt.Fprintf(out, "Zero interest installments: %t\n", caps.ZeroInterestInstallments)
			if len(caps.Banks) > 0 {
				fmt.Fprintf(out, "Banks: %s\n", strings.Join(caps.Banks, ", "))
			}
			fmt.Fprintln(out)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tCURRENCIES\tCARD BRANDS\tINSTALLMENT TERMS\tBANKS")
			for _, m := range caps.PaymentMethods {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					m.Name,
					orDash(strings.ToUpper(strings.Join(m.Currencies, ", "))),
					orDash(strings.Join(m.CardBrands, ", ")),
					orDash(joinInts(m.InstallmentTerms)),
					orDash(strings.Join(m.Banks, ", ")),
				)
			}
			return tw.Flush()
		},
	}
}

func newVerifyCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the Omise keys and the methods enabled in config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			env, client, err := c.connect()
			if err != nil {
				fmt.Fprintln(out, "✗ Omise keys")
				return err
			}
			fmt.Fprintf(out, "✓ Omise keys configured (%s)\n", environment(env.Config.Omise))

			acc, err := client.RetrieveAccount(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, "✗ Omise API connection")
				return fmt.Errorf("retrieve account: %w", err)
			}
			fmt.Fprintf(out, "✓ Connected to account %s (%s)\n", acc.ID, acc.Email)

			caps, err := client.RetrieveCapabilities(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, "✗ Account capabilities")
				return fmt.Errorf("retrieve capabilities: %w", err)
			}
			missing := missingCapabilities(env.Config.Payment, caps)
			if len(missing) > 0 {
				fmt.Fprintf(out, "✗ Enabled methods not available on the account: %s\n", strings.Join(missing, ", "))
				return fmt.Errorf("%d enabled payment methods are not available on the account", len(missing))
			}
			fmt.Fprintln(out, "✓ Every enabled payment method is available on the account")
			return nil
		},
	}
}

// missingCapabilities lists the capability names the enabled methods need but the account lacks.
func missingCapabilities(cfg config.PaymentConfig, caps *gateway.Capabilities) []string {
	var missing []string
	need := func(name string) {
		if _, ok := caps.Method(name); !ok {
			missing = append(missing, name)
		}
	}

	m := cfg.Methods
	if m.CreditCard.Enabled {
		need("card")
	}
	if m.PromptPay.Enabled {
		need("promptpay")
	}
	if m.Installment.Enabled && !hasPrefixed(caps, "installment_") {
		missing = append(missing, "installment")
	}
	if m.InternetBanking.Enabled {
		for code, bank := range m.InternetBanking.Banks {
			if bank.Enabled {
				need("internet_banking_" + code)
			}
		}
	}
	slices.Sort(missing)
	return missing
}

func hasPrefixed(caps *gateway.Capabilities, prefix string) bool {
	for _, m := range caps.PaymentMethods {
		if strings.HasPrefix(m.Name, prefix) {
			return true
		}
	}
	return false
}

func environment(cfg config.OmiseConfig) string {
	if cfg.Sandbox {
		return "test"
	}
	return "live"
}

func writeTable(w io.Writer, rows [][2]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], orDash(r[1]))
	}
	_ = tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
