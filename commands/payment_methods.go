package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/a2n2k3p4/omise-payments/payment"
)

func newPaymentMethodsCommand(c *cli) *cobra.Command {
	var validate, params string

	cmd := &cobra.Command{
		Use:   "payment-methods",
		Short: "List supported payment methods and their parameters",
		Example: `  omise-payments payment-methods --params credit_card
  omise-payments payment-methods --validate promptpay`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.env()
			if err != nil {
				return err
			}
			// Listing methods never reaches the gateway.
			m := payment.NewManagerFromConfig(&env.Config.Payment, payment.Deps{Logger: env.Logger})

			switch {
			case validate != "":
				return validateMethod(cmd, m, validate)
			case params != "":
				return showParams(cmd, m, params)
			default:
				return listMethods(cmd, m)
			}
		},
	}

	cmd.Flags().StringVar(&validate, "validate", "", "check that a payment method is supported")
	cmd.Flags().StringVar(&params, "params", "", "show the parameters of a payment method")
	return cmd
}

func listMethods(cmd *cobra.Command, m *payment.Manager) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Supported Payment Methods:")
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tREQUIRED PARAMETERS\tTYPE")
	for _, method := range m.SupportedMethods() {
		info := m.MethodInfo(method)
		if info.Error != "" {
			fmt.Fprintf(tw, "%s\tError: %s\tUnknown\n", method, info.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", method, strings.Join(info.RequiredParams, ", "), typeName(info.Processor))
	}
	return tw.Flush()
}

func showParams(cmd *cobra.Command, m *payment.Manager, method string) error {
	if !m.Supports(method) {
		return fmt.Errorf("payment method '%s' is not supported", method)
	}
	info := m.MethodInfo(method)
	if info.Error != "" {
		return fmt.Errorf("get parameters for '%s': %s", method, info.Error)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Payment Method: %s\n", info.Method)
	fmt.Fprintf(out, "Processor: %s\n", typeName(info.Processor))
	fmt.Fprintf(out, "Offline: %t\n", info.IsOffline)
	fmt.Fprintf(out, "Currencies: %s\n", strings.Join(info.SupportedCurrencies, ", "))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Required Parameters:")
	for _, p := range info.RequiredParams {
		fmt.Fprintf(out, "  - %s\n", p)
	}
	fmt.Fprintln(out)

	body, err := json.MarshalIndent(exampleRequest(method, info.RequiredParams), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Example Usage:")
	fmt.Fprintf(out, "  POST /payments/%s\n", method)
	fmt.Fprintln(out, string(body))
	return nil
}

func validateMethod(cmd *cobra.Command, m *payment.Manager, method string) error {
	out := cmd.OutOrStdout()
	if !m.Supports(method) {
		fmt.Fprintf(out, "✗ Payment method '%s' is not supported\n", method)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Supported methods:")
		for _, s := range m.SupportedMethods() {
			fmt.Fprintf(out, "  - %s\n", s)
		}
		return fmt.Errorf("payment method '%s' is not supported", method)
	}
	fmt.Fprintf(out, "✓ Payment method '%s' is supported\n", method)

	p, err := m.Processor(method)
	if err != nil {
		fmt.Fprintf(out, "✗ Error creating processor: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✓ Processor: %T\n", p)
	fmt.Fprintf(out, "✓ Required parameters: %s\n", strings.Join(p.RequiredParams(), ", "))
	return nil
}

// exampleRequest is a request body for method built from its required parameters.
func exampleRequest(method string, required []string) map[string]any {
	switch method {
	case "credit_card", "card":
		return map[string]any{"amount": 100.00, "currency": "THB", "token": "tokn_test_xxx"}
	case "promptpay":
		return map[string]any{"amount": 150.00, "currency": "THB"}
	}
	example := map[string]any{}
	for _, p := range required {
		switch p {
		case "amount":
			example[p] = 1000.00
		case "currency":
			example[p] = "THB"
		case "card":
			example["token"] = "tokn_test_xxx"
		default:
			example[p] = "value"
		}
	}
	return example
}

func typeName(processor string) string {
	if i := strings.LastIndex(processor, "."); i >= 0 {
		return processor[i+1:]
	}
	return strings.TrimPrefix(processor, "*")
}
