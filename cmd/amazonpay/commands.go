package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"amazonpay/internal/canonical"
	cronpkg "amazonpay/internal/cron"
	"amazonpay/internal/ipn"
	"amazonpay/internal/login"
	"amazonpay/internal/mws"
	"amazonpay/internal/payment"
	"amazonpay/internal/pkg/utils"
)

const commandTimeout = 2 * time.Minute

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the Off-Amazon Payments service status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			client, err := a.paymentClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			status, err := cronpkg.New("", client, nil, a.logger).ProbeStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func orderCmd() *cobra.Command {
	var accessToken string

	cmd := &cobra.Command{
		Use:   "order [amazon-order-reference-id]",
		Short: "Print the details of an order reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			client, err := a.paymentClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			opts := payment.GetOrderReferenceDetailsOptions{}
			if accessToken != "" {
				opts.AccessToken = canonical.Some(accessToken)
			}
			resp, err := client.GetOrderReferenceDetails(ctx, args[0], opts)
			if err != nil {
				return err
			}
			return printResponse(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&accessToken, "access-token", "", "buyer access token, to include address details")

	return cmd
}

func chargeCmd() *cobra.Command {
	var (
		currency  string
		note      string
		orderID   string
		storeName string
		authRef   string
	)

	cmd := &cobra.Command{
		Use:   "charge [amazon-reference-id] [amount]",
		Short: "Authorize and capture an amount on an order reference or billing agreement",
		Long: `Charge confirms the order reference (S.. or P.. ids) or billing agreement
(C.. or B.. ids) if needed, then authorizes the amount with immediate capture.

Examples:
  amazonpay charge S01-1234567-1234567 19.99
  amazonpay charge C01-1234567-1234567 5 --currency EUR --note "May plan" --auth-ref may-0001`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			if authRef == "" {
				authRef = utils.ReferenceID("auth")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			client, err := a.paymentClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			fmt.Fprintf(cmd.ErrOrStderr(), "AuthorizationReferenceId: %s\n", authRef)
			resp, err := client.Charge(ctx, args[0], authRef, amount, payment.ChargeOptions{
				CurrencyCode:  optional(currency),
				ChargeNote:    optional(note),
				ChargeOrderID: optional(orderID),
				StoreName:     optional(storeName),
			})
			if err != nil {
				return err
			}
			return printResponse(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "", "currency code (defaults to the configured one)")
	cmd.Flags().StringVar(&note, "note", "", "note shown to the buyer")
	cmd.Flags().StringVar(&orderID, "order-id", "", "seller order id")
	cmd.Flags().StringVar(&storeName, "store-name", "", "store name")
	cmd.Flags().StringVar(&authRef, "auth-ref", "", "authorization reference id (generated when empty)")

	return cmd
}

func verifyIPNCmd() *cobra.Command {
	var headersPath, bodyPath string

	cmd := &cobra.Command{
		Use:   "verify-ipn",
		Short: "Authenticate a captured IPN notification",
		Long: `Authenticate a notification saved to disk. The headers file is a JSON
object of header names to values; the body file is the raw SNS envelope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			headers, err := readHeaders(headersPath)
			if err != nil {
				return err
			}
			body, err := os.ReadFile(bodyPath)
			if err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}

			certs := ipn.NewCertFetcher(a.httpClient(), a.cfg.AmazonPay.LogEnabled, a.logger, nil)
			n, err := ipn.Parse(headers, body, certs, a.logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			if err := n.Authenticate(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Authentic:         %s\n", n.State())
			fmt.Fprintf(out, "MessageId:         %s\n", n.MessageID())
			fmt.Fprintf(out, "NotificationType:  %s\n", n.NotificationType())
			fmt.Fprintf(out, "SellerId:          %s\n", n.SellerID())
			fmt.Fprintf(out, "Environment:       %s\n", n.ReleaseEnvironment())
			fmt.Fprintf(out, "NotificationData:\n%s\n", n.NotificationData())
			return nil
		},
	}

	cmd.Flags().StringVar(&headersPath, "headers", "", "JSON file with the request headers")
	cmd.Flags().StringVar(&bodyPath, "body", "", "file with the request body")
	_ = cmd.MarkFlagRequired("headers")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [access-token]",
		Short: "Fetch the Login with Amazon profile for an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Login.ClientID == "" {
				return fmt.Errorf("LOGIN_CLIENT_ID is not set")
			}
			region, err := mws.ParseRegion(a.cfg.AmazonPay.Region)
			if err != nil {
				return err
			}
			client, err := login.New(a.cfg.Login.ClientID, region, a.cfg.AmazonPay.Sandbox, a.httpClient(), a.logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			profile, err := client.GetProfile(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(profile)
		},
	}
}

func optional(s string) canonical.Opt {
	if s == "" {
		return canonical.None()
	}
	return canonical.Some(s)
}

func printResponse(cmd *cobra.Command, resp *mws.Response) error {
	fmt.Fprintf(cmd.OutOrStdout(), "HTTP %d\n%s\n", resp.StatusCode(), resp.Body())
	if !resp.Success() {
		return fmt.Errorf("request failed with HTTP %d", resp.StatusCode())
	}
	return nil
}

func readHeaders(path string) (http.Header, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse headers: %w", err)
	}
	h := http.Header{}
	for k, v := range m {
		h.Set(k, v)
	}
	return h, nil
}
