// Package main реализует CLI администратора для просмотра заказов и смены их статуса.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/service"
)

type options struct {
	backendAddress string
	token          string
	timeout        time.Duration
}

func (o *options) client() *backend.Client {
	return backend.NewClient(o.backendAddress, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "storefront-admin",
		Short:         "Back-office tool for storefront orders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.backendAddress, "backend", "b", envOr("BACKEND_ADDRESS", "http://localhost:8081"), "backend REST API address")
	root.PersistentFlags().StringVarP(&opts.token, "token", "t", os.Getenv("STOREFRONT_TOKEN"), "admin bearer token (or set STOREFRONT_TOKEN)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders and change their status",
	}
	ordersCmd.AddCommand(newOrdersListCmd(opts), newSetStatusCmd(opts))

	root.AddCommand(newLoginCmd(opts), ordersCmd)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			token, err := opts.client().Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newOrdersListCmd(opts *options) *cobra.Command {
	var page model.Page

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			res, err := service.NewAdmin(opts.client()).ListOrders(ctx, opts.token, page)
			if err != nil {
				return fmt.Errorf("list orders: %w", err)
			}
			printOrders(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().IntVar(&page.PageNumber, "page", 0, "page number")
	cmd.Flags().IntVar(&page.PageSize, "size", service.DefaultPageSize, "page size")
	cmd.Flags().StringVar(&page.SortBy, "sort-by", service.DefaultSortBy, "sort field")
	cmd.Flags().StringVar(&page.SortOrder, "sort-order", service.DefaultSortOrder, "asc or desc")
	return cmd
}

func printOrders(out io.Writer, res *model.OrderPage) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tDATE\tPAYMENT\tTOTAL\tSTATUS")
	for _, o := range res.Content {
		date := ""
		if !o.OrderDate.IsZero() {
			date = o.OrderDate.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", o.OrderID, o.Email, date, o.PaymentMethod, o.TotalAmount, o.Status)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "page %d of %d, %d orders\n", res.PageNumber+1, max(res.TotalPages, 1), res.TotalElements)
}

func newSetStatusCmd(opts *options) *cobra.Command {
	statuses := make([]string, 0, len(model.OrderStatuses()))
	for _, s := range model.OrderStatuses() {
		statuses = append(statuses, fmt.Sprintf("%q", s))
	}

	var email string
	var orderID int64

	cmd := &cobra.Command{
		Use:   "set-status STATUS",
		Short: "Change the status of an order",
		Long:  "Change the status of an order. STATUS is one of: " + strings.Join(statuses, ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			order, err := service.NewAdmin(opts.client()).UpdateStatus(ctx, opts.token, email, orderID, args[0])
			if err != nil {
				return fmt.Errorf("update status: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %d: %s\n", order.OrderID, order.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "customer email")
	cmd.Flags().Int64Var(&orderID, "order", 0, "order id")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
