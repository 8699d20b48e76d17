package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tabung/internal/core"
	"tabung/internal/services"
	"tabung/internal/storage"
)

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show cash, bank and MyTabung balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, closeFn, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			b, err := ledger.GetBalances(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "Cash\t%s\t\n", b.Cash.Decimal())
			fmt.Fprintf(w, "Bank\t%s\t\n", b.Bank.Decimal())
			fmt.Fprintf(w, "MyTabung\t%s\t\n", b.MyTabung.Decimal())
			fmt.Fprintf(w, "Spendable\t%s\t\n", b.Spendable.Decimal())
			fmt.Fprintf(w, "Total\t%s\t\n", b.Total.Decimal())
			return w.Flush()
		},
	}
}

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "List, pay and reverse bills",
	}
	cmd.AddCommand(billsListCmd())
	cmd.AddCommand(billsPayCmd())
	cmd.AddCommand(billsReverseCmd())
	return cmd
}

func billsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bills by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, closeFn, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			bills, err := ledger.ListBills(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tAMOUNT\tDUE\tFIXED\tPAID")
			for _, b := range bills {
				amount := b.Amount.Decimal()
				if b.IsDynamic() {
					amount = "dynamic"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%t\n", b.ID, b.Name, amount, b.DueDate, b.IsFixed, b.Paid)
			}
			return w.Flush()
		},
	}
}

func billsPayCmd() *cobra.Command {
	var amountFlag string
	cmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Pay a bill from cash, falling back to bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var opts services.PayOptions
			if amountFlag != "" {
				cents, err := core.ParseDecimalToCents(amountFlag)
				if err != nil {
					return fmt.Errorf("%w: amount: %w", core.ErrValidation, err)
				}
				opts.Amount = core.Money{Cents: cents}
			}

			ledger, closeFn, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := ledger.PayBill(cmd.Context(), id, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Paid bill %d: %s from %s (expense %d)\n", res.BillID, res.Amount, res.Source, res.ExpenseID)
			if res.NextBillID != 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Next occurrence: bill %d\n", res.NextBillID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&amountFlag, "amount", "", "payment amount, required for dynamic bills")
	return cmd
}

func billsReverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <id>",
		Short: "Undo a bill payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ledger, closeFn, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := ledger.ReverseBill(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reversed bill %d\n", id)
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Archive expenses and start a new budget period",
		Long: `Archives every expense, carries unused budget over into each user
category, clears bill payments, sets the Bills budget to the sum of all
bills and deletes the live expenses. It cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			ledger, closeFn, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := ledger.ResetPeriod(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d expenses at %s, cleared %d bill payments, Bills budget %s\n",
				res.Archived, res.ArchiveDate.Format("2006-01-02 15:04:05"), res.BillsCleared, res.BillsBudget)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func revertPrematureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revert-premature",
		Short: "Reverse bill payments made too far ahead of their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, closeFn, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := ledger.RevertPrematurePayments(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reverted %d payments\n", n)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := databasePath()
			if err != nil {
				return err
			}
			if err := storage.RunMigrations(path); err != nil {
				return err
			}
			version, dirty, err := storage.MigrationVersion(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrValidation, s)
	}
	return id, nil
}
