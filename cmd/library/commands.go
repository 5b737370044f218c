package main

import (
	"context"
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/DevinCastillo5/Library-App/library"
)

func newInitDBCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), load, func(ctx context.Context, a *app) error {
				if err := a.store.CreateSchema(ctx); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", a.cfg.Database.Driver)

				return err
			})
		},
	}
}

func newLoanCommand(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Lend and return copies",
	}

	cmd.AddCommand(newLoanCreateCommand(load), newLoanReturnCommand(load))

	return cmd
}

func newLoanCreateCommand(load configLoader) *cobra.Command {
	var (
		isbn     string
		memberID int64
		staffID  int64
		date     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Lend the first available copy of a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loanDate, err := parseDate(date)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), load, func(ctx context.Context, a *app) error {
				if !cmd.Flags().Changed("staff") {
					staffID = a.cfg.Circulation.DefaultStaffID
				}

				loan, err := a.loans.CreateLoan(ctx, isbn, memberID, staffID, loanDate)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), loan)
			})
		},
	}

	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN of the book")
	cmd.Flags().Int64Var(&memberID, "member", 0, "borrowing member id")
	cmd.Flags().Int64Var(&staffID, "staff", 0, "issuing staff id (default LIBRARY_DEFAULT_STAFF_ID)")
	cmd.Flags().StringVar(&date, "date", "", "loan date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("isbn")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

func newLoanReturnCommand(load configLoader) *cobra.Command {
	var (
		loanID int64
		date   string
	)

	cmd := &cobra.Command{
		Use:   "return",
		Short: "Return a loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			returnDate, err := parseDate(date)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), load, func(ctx context.Context, a *app) error {
				loan, err := a.loans.ReturnLoan(ctx, loanID, returnDate)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), loan)
			})
		},
	}

	cmd.Flags().Int64Var(&loanID, "id", 0, "loan id")
	cmd.Flags().StringVar(&date, "date", "", "return date YYYY-MM-DD (default now)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newReserveCommand(load configLoader) *cobra.Command {
	var (
		isbn     string
		memberID int64
		date     string
	)

	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Reserve a book whose copies are all on loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reserveDate, err := parseDate(date)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), load, func(ctx context.Context, a *app) error {
				reservation, err := a.reservations.CreateReservation(ctx, isbn, memberID, reserveDate)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), reservation)
			})
		},
	}

	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN of the book")
	cmd.Flags().Int64Var(&memberID, "member", 0, "reserving member id")
	cmd.Flags().StringVar(&date, "date", "", "reservation date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("isbn")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

// parseDate returns the zero time for an empty value, which the managers replace with "now".
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, library.ValidationError("date", "must be YYYY-MM-DD")
	}

	return parsed, nil
}

func printJSON(w io.Writer, value any) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}
