// Command marketctl runs maintenance tasks against the marketplace backends
// configured through the same environment as the API.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/marketplace-api/cmd/marketctl/ui"
	"github.com/redmonkez12/marketplace-api/internal/app"
	"github.com/redmonkez12/marketplace-api/internal/config"
	"github.com/redmonkez12/marketplace-api/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "marketctl",
		Short:        "Maintenance commands for the marketplace API",
		Long:         "Prepare database schemas, seed demo data and purge offers using the API's environment configuration.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "Human readable debug logs on stderr")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply postgres migrations or create mongodb indexes",
		RunE:  runMigrate,
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo accounts and offers",
		RunE:  runSeed,
	}
	seedCmd.Flags().Int("users", 3, "Number of demo accounts")
	seedCmd.Flags().Int("offers", 2, "Offers published per account")
	seedCmd.Flags().String("password", "demo1234", "Password of the demo accounts")

	// offer command group
	offerCmd := &cobra.Command{
		Use:   "offer",
		Short: "Manage offers",
	}

	purgeCmd := &cobra.Command{
		Use:   "purge <offer-id>",
		Short: "Delete an offer and every picture stored for it",
		Args:  cobra.ExactArgs(1),
		RunE:  runPurge,
	}
	purgeCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	offerCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(migrateCmd, seedCmd, offerCmd)

	return rootCmd
}

// openApp loads the environment and connects the configured backends.
// Ownership checks are off since the operator acts on anyone's data.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Auth.EnforceOwnership = false

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := logging.NewLoggerWithWriter(cmd.ErrOrStderr(), verbose)

	return app.New(cmd.Context(), cfg, logger)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}
	defer a.Close(context.Background())

	switch a.Config.Database.Driver {
	case config.DriverPostgres:
		ui.PrintSuccess("postgres schema is up to date")
	case config.DriverMongo:
		ui.PrintSuccess("mongodb indexes are in place")
	default:
		ui.PrintSuccess("nothing to migrate for the %s driver", a.Config.Database.Driver)
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	users, _ := cmd.Flags().GetInt("users")
	offers, _ := cmd.Flags().GetInt("offers")
	password, _ := cmd.Flags().GetString("password")

	a, err := openApp(cmd)
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}
	defer a.Close(context.Background())

	ui.PrintTitle("Seeding demo data")
	report, err := seed(cmd.Context(), a, users, offers, password)
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}

	for _, u := range report.Users {
		ui.PrintDetail(u.Account.Username, u.Email+" "+u.Token)
	}
	ui.PrintSuccess("%d accounts, %d offers", len(report.Users), len(report.Offers))
	return nil
}

func runPurge(cmd *cobra.Command, args []string) error {
	id := args[0]
	yes, _ := cmd.Flags().GetBool("yes")

	a, err := openApp(cmd)
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}
	defer a.Close(context.Background())

	o, err := a.OfferService.Get(cmd.Context(), id)
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}
	if o != nil {
		ui.PrintDetail("title", o.Name)
		ui.PrintDetail("price", strconv.FormatFloat(o.Price, 'f', 2, 64))
	}

	if !yes {
		ok, err := ui.Confirm("Purge offer "+id+"?", "The record and every picture under its folder are removed.")
		if err != nil {
			return fmt.Errorf("confirmation cancelled: %w", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.OfferService.Delete(cmd.Context(), "", id); err != nil {
		ui.PrintError(err.Error())
		return err
	}

	ui.PrintSuccess("offer %s purged", id)
	return nil
}
