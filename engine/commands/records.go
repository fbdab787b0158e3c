package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gasagency/gasagency-deployments/datastore"
	"github.com/gasagency/gasagency-deployments/deployment"
	"github.com/gasagency/gasagency-deployments/engine/commands/flags"
	"github.com/gasagency/gasagency-deployments/engine/commands/text"
	"github.com/gasagency/gasagency-deployments/network"
)

var (
	recordsShort = "Inspect the deployment records"

	recordsShowExample = text.Examples(`
		# Show the GasAgency record on mumbai
		gasagency records show --network mumbai

		# Read the records from postgres
		GASAGENCY_STORE_DSN=postgres://localhost/deployments gasagency records list --store postgres
	`)
)

func newRecordsCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: recordsShort,
	}

	cmd.AddCommand(newRecordsListCmd(cfg), newRecordsShowCmd(cfg))

	return cmd
}

func newRecordsListCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all deployment records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, cfg, func(store datastore.Store) error {
				records, err := store.List(cmd.Context())
				if err != nil {
					return err
				}

				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No deployment records")
					return nil
				}

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetAutoWrapText(false)
				table.SetHeader([]string{"Network", "Contract", "Address", "Block", "Confirmations", "Deployed at"})
				for _, rec := range records {
					table.Append([]string{
						rec.Network,
						rec.Contract,
						rec.Address.Hex(),
						strconv.FormatUint(rec.BlockNumber, 10),
						strconv.FormatUint(rec.Confirmations, 10),
						rec.DeployedAt.Format(time.RFC3339),
					})
				}
				table.Render()

				return nil
			})
		},
	}
}

func newRecordsShowCmd(cfg Config) *cobra.Command {
	var contract string

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Show the record of a contract on a network as JSON",
		Example: recordsShowExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := network.ParseNetworkID(flags.MustString(cmd.Flags().GetString("network")))
			if err != nil {
				return err
			}

			return withStore(cmd, cfg, func(store datastore.Store) error {
				rec, err := store.Get(cmd.Context(), id, contract)
				if err != nil {
					return err
				}

				b, err := json.MarshalIndent(rec, "", "  ")
				if err != nil {
					return fmt.Errorf("unable to marshal record: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))

				return nil
			})
		},
	}

	flags.Network(cmd)
	cmd.Flags().StringVar(&contract, "contract", deployment.ContractName, "Contract name")

	return cmd
}

// withStore opens the configured record store for the duration of fn.
func withStore(cmd *cobra.Command, cfg Config, fn func(datastore.Store) error) error {
	c, err := loadConfig(cmd, cfg)
	if err != nil {
		return err
	}

	store, closeFn, err := cfg.deps().StoreOpener(cmd.Context(), storeOptions(c))
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			cfg.Logger.Warnw("Failed to close record store", "error", cerr)
		}
	}()

	return fn(store)
}
