package commands

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gasagency/gasagency-deployments/engine/commands/text"
)

var (
	networksShort = "List the registered networks"

	networksLong = text.LongDesc(`
		Lists the networks the contract can be deployed to, with their confirmation depth,
		chain selector, randomness parameters and the number of configured RPCs.
	`)
)

func newNetworksCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: networksShort,
		Long:  networksLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNetworks(cmd, cfg)
		},
	}
}

func runNetworks(cmd *cobra.Command, cfg Config) error {
	c, err := loadConfig(cmd, cfg)
	if err != nil {
		return err
	}

	reg := cfg.registry()
	confirmations := cfg.confirmations()

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Network", "Chain ID", "Selector", "Confirmations", "Coordinator", "Subscription", "RPCs"})

	for _, id := range reg.NetworkIDs() {
		entry, err := reg.Resolve(id)
		if err != nil {
			return err
		}

		selector := "-"
		if sel, serr := id.ChainSelector(); serr == nil {
			selector = strconv.FormatUint(sel, 10)
		}

		table.Append([]string{
			entry.DisplayName,
			strconv.FormatUint(uint64(id), 10),
			selector,
			strconv.FormatUint(confirmations.For(id), 10),
			entry.CoordinatorAddress,
			strconv.FormatUint(entry.SubscriptionID, 10),
			strconv.Itoa(len(c.Networks.Network(id).RPCs)),
		})
	}
	table.Render()

	return nil
}
