package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"whatsapp-relay/internal/whitelist"
	"whatsapp-relay/pkg/logging"
)

func whitelistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whitelist",
		Short: "Validate and print the configured whitelist",
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			cfg, err := loadConfig(earlyLog)
			if err != nil {
				return err
			}

			registry, err := whitelist.Load(cfg.Whitelist)
			if err != nil {
				earlyLog.Error("Invalid whitelist: %v", err)
				return err
			}

			renderWhitelist(cmd.OutOrStdout(), registry)
			return nil
		},
	}
}

func renderWhitelist(w io.Writer, registry *whitelist.Registry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Mobile Number", "Display Name"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, p := range registry.Participants() {
		table.Append([]string{p.MobileNumber, p.DisplayName})
	}
	table.Render()

	fmt.Fprintf(w, "\n%d participant(s)\n", registry.Len())
}

