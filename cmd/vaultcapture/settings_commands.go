package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vaultcapture/internal/settings"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored settings",
	}
	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))
	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSettings(cmd, func(repo *settings.Repository) error {
				current, err := repo.Get(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, current)
				}
				printSettings(cmd.OutOrStdout(), current)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	var vault, cli, model, writeMode string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update stored settings",
		Long:  "Update stored settings. Only the flags that are passed change; an empty --vault enables vault auto-detection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("vault") && !flags.Changed("cli") && !flags.Changed("model") && !flags.Changed("write-mode") {
				return fmt.Errorf("nothing to change; pass at least one of --vault, --cli, --model, --write-mode")
			}
			return ctx.withSettings(cmd, func(repo *settings.Repository) error {
				current, err := repo.Get(cmd.Context())
				if err != nil {
					return err
				}
				if flags.Changed("vault") {
					current.VaultPath = vault
				}
				if flags.Changed("cli") {
					current.PublisherCLIPath = cli
				}
				if flags.Changed("model") {
					current.Model = model
				}
				if flags.Changed("write-mode") {
					mode, err := settings.ParseWriteMode(writeMode)
					if err != nil {
						return err
					}
					current.WriteMode = mode
				}
				saved, err := repo.Save(cmd.Context(), current)
				if err != nil {
					return err
				}
				printSettings(cmd.OutOrStdout(), saved)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&vault, "vault", "", "Obsidian vault directory")
	cmd.Flags().StringVar(&cli, "cli", "", "Obsidian CLI executable")
	cmd.Flags().StringVar(&model, "model", "", "Summarizer model identifier")
	cmd.Flags().StringVar(&writeMode, "write-mode", "", "One of filesystem_only, cli_only, cli_fallback")
	return cmd
}

func printSettings(out io.Writer, s settings.Settings) {
	vault := s.VaultPath
	if vault == "" {
		vault = "(auto-detect)"
	}
	cli := s.PublisherCLIPath
	if cli == "" {
		cli = "(default)"
	}
	fmt.Fprint(out, renderTable([]string{"Setting", "Value"}, [][]string{
		{"vault_path", vault},
		{"publisher_cli_path", cli},
		{"model", s.Model},
		{"write_mode", string(s.WriteMode)},
	}, nil))
}
