package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vaultcapture/internal/secrets"
)

func newSecretCommand(_ *commandContext) *cobra.Command {
	secretCmd := &cobra.Command{
		Use:         "secret",
		Short:       "Manage the Gemini API key in the OS keychain",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	secretCmd.AddCommand(newSecretSetCommand())
	secretCmd.AddCommand(newSecretClearCommand())
	secretCmd.AddCommand(newSecretSourceCommand())
	return secretCmd
}

func newSecretSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [KEY]",
		Short: "Store the Gemini API key (reads stdin when KEY is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 1 {
				value = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read key from stdin: %w", err)
				}
				value = strings.TrimSpace(line)
			}
			if err := secrets.NewStore().Save(value); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Gemini API key saved to the OS keychain")
			return nil
		},
	}
}

func newSecretClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the Gemini API key from the OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secrets.NewStore().Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Gemini API key cleared")
			return nil
		},
	}
}

func newSecretSourceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "source",
		Short: "Report where the Gemini API key is found",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := secrets.NewStore().Source()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), source)
			return nil
		},
	}
}
