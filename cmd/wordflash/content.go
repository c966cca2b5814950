package main

import (
	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/models"
)

func (c *cli) mergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <source_id> <target_id>",
		Short: "Fold a duplicate word into another word of the same language",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseID(args[0])
			if err != nil {
				return err
			}
			target, err := parseID(args[1])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.content.MergeWords(cmd.Context(), models.MergeWordsRequest{SourceID: source, TargetID: target}, utcNow())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func (c *cli) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <word_id> <lemma>",
		Short: "Change a lemma, merging into an existing word that already has it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.content.RenameWord(cmd.Context(), id, models.RenameWordRequest{Lemma: args[1]}, utcNow())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func (c *cli) auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent content edits",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			a, err := openApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.content.AuditLog(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().Int("limit", 50, "maximum number of entries")
	return cmd
}
