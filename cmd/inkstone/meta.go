package main

import (
	"errors"

	"github.com/spf13/cobra"

	"inkstone/internal/config"
	"inkstone/internal/models"
	"inkstone/internal/space"
)

func newTagCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage document tags",
	}

	addCmd := &cobra.Command{
		Use:   "add <space> <path> <tag> [<tag>...]",
		Short: "Add tags to a document",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return errors.New("space, path, and at least one tag are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tagMutation(cfg, jsonOutput, args, func(m *space.Manager) error {
				return m.AddTags(cmd.Context(), args[0], args[1], args[2:])
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <space> <path> <tag> [<tag>...]",
		Short: "Remove tags from a document",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return errors.New("space, path, and at least one tag are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tagMutation(cfg, jsonOutput, args, func(m *space.Manager) error {
				return m.RemoveTags(cmd.Context(), args[0], args[1], args[2:])
			})
		},
	}

	tagCmd.AddCommand(addCmd, removeCmd)
	return tagCmd
}

func tagMutation(cfg *config.Config, jsonOutput *bool, args []string, mutate func(m *space.Manager) error) error {
	return withManager(cfg, func(m *space.Manager) error {
		if err := mutate(m); err != nil {
			return err
		}
		meta, err := m.ReadMeta(args[0], args[1])
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(meta.Tags)
		}
		for _, tag := range meta.Tags {
			if err := writePlain("%s\n", tag); err != nil {
				return err
			}
		}
		return nil
	})
}

func newAttrCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	attrCmd := &cobra.Command{
		Use:   "attr",
		Short: "Manage document attributes",
	}

	setCmd := &cobra.Command{
		Use:   "set <space> <path> <key> <value> [<value>...]",
		Short: "Set an attribute",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 4 {
				return errors.New("space, path, key, and at least one value are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			value := models.Attr(args[3])
			if len(args) > 4 {
				value = models.AttrList(args[3:]...)
			}
			return withManager(cfg, func(m *space.Manager) error {
				if err := m.SetAttribute(cmd.Context(), args[0], args[1], args[2], value); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{args[2]: value.Values})
				}
				return writePlain("set %s\n", args[2])
			})
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <space> <path> <key>",
		Short: "Delete an attribute",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(m *space.Manager) error {
				if err := m.DeleteAttribute(cmd.Context(), args[0], args[1], args[2]); err != nil {
					return err
				}
				return writePlain("deleted %s\n", args[2])
			})
		},
	}

	attrCmd.AddCommand(setCmd, rmCmd)
	return attrCmd
}
