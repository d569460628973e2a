package main

import (
	"github.com/spf13/cobra"

	"inkstone/internal/config"
	"inkstone/internal/models"
	"inkstone/internal/registry"
)

func newSpaceCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	spaceCmd := &cobra.Command{
		Use:   "space",
		Short: "Manage spaces",
	}

	var name string
	addCmd := &cobra.Command{
		Use:   "add <key> <path>",
		Short: "Register a space over an existing directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Open(cfg.RegistryPath)
			if err != nil {
				return err
			}
			space := models.Space{Key: args[0], Name: name, Path: args[1]}
			if err := reg.Add(space); err != nil {
				return err
			}
			stored, err := reg.Get(args[0])
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(stored)
			}
			return writePlain("%s\t%s\n", stored.Key, stored.Path)
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "display name (defaults to key)")

	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List registered spaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Open(cfg.RegistryPath)
			if err != nil {
				return err
			}
			spaces := reg.List()
			if *jsonOutput {
				return writeJSON(spaces)
			}
			for _, space := range spaces {
				if err := writePlain("%s\t%s\t%s\n", space.Key, space.Name, space.Path); err != nil {
					return err
				}
			}
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <key>",
		Short: "Unregister a space (documents stay on disk)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Open(cfg.RegistryPath)
			if err != nil {
				return err
			}
			if err := reg.Remove(args[0]); err != nil {
				return err
			}
			return writePlain("removed %s\n", args[0])
		},
	}

	spaceCmd.AddCommand(addCmd, lsCmd, rmCmd)
	return spaceCmd
}
