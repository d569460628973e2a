package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"inkstone/internal/config"
	"inkstone/internal/models"
	"inkstone/internal/space"
)

func newImportCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "import <space> <path> <file>",
		Short: "Import a document from an external file",
		Long: "Import copies an external file into the space. Markdown files " +
			"may carry YAML front matter whose tags and attributes are applied " +
			"to the imported document.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(m *space.Manager) error {
				if err := m.ImportDocument(cmd.Context(), args[0], args[1], args[2]); err != nil {
					return err
				}

				if strings.EqualFold(filepath.Ext(args[2]), ".md") {
					tags, attrs, err := frontMatterMetadata(args[2])
					if err != nil {
						return err
					}
					if len(tags) > 0 {
						if err := m.AddTags(cmd.Context(), args[0], args[1], tags); err != nil {
							return err
						}
					}
					for key, value := range attrs {
						if err := m.SetAttribute(cmd.Context(), args[0], args[1], key, models.Attr(value)); err != nil {
							return err
						}
					}
				}
				return writePlain("imported %s\n", args[1])
			})
		},
	}
}
