package main

import (
	"os"

	"github.com/spf13/cobra"

	"inkstone/internal/config"
	"inkstone/internal/space"
)

func newAddCmd(cfg *config.Config) *cobra.Command {
	var mimeType string

	cmd := &cobra.Command{
		Use:   "add <space> <path> <file>",
		Short: "Add a document from a local file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[2])
			if err != nil {
				return err
			}
			defer f.Close()
			return withManager(cfg, func(m *space.Manager) error {
				if err := m.AddDocument(cmd.Context(), args[0], args[1], f, mimeType); err != nil {
					return err
				}
				return writePlain("added %s\n", args[1])
			})
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime", "application/octet-stream", "content mime type")
	return cmd
}

func newRemoveCmd(cfg *config.Config) *cobra.Command {
	var folder bool

	cmd := &cobra.Command{
		Use:   "rm <space> <path>",
		Short: "Remove a document or folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(m *space.Manager) error {
				var err error
				if folder {
					err = m.RemoveFolder(cmd.Context(), args[0], args[1])
				} else {
					err = m.RemoveDocument(cmd.Context(), args[0], args[1])
				}
				if err != nil {
					return err
				}
				return writePlain("removed %s\n", args[1])
			})
		},
	}
	cmd.Flags().BoolVar(&folder, "folder", false, "remove a folder recursively")
	return cmd
}

func newMoveCmd(cfg *config.Config) *cobra.Command {
	var folder bool

	cmd := &cobra.Command{
		Use:   "mv <space> <old> <new>",
		Short: "Rename a document or folder",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(m *space.Manager) error {
				var err error
				if folder {
					err = m.RenameFolder(cmd.Context(), args[0], args[1], args[2])
				} else {
					err = m.RenameDocument(cmd.Context(), args[0], args[1], args[2])
				}
				if err != nil {
					return err
				}
				return writePlain("renamed %s to %s\n", args[1], args[2])
			})
		},
	}
	cmd.Flags().BoolVar(&folder, "folder", false, "rename a folder")
	return cmd
}

func newLsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <space> [folder]",
		Short: "List a folder",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := ""
			if len(args) == 2 {
				folder = args[1]
			}
			return withManager(cfg, func(m *space.Manager) error {
				entries, err := m.ReadDir(args[0], folder)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(entries)
				}
				for _, entry := range entries {
					if err := writePlain("%s\t%s\n", entry.Kind, entry.Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <space> <path>",
		Short: "Show document metadata and annotations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(m *space.Manager) error {
				meta, err := m.ReadMeta(args[0], args[1])
				if err != nil {
					return err
				}
				annotations, err := m.ListAnnotations(args[0], args[1])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"meta": meta, "annotations": annotations})
				}
				if err := writePlain("mimetype: %s\n", meta.Mimetype); err != nil {
					return err
				}
				for key, value := range meta.Attributes {
					if err := writePlain("attr %s: %v\n", key, value.Values); err != nil {
						return err
					}
				}
				for _, tag := range meta.Tags {
					if err := writePlain("tag: %s\n", tag); err != nil {
						return err
					}
				}
				return writePlain("annotations: %d\n", len(annotations))
			})
		},
	}
}

func newExportCmd(cfg *config.Config) *cobra.Command {
	var archive bool
	var out string

	cmd := &cobra.Command{
		Use:   "export <space> <path>",
		Short: "Export document content, or the full sidecar as a zip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(m *space.Manager) error {
				dst := os.Stdout
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					dst = f
				}
				if archive {
					return m.ExportArchive(args[0], args[1], dst)
				}
				content, _, err := m.ExportContent(args[0], args[1])
				if err != nil {
					return err
				}
				defer content.Close()
				_, err = dst.ReadFrom(content)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "export the whole sidecar directory as a zip")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	return cmd
}
