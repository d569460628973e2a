package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"inkstone/internal/config"
	"inkstone/internal/models"
	"inkstone/internal/space"
)

func newSearchCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var tags []string
	var attrs []string
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "search <space>",
		Short: "Search documents by tags and attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attributes := map[string]string{}
			for _, raw := range attrs {
				key, value, ok := strings.Cut(raw, "=")
				if !ok || strings.TrimSpace(key) == "" {
					return fmt.Errorf("invalid attribute filter %q, want key=value", raw)
				}
				attributes[key] = value
			}
			if limit <= 0 {
				limit = cfg.Search.DefaultLimit
			}

			query := models.SearchQuery{
				Tags:       tags,
				Attributes: attributes,
				Offset:     offset,
				Limit:      limit,
			}
			return withManager(cfg, func(m *space.Manager) error {
				paths, err := m.Search(cmd.Context(), args[0], query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(paths)
				}
				for _, docPath := range paths {
					if err := writePlain("%s\n", docPath); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "match any of these tags")
	cmd.Flags().StringSliceVar(&attrs, "attr", nil, "attribute contains filter, key=value")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	cmd.Flags().IntVar(&limit, "limit", 0, "pagination limit")
	return cmd
}

func newOverviewCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "overview <space>",
		Short: "Show space statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(m *space.Manager) error {
				overview, err := m.Overview(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(overview)
				}
				return writePlain("documents: %d\ntags: %d\nattribute keys: %d\n",
					overview.DocumentCount, overview.TagCount, overview.AttributeCount)
			})
		},
	}
}
