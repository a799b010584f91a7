package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"gallery/internal/assets"
	"gallery/internal/janitor"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid image id %q", s)
	}
	return id, nil
}

// parseParams turns key=value arguments into an operation parameter map.
// Values stay strings; operation decoding converts them.
func parseParams(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("parameter %q is not key=value", arg)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}

func printResult(w io.Writer, res assets.Result) {
	fmt.Fprintf(w, "image %d: %s -> %dx%d\n", res.ImageID, res.Operation, res.Width, res.Height)
	if res.ThumbnailErr != nil {
		fmt.Fprintf(w, "warning: thumbnail is stale: %v\n", res.ThumbnailErr)
	}
	if res.HistoryErr != nil {
		fmt.Fprintf(w, "warning: history entry not recorded: %v\n", res.HistoryErr)
	}
}

func newImportCmd(a func() *app) *cobra.Command {
	var ownerID, folderID int64

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import image files into a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				res, err := a().mgr.Ingest(cmd.Context(), assets.Upload{
					OwnerID:  ownerID,
					FolderID: folderID,
					Name:     filepath.Base(path),
					Body:     f,
				})
				f.Close()
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				printResult(cmd.OutOrStdout(), res)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&ownerID, "owner", 1, "owner id")
	cmd.Flags().Int64Var(&folderID, "folder", 1, "folder id")
	return cmd
}

func newApplyCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply ID OPERATION [key=value...]",
		Short: "Apply an operation to an image",
		Example: `  galleryctl apply 7 crop width=200 height=200 x=10 y=10
  galleryctl apply 7 rotate degrees=90
  galleryctl apply 7 revert`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			params, err := parseParams(args[2:])
			if err != nil {
				return err
			}
			res, err := a().mgr.Dispatch(cmd.Context(), id, args[1], params)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newRevertCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revert ID",
		Short: "Restore an image from its pristine backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := a().mgr.Revert(cmd.Context(), id)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func formatParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := json.Marshal(params[k])
		if err != nil {
			v = []byte(fmt.Sprint(params[k]))
		}
		parts = append(parts, k+"="+string(v))
	}
	return strings.Join(parts, " ")
}

func newHistoryCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history ID",
		Short: "Show the operations applied to an image, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a().repo.Get(cmd.Context(), id); err != nil {
				return err
			}
			entries, err := a().hist.List(cmd.Context(), id)
			if err != nil {
				return err
			}

			var data [][]string
			for _, e := range entries {
				data = append(data, []string{
					e.Timestamp.Local().Format(time.DateTime),
					e.Operation,
					formatParams(e.Parameters),
					e.ID,
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"TIME", "OPERATION", "PARAMETERS", "ENTRY"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			table.SetBorder(false)
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
}

func newListCmd(a func() *app) *cobra.Command {
	var ownerID, folderID int64

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the images of a folder",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := a().repo.ListFolder(cmd.Context(), ownerID, folderID)
			if err != nil {
				return err
			}

			var data [][]string
			for _, img := range images {
				data = append(data, []string{
					strconv.FormatInt(img.ID, 10),
					img.OriginalName,
					img.Format,
					fmt.Sprintf("%dx%d", img.Width, img.Height),
					strconv.FormatInt(img.SizeBytes, 10),
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "NAME", "FORMAT", "SIZE", "BYTES"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
	cmd.Flags().Int64Var(&ownerID, "owner", 1, "owner id")
	cmd.Flags().Int64Var(&folderID, "folder", 1, "folder id")
	return cmd
}

func newDeleteCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an image, its files and its history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a().mgr.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted image %d\n", id)
			return nil
		},
	}
}

func newRepairCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Rebuild stale thumbnails and remove leftover temp files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := janitor.New(janitor.Config{
				Catalog:  a().repo,
				Renderer: a().mgr,
				DataDir:  a().cfg.DataDir,
			}).RunOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "rebuilt %d thumbnails (%d failed), removed %d temp files and %d empty directories\n",
				st.ThumbnailsRebuilt, st.ThumbnailsFailed, st.TempFilesRemoved, st.DirsRemoved)
			return nil
		},
	}
}
