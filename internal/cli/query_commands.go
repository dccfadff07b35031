package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"xliff-manager/internal/config"
	"xliff-manager/internal/engine"
)

type listFunc func(ctx context.Context) ([]engine.Choice, error)

func newFileTypeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "filetype <file>",
		Short: "Detect the format and encoding of a source document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := e.client.FileType(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), "%s\t%s\t%s", ft.File, ft.Type, ft.Encoding)
			return nil
		},
	}
}

func newTargetCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "target <xliff>",
		Short: "Suggest where the merged document of an XLIFF file goes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := e.client.TargetFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), "%s", target)
			return nil
		},
	}
}

func newListCommand(e *env, use, short string, pick func(*engine.Client) listFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			choices, err := pick(e.client)(cmd.Context())
			if err != nil {
				return err
			}
			for _, choice := range choices {
				writeLine(cmd.OutOrStdout(), "%s\t%s", choice.Code, choice.Description)
			}
			return nil
		},
	}
}

func newVersionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show application and engine versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			writeLine(out, "XLIFFManager\t%s", config.Version)

			versions, err := e.client.Version(cmd.Context())
			if err != nil {
				e.logger.Warn("engine version", "error", err)
				writeLine(out, "engine\tunavailable")
				return nil
			}
			keys := make([]string, 0, len(versions))
			for key := range versions {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				writeLine(out, "%s\t%s", key, versions[key])
			}
			return nil
		},
	}
}

func newCheckUpdateCommand(e *env) *cobra.Command {
	var download bool
	var dir string

	cmd := &cobra.Command{
		Use:   "check-update",
		Short: "Compare the running version with the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			release, err := e.updates.Check(cmd.Context())
			if err != nil {
				return fmt.Errorf("check updates: %w", err)
			}
			if !release.Available {
				return e.presenter.ShowMessage("", "There are no updates available.")
			}

			writeLine(out, "Version %s is available (running %s).", release.Latest, release.Current)
			if release.DownloadURL == "" {
				writeLine(out, "No installer is published for this platform.")
				return nil
			}
			writeLine(out, "%s", release.DownloadURL)
			if !download {
				return nil
			}

			if dir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolve user home: %w", err)
				}
				dir = filepath.Join(home, "Downloads")
			}
			path, err := e.updates.Download(cmd.Context(), release.DownloadURL, dir, nil)
			if err != nil {
				return err
			}
			size := "?"
			if info, err := os.Stat(path); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			return e.presenter.ShowMessage("Download complete", fmt.Sprintf("Saved %s (%s)", path, size))
		},
	}

	cmd.Flags().BoolVar(&download, "download", false, "Download the installer")
	cmd.Flags().StringVar(&dir, "dir", "", "Download folder (default ~/Downloads)")
	return cmd
}
