package command

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/projsnap/internal/cli/output"
	"github.com/yndnr/projsnap/internal/core/domain"
	"github.com/yndnr/projsnap/pkg/digest"
)

// SnapshotCommand returns the snapshot subcommand group.
func SnapshotCommand() *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Aliases: []string{"snap"},
		Usage:   "Manage project snapshots",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Capture a snapshot of a project directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "root",
						Aliases: []string{"r"},
						Value:   ".",
						Usage:   "Project directory to capture",
					},
					&cli.StringFlag{
						Name:    "label",
						Aliases: []string{"l"},
						Usage:   "Short name for the snapshot",
					},
					&cli.StringFlag{
						Name:    "note",
						Aliases: []string{"n"},
						Usage:   "Longer description",
					},
					&cli.StringFlag{
						Name:    "kind",
						Aliases: []string{"k"},
						Value:   domain.KindManual,
						Usage:   "Snapshot type (manual, auto)",
					},
				},
				Action: snapshotCreate,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List snapshots, newest first",
				Action:  snapshotList,
			},
			{
				Name:      "show",
				Usage:     "Show snapshot details and captured files",
				ArgsUsage: "ID",
				Action:    snapshotShow,
			},
			{
				Name:      "restore",
				Usage:     "Write a snapshot's files back to disk",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
					&cli.StringFlag{
						Name:  "source-root",
						Usage: "Captured project root (with --target-root)",
					},
					&cli.StringFlag{
						Name:  "target-root",
						Usage: "Restore into this directory instead of the original paths",
					},
				},
				Action: snapshotRestore,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a snapshot",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: snapshotDelete,
			},
			{
				Name:      "compare",
				Aliases:   []string{"diff"},
				Usage:     "Compare a live file with the snapshot's first captured file",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "path",
						Aliases:  []string{"p"},
						Usage:    "Live file to compare",
						Required: true,
					},
				},
				Action: snapshotCompare,
			},
			{
				Name:  "prune",
				Usage: "Delete old snapshots of one type, keeping the newest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Value: domain.KindAuto,
						Usage: "Snapshot type to prune",
					},
					&cli.IntFlag{
						Name:     "keep",
						Usage:    "Number of snapshots to keep",
						Required: true,
					},
				},
				Action: snapshotPrune,
			},
		},
	}
}

// ============================================================================
// Display types
// ============================================================================

// summaryList renders GET /snapshots items.
type summaryList []domain.SnapshotSummary

func (l summaryList) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"ID", "NAME", "TYPE", "FILES", "SIZE", "CREATED"}}
	if wide {
		t.Headers = append(t.Headers, "DESCRIPTION")
	}
	for _, s := range l {
		row := []string{
			s.ID,
			output.Cell(s.Label),
			s.Kind,
			strconv.Itoa(s.FileCount),
			output.FormatBytes(int64(s.TotalSize)),
			output.FormatMillis(s.CreatedAt),
		}
		if wide {
			row = append(row, output.Cell(s.Note))
		}
		t.AddRow(row...)
	}
	return t
}

// snapshotDetail renders GET /snapshots/{id} as a header block plus file rows.
type snapshotDetail domain.Snapshot

func (d *snapshotDetail) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"PATH", "SIZE", "HASH"}}
	for _, f := range d.Files {
		hash := digest.Short(f.Digest, 12)
		if wide {
			hash = f.Digest
		}
		t.AddRow(f.Path, output.FormatBytes(int64(len(f.Content))), hash)
	}
	return t
}

// ============================================================================
// Actions
// ============================================================================

func snapshotCreate(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	// The server resolves the root on its own filesystem; send an absolute path.
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	body := map[string]string{
		"root":  root,
		"label": c.String("label"),
		"note":  c.String("note"),
		"kind":  c.String("kind"),
	}

	var summary domain.SnapshotSummary
	err = withSpinner(c, "Capturing "+root, func(ctx context.Context) error {
		return client.PostJSON(ctx, "/snapshots", body, &summary)
	})
	if err != nil {
		return err
	}

	if !tableOutput(c) {
		return render(c, summary)
	}
	fmt.Fprintf(c.App.Writer, "Snapshot %s created: %d files, %s\n",
		summary.ID, summary.FileCount, output.FormatBytes(int64(summary.TotalSize)))
	return nil
}

func snapshotList(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	var result struct {
		Items []domain.SnapshotSummary `json:"items"`
		Total int                      `json:"total"`
	}
	if err := client.GetJSON(c.Context, "/snapshots", &result); err != nil {
		return err
	}

	if !tableOutput(c) {
		return render(c, result)
	}
	if err := render(c, summaryList(result.Items)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "\nTotal: %d snapshots\n", result.Total)
	return nil
}

func snapshotShow(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	var snap domain.Snapshot
	if err := client.GetJSON(c.Context, "/snapshots/"+url.PathEscape(id), &snap); err != nil {
		return err
	}

	if !tableOutput(c) {
		return render(c, snap)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "ID:          %s\n", snap.ID)
	fmt.Fprintf(w, "Name:        %s\n", output.Cell(snap.Label))
	fmt.Fprintf(w, "Description: %s\n", output.Cell(snap.Note))
	fmt.Fprintf(w, "Type:        %s\n", snap.Kind)
	fmt.Fprintf(w, "Created:     %s\n", output.FormatMillis(snap.CreatedAt))
	fmt.Fprintf(w, "Files:       %d\n", snap.FileCount)
	fmt.Fprintf(w, "Size:        %s\n\n", output.FormatBytes(int64(snap.TotalSize)))

	detail := snapshotDetail(snap)
	return render(c, &detail)
}

func snapshotRestore(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}

	source, target := c.String("source-root"), c.String("target-root")
	if (source == "") != (target == "") {
		return fmt.Errorf("--source-root and --target-root must be given together")
	}
	if source != "" {
		if source, err = filepath.Abs(source); err != nil {
			return fmt.Errorf("resolve source root: %w", err)
		}
		if target, err = filepath.Abs(target); err != nil {
			return fmt.Errorf("resolve target root: %w", err)
		}
	}

	if !c.Bool("force") {
		prompt := fmt.Sprintf("Restore snapshot %s? Files at their captured paths will be overwritten.", id)
		if target != "" {
			prompt = fmt.Sprintf("Restore snapshot %s into %s?", id, target)
		}
		if !confirm(c, prompt) {
			fmt.Fprintln(c.App.Writer, "Cancelled.")
			return nil
		}
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	var body any
	if target != "" {
		body = map[string]string{"source_root": source, "target_root": target}
	}

	var result struct {
		ID    string `json:"id"`
		Files int    `json:"files"`
	}
	err = withSpinner(c, "Restoring "+id, func(ctx context.Context) error {
		return client.PostJSON(ctx, "/snapshots/"+url.PathEscape(id)+"/restore", body, &result)
	})
	if err != nil {
		return err
	}

	if !tableOutput(c) {
		return render(c, result)
	}
	fmt.Fprintf(c.App.Writer, "Restored %d files from snapshot %s.\n", result.Files, result.ID)
	return nil
}

func snapshotDelete(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}

	if !c.Bool("force") && !confirm(c, fmt.Sprintf("Delete snapshot %s?", id)) {
		fmt.Fprintln(c.App.Writer, "Cancelled.")
		return nil
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	if err := client.PostJSON(c.Context, "/snapshots/"+url.PathEscape(id)+"/delete", nil, nil); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Snapshot %s deleted.\n", id)
	return nil
}

// compareResult mirrors the server's compare payload.
type compareResult struct {
	ID             string `json:"id"`
	Path           string `json:"path"`
	Live           string `json:"live"`
	Snapshot       string `json:"snapshot"`
	LiveDigest     string `json:"live_digest"`
	SnapshotDigest string `json:"snapshot_digest"`
	Identical      bool   `json:"identical"`
}

func snapshotCompare(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(c.String("path"))
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	var result compareResult
	if err := client.PostJSON(c.Context, "/snapshots/"+url.PathEscape(id)+"/compare",
		map[string]string{"path": path}, &result); err != nil {
		return err
	}

	if !tableOutput(c) {
		return render(c, result)
	}

	w := c.App.Writer
	if result.Identical {
		fmt.Fprintf(w, "✓ %s matches snapshot %s (%s)\n", path, id, digest.Short(result.LiveDigest, 12))
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(result.Snapshot),
		B:        difflib.SplitLines(result.Live),
		FromFile: id,
		ToFile:   path,
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("diff: %w", err)
	}
	fmt.Fprint(w, diff)
	return nil
}

func snapshotPrune(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	body := map[string]any{
		"kind": c.String("kind"),
		"keep": c.Int("keep"),
	}

	var result struct {
		Removed []string `json:"removed"`
	}
	if err := client.PostJSON(c.Context, "/snapshots/prune", body, &result); err != nil {
		return err
	}

	if !tableOutput(c) {
		return render(c, result)
	}

	w := c.App.Writer
	if len(result.Removed) == 0 {
		fmt.Fprintln(w, "Nothing to prune.")
		return nil
	}
	for _, id := range result.Removed {
		fmt.Fprintf(w, "deleted %s\n", id)
	}
	fmt.Fprintf(w, "Pruned %d snapshots.\n", len(result.Removed))
	return nil
}
