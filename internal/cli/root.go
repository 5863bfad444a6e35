package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"hikepredict/internal/common/fsutil"
	"hikepredict/internal/config"
	"hikepredict/internal/picker"
	"hikepredict/internal/routes"
	"hikepredict/internal/store"
	"hikepredict/internal/tui"
	"hikepredict/internal/view"
	"hikepredict/pkg/types"
)

// exactArgs is cobra.ExactArgs with a usage error.
func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{msg: fmt.Sprintf("%s requires %s", cmd.CommandPath(), what)}
		}
		return nil
	}
}

// minArgs is cobra.MinimumNArgs with a usage error.
func minArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError{msg: fmt.Sprintf("%s requires %s", cmd.CommandPath(), what)}
		}
		return nil
	}
}

// buildRootCmd constructs the command tree.
func buildRootCmd() *cobra.Command {
	d := config.Defaults()
	root := &cobra.Command{
		Use:           "hikepredict",
		Short:         "Upload hiking routes as training data and predict completion times",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return usageError{msg: "a command is required"}
		},
	}

	// Persistent flags, layered over the config file and HIKEPREDICT_* env by config.Resolve
	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (.yaml, .yml, .json, .toml)")
	pf.String("base-url", d.BaseURL, "Prediction service base URL (HIKEPREDICT_BASE_URL)")
	pf.Int("timeout", d.TimeoutSeconds, "Per-request timeout in seconds, 0 disables (HIKEPREDICT_TIMEOUT_SECONDS)")
	pf.String("log-level", d.LogLevel, "Log level: debug|info|warn|error|off")
	pf.String("log-format", d.LogFormat, "Log format: console|json")
	pf.String("log-file", "", "Write logs to this file instead of stderr")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address while running, e.g. :9090")

	listCmd := &cobra.Command{Use: "list", Aliases: []string{"ls"}, Short: "List training data", Example: "  hikepredict list\n  hikepredict list --json", Args: exactArgs(0, "no arguments"), RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withSession(cmd, nil, func(s *store.Store) error {
			st := s.Dispatch(cmd.Context(), store.Mounted{})
			if st.ErrorMessage != "" {
				return errors.New(st.ErrorMessage)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), st.TrainingItems)
			}
			printItems(cmd.OutOrStdout(), st.TrainingItems)
			return nil
		})
	}}
	listCmd.Flags().Bool("json", false, "Print the items as JSON")

	deleteCmd := &cobra.Command{Use: "delete <id>", Aliases: []string{"rm"}, Short: "Delete a training item", Example: "  hikepredict delete 3", Args: exactArgs(1, "a training item id"), RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, nil, func(s *store.Store) error {
			st := s.Dispatch(cmd.Context(), store.DeleteRequested{ID: types.ItemID(args[0])})
			if st.ErrorMessage != "" {
				return errors.New(st.ErrorMessage)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			printItems(cmd.OutOrStdout(), st.TrainingItems)
			return nil
		})
	}}

	trainCmd := &cobra.Command{Use: "train <file.gpx|dir>...", Aliases: []string{"upload"}, Short: "Upload GPX routes as training data", Example: "  hikepredict train ~/routes/ridge-loop.gpx\n  hikepredict train ~/routes/2024", Args: minArgs(1, "a GPX file or directory"), RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := routes.Expand(args)
		if err != nil {
			return usageError{msg: err.Error()}
		}
		s, err := open(cmd, false)
		if err != nil {
			return err
		}
		defer s.close()
		exec := s.executor()
		st := store.New(exec)
		var last store.State
		failed := 0
		for _, p := range paths {
			exec.Picker = picker.Path(p)
			last = st.Dispatch(cmd.Context(), store.PickRequested{Purpose: picker.ForTraining})
			if uploadFailed(last.ErrorMessage) {
				if len(paths) == 1 {
					return errors.New(last.ErrorMessage)
				}
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", p, last.ErrorMessage)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", p)
		}
		if failed == len(paths) {
			return fmt.Errorf("all %d uploads failed", failed)
		}
		if failed == 0 {
			// The server stored every file; only the refresh after the last one failed.
			if last.ErrorMessage != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", last.ErrorMessage)
				return nil
			}
			printItems(cmd.OutOrStdout(), last.TrainingItems)
			return nil
		}
		// A failed last upload leaves the list from an earlier refresh.
		last = st.Dispatch(cmd.Context(), store.RefreshRequested{})
		printItems(cmd.OutOrStdout(), last.TrainingItems)
		return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
	}}

	predictCmd := &cobra.Command{Use: "predict <file.gpx>", Short: "Predict the completion time of a GPX route", Example: "  hikepredict predict ~/routes/summit.gpx\n  hikepredict predict summit.gpx --json", Args: exactArgs(1, "a GPX file path"), RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withSession(cmd, picker.Path(args[0]), func(s *store.Store) error {
			st := s.Dispatch(cmd.Context(), store.PickRequested{Purpose: picker.ForPrediction})
			if st.ErrorMessage != "" {
				return errors.New(st.ErrorMessage)
			}
			if st.Prediction == nil {
				return errors.New("no prediction received")
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"estimated_time": *st.Prediction,
					"minutes":        view.Minutes(*st.Prediction),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.PredictionText(*st.Prediction))
			return nil
		})
	}}
	predictCmd.Flags().Bool("json", false, "Print the estimate as JSON")

	tuiCmd := &cobra.Command{Use: "tui", Aliases: []string{"ui"}, Short: "Open the interactive route screen", Args: exactArgs(0, "no arguments"), RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir != "" {
			p, err := fsutil.ExpandHome(dir)
			if err != nil || !fsutil.PathExists(p) {
				return usageError{msg: "picker directory not found: " + dir}
			}
			dir = p
		}
		s, err := open(cmd, true)
		if err != nil {
			return err
		}
		defer s.close()
		return fnRunTUI(cmd.Context(), tui.Options{Exec: s.executor(), StartDir: dir, Logger: &s.log})
	}}
	tuiCmd.Flags().String("dir", "", "Directory the file picker starts in (defaults to the working directory)")

	root.AddCommand(listCmd, deleteCmd, trainCmd, predictCmd, tuiCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout()) }})
	root.AddCommand(completionCmd)

	return root
}

// withSession opens a session, wires a store with p as its file picker and
// runs fn.
func withSession(cmd *cobra.Command, p picker.Picker, fn func(*store.Store) error) error {
	s, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()
	exec := s.executor()
	exec.Picker = p
	return fn(store.New(exec))
}

func printItems(w io.Writer, items []types.TrainingItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No training data yet")
		return
	}
	for _, it := range items {
		fmt.Fprintln(w, view.ListLine(it))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// uploadFailed reports whether msg came from picking or uploading a file
// rather than from the list refresh that follows a successful upload.
func uploadFailed(msg string) bool {
	return strings.HasPrefix(msg, store.LabelUpload) || strings.HasPrefix(msg, store.LabelPick)
}
