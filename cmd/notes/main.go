package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"notes-go/internal/app"
	"notes-go/internal/config"
	"notes-go/internal/notes"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults under the base
// dir when no file has been initialized yet.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	path := defaults["config_path"]
	cfg, err := config.ReadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.NewConfig(defaults["base_dir"]), path, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, path, nil
}

// newApp reads the config and creates a NotesApp. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "list", "edit").
func newApp(cmd *cobra.Command, operation string, args []string) (*app.NotesApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewNotesApp(cmd.Context(), cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	a.SetParameters(strings.Join(args, " "))

	if scope, _ := cmd.Flags().GetString("scope"); scope != "" {
		if err := a.SetScope(scope); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func printRecords(w io.Writer, recs []*notes.FileRecord) error {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No notes.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tMODIFIED\tSIZE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			r.ID,
			r.Name,
			r.Type,
			r.ModifiedAt.Local().Format("2006-01-02 15:04:05"),
			len(r.Content),
		)
	}
	return tw.Flush()
}

func printRecord(w io.Writer, r *notes.FileRecord) {
	fmt.Fprintf(w, "ID:       %s\n", r.ID)
	fmt.Fprintf(w, "Name:     %s\n", r.Name)
	fmt.Fprintf(w, "Type:     %s (%s)\n", r.Type, notes.IconFor(r.Type))
	fmt.Fprintf(w, "Created:  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Modified: %s\n", r.ModifiedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Content)
}

// editFromFlags collects --name, --content/--stdin and --type into an Edit.
func editFromFlags(cmd *cobra.Command) (notes.Edit, error) {
	var edit notes.Edit
	flags := cmd.Flags()

	if flags.Changed("name") {
		name, _ := flags.GetString("name")
		edit.Name = &name
	}
	if flags.Changed("type") {
		typ, _ := flags.GetString("type")
		edit.Type = &typ
	}

	fromStdin, _ := flags.GetBool("stdin")
	if fromStdin && flags.Changed("content") {
		return edit, fmt.Errorf("--content and --stdin are mutually exclusive")
	}
	switch {
	case fromStdin:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return edit, fmt.Errorf("reading stdin: %w", err)
		}
		content := string(data)
		edit.Content = &content
	case flags.Changed("content"):
		content, _ := flags.GetString("content")
		edit.Content = &content
	}
	return edit, nil
}

var rootCmd = &cobra.Command{
	Use:          "notes",
	Short:        "Local note storage",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.LoadEnv()
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Configuration from %s:\n\n", path)
		} else {
			fmt.Printf("No configuration at %s, showing defaults:\n\n", path)
		}
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Log Level:    %s\n", cfg.LogLevel)
		fmt.Printf("Scope:        %s\n", cfg.Scope)
		fmt.Printf("Storage Mode: %s\n", cfg.Storage.Mode)
		fmt.Printf("KV Store:     %s %s\n", cfg.Storage.KV.Type, cfg.Storage.KV.DataDir)
		fmt.Printf("Object Store: %s %s%s\n", cfg.Storage.Objects.Type, cfg.Storage.Objects.FSRoot, cfg.Storage.Objects.S3Bucket)
		fmt.Printf("Cache:        %d entries, ttl %s\n", cfg.Cache.Size, cfg.Cache.TTL)
		fmt.Printf("Export Dir:   %s\n", cfg.Export.Dir)
		fmt.Printf("Server Addr:  %s\n", cfg.Server.Addr)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, most recently modified first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "list", args)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.List(cmd.Context())
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), recs)
	},
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		edit, err := editFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "new", args)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Create(cmd.Context(), edit)
		if err != nil {
			return fmt.Errorf("creating note: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "show", args)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Show(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printRecord(cmd.OutOrStdout(), rec)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a note's name, content or type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edit, err := editFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "edit", args)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Edit(cmd.Context(), args[0], edit)
		if err != nil {
			return fmt.Errorf("editing note: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", rec.ID, rec.Name)
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "rename", args)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Rename(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("renaming note: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", rec.ID, rec.Name)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "rm", args)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Remove(cmd.Context(), args[0])
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Find notes by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "search", args)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), recs)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export a note's content as a text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp(cmd, "export", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if out == "-" {
			return a.ExportTo(cmd.Context(), args[0], cmd.OutOrStdout())
		}

		path, err := a.ExportToDir(cmd.Context(), args[0], out)
		if err != nil {
			return fmt.Errorf("exporting note: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

// confirm asks a yes/no question on the terminal. It refuses when stdin is
// not a terminal, so scripts must pass --yes.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to continue without a terminal: pass --yes")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every note in the scope",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp(cmd, "clear", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if !yes {
			ok, err := confirm(cmd, fmt.Sprintf("Remove all notes in %q?", a.Scope()))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		n, err := a.Clear(cmd.Context())
		if err != nil {
			return fmt.Errorf("clearing notes: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d note(s)\n", n)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notes HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(cmd, "serve", args)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Serve(ctx, addr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("scope", "s", "", "Scope to operate on (default from config)")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	for _, c := range []*cobra.Command{newCmd, editCmd} {
		c.Flags().String("name", "", "Note name")
		c.Flags().String("type", "", "Note type (text, code, image, ...)")
		c.Flags().String("content", "", "Note content")
		c.Flags().Bool("stdin", false, "Read content from standard input")
	}
	exportCmd.Flags().StringP("out", "o", "", "Export directory, or - for stdout (default from config)")
	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(serveCmd)
}
