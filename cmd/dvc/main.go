package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"dvc-go/internal/app"
	"dvc-go/internal/config"
	"dvc-go/internal/dvc"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file from the default location.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults.ConfigPath, nil
}

// newApp reads the config and creates a DVCApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Capture", "Publish").
func newApp(operation string, args []string) (*app.DVCApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewDVCApp(cfg, operation, strings.Join(args, " "))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// readPassphrase prompts on the terminal without echoing input.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var changeColors = map[dvc.ChangeType]*color.Color{
	dvc.Addition:     color.New(color.FgGreen),
	dvc.Deletion:     color.New(color.FgRed),
	dvc.Modification: color.New(color.FgYellow),
	dvc.Rename:       color.New(color.FgCyan),
	dvc.Movement:     color.New(color.FgBlue),
}

var changeMarkers = map[dvc.ChangeType]string{
	dvc.Addition:     "A",
	dvc.Deletion:     "D",
	dvc.Modification: "M",
	dvc.Rename:       "R",
	dvc.Movement:     "V",
}

// printDiffs writes one line per diff and, with changes set, one indented
// line per selectable change.
func printDiffs(views []dvc.DiffView, changes bool) {
	for _, v := range views {
		marker := " "
		if v.HasPrimary {
			marker = changeColors[v.Primary].Sprint(changeMarkers[v.Primary])
		}
		name := v.Name
		if v.IsFolder {
			name += "/"
		}
		fmt.Printf("%s %-40s %s\n", marker, name, v.Path)
		if !changes {
			continue
		}
		for _, c := range v.Changes {
			box := "[ ]"
			if c.Selected {
				box = "[x]"
			}
			fmt.Printf("    %s %-13s %s\n", box, c.Type, c.ID)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "dvc",
	Short: "Version control for cloud-drive documents",
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

		salt := uuid.New().String()
		cfg := config.NewConfig(salt, defaults.BaseDir)
		cfg.Author, _ = cmd.Flags().GetString("author")

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
		fmt.Println("Run `dvc db migrate` to create the database.")
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

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Repository: %s\n", cfg.Repository)
		fmt.Printf("Branch:     %s\n", cfg.Branch)
		fmt.Printf("Author:     %s\n", cfg.Author)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Drive:      %s %s\n", cfg.Drive.Type, cfg.Drive.Root)
		for _, a := range cfg.Archives {
			fmt.Printf("Archive:    %s (%s)\n", a.Name, a.Type)
		}
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the metadata database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.MigrateDatabase(cfg); err != nil {
			return err
		}
		fmt.Println("Database is up to date.")
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := app.DatabaseStatus(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Schema version: %d (latest %d)\n", st.Current, st.Latest)
		if st.Dirty {
			fmt.Println("A previous migration failed; the database is dirty.")
		} else if n := st.Pending(); n > 0 {
			fmt.Printf("%d migration(s) pending, run `dvc db migrate`.\n", n)
		}
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage archive encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the archive key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupKeys", args)
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupKeys(pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Println("Encryption keys created.")
		return nil
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the archive public key",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("PublicKey", args)
		if err != nil {
			return err
		}
		defer a.Close()

		key, err := a.PublicKey()
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}

// init command
var initCmd = &cobra.Command{
	Use:   "init NAME",
	Short: "Create a repository at the drive root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.NewDVCApp(cfg, "Init", args[0])
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		repo, branch, err := a.Init(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		cfg.Repository = repo.Name
		cfg.Branch = branch.Name
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Created repository %s on branch %s\n", repo.Name, branch.Name)
		return nil
	},
}

// branch command
var branchCmd = &cobra.Command{
	Use:   "branch [NAME]",
	Short: "List or create branches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			a, err := newApp("CreateBranch", args)
			if err != nil {
				return err
			}
			defer a.Close()

			branch, err := a.CreateBranch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created branch %s\n", branch.Name)
			return nil
		}

		a, err := newApp("Branches", args)
		if err != nil {
			return err
		}
		defer a.Close()

		branches, err := a.Branches(cmd.Context())
		if err != nil {
			return err
		}
		current, _ := a.Branch(cmd.Context(), "")
		for _, b := range branches {
			mark := " "
			if current != nil && current.ID == b.ID {
				mark = "*"
			}
			fmt.Printf("%s %-20s %d uncaptured\n", mark, b.Name, b.UncapturedChangesCount)
		}
		return nil
	},
}

var branchDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteBranch", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteBranch(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted branch %s\n", args[0])
		return nil
	},
}

var forkCmd = &cobra.Command{
	Use:   "fork NAME",
	Short: "Create a branch from the current branch's head",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		a, err := newApp("ForkBranch", args)
		if err != nil {
			return err
		}
		defer a.Close()

		branch, err := a.ForkBranch(cmd.Context(), from, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Forked branch %s\n", branch.Name)
		return nil
	},
}

// working tree commands
var pullCmd = &cobra.Command{
	Use:   "pull FILE_ID",
	Short: "Pull one drive file into the working tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		a, err := newApp("Pull", args)
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.Pull(cmd.Context(), branch, args[0])
		if err != nil {
			return err
		}
		switch {
		case entry == nil:
			fmt.Printf("%s is not tracked\n", args[0])
		case entry.IsDeleted:
			fmt.Printf("%s was removed\n", args[0])
		default:
			fmt.Printf("Pulled %s\n", args[0])
		}
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull every drive file into the working tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		a, err := newApp("Sync", args)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Sync(cmd.Context(), branch)
		if err != nil {
			return err
		}
		fmt.Printf("Pulled %d file(s), removed %d\n", res.Pulled, res.Removed)
		for _, id := range res.Skipped {
			fmt.Printf("Skipped %s\n", id)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show uncaptured changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		a, err := newApp("Status", args)
		if err != nil {
			return err
		}
		defer a.Close()

		views, err := a.Status(cmd.Context(), branch)
		if err != nil {
			return err
		}
		if len(views) == 0 {
			fmt.Println("Nothing to capture.")
			return nil
		}
		printDiffs(views, false)
		return nil
	},
}

// commit commands
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Draft a commit from the working tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		a, err := newApp("Capture", args)
		if err != nil {
			return err
		}
		defer a.Close()

		commit, err := a.Capture(cmd.Context(), branch)
		if err != nil {
			return err
		}
		fmt.Printf("Draft %s\n", a.EncodeID(commit.ID))
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff COMMIT",
	Short: "Show the changes of a commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Diffs", args)
		if err != nil {
			return err
		}
		defer a.Close()

		views, err := a.Diffs(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(views) == 0 {
			fmt.Println("No changes.")
			return nil
		}
		printDiffs(views, true)
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select COMMIT [CHANGE_ID...]",
	Short: "Keep exactly the listed changes of a draft",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SelectChanges", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Select(cmd.Context(), args[0], args[1:]); err != nil {
			return err
		}
		fmt.Printf("Selected %d change(s)\n", len(args)-1)
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish COMMIT",
	Short: "Publish a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		summary, _ := cmd.Flags().GetString("summary")
		a, err := newApp("Publish", args)
		if err != nil {
			return err
		}
		defer a.Close()

		commit, err := a.Publish(cmd.Context(), args[0], title, summary)
		if err != nil {
			return err
		}
		fmt.Printf("Published %s %s\n", a.EncodeID(commit.ID), commit.Title)
		return nil
	},
}

var discardCmd = &cobra.Command{
	Use:   "discard COMMIT",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Discard", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Discard(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Discarded %s\n", args[0])
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show published commits and drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		limit, _ := cmd.Flags().GetInt("limit")
		a, err := newApp("Log", args)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		drafts, err := a.Drafts(ctx, branch)
		if err != nil {
			return err
		}
		for _, c := range drafts {
			fmt.Printf("%s  %-10s  %s  draft\n", a.EncodeID(c.ID), c.Author, c.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		commits, err := a.Log(ctx, branch, limit)
		if err != nil {
			return err
		}
		if len(commits) == 0 && len(drafts) == 0 {
			fmt.Println("No commits.")
			return nil
		}
		for _, c := range commits {
			fmt.Printf("%s  %-10s  %s  %s\n", a.EncodeID(c.ID), c.Author, c.PublishedAt.Time.Format("2006-01-02 15:04:05"), c.Title)
		}
		return nil
	},
}

// version commands
var versionsCmd = &cobra.Command{
	Use:   "versions FILE_ID",
	Short: "List every version of a drive file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("FileHistory", args)
		if err != nil {
			return err
		}
		defer a.Close()

		versions, err := a.FileHistory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Printf("%s  %s  %s\n", a.EncodeID(v.ID), v.CreatedAt.Format("2006-01-02 15:04:05"), v.Name)
		}
		return nil
	},
}

var revertCmd = &cobra.Command{
	Use:   "revert VERSION",
	Short: "Point the working tree back at a version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		a, err := newApp("RestoreVersion", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.RestoreVersion(cmd.Context(), branch, args[0]); err != nil {
			return err
		}
		fmt.Printf("Restored version %s\n", args[0])
		return nil
	},
}

// backup commands
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Archive every committed version without a backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Backup", args)
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Backup(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Backed up %d version(s)\n", count)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore VERSION",
	Short: "Write the archived text of a version to stdout or a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		a, err := newApp("RestoreBackup", args)
		if err != nil {
			return err
		}
		defer a.Close()

		var pass string
		if a.Encrypted() {
			pass, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		w := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		return a.RestoreBackup(cmd.Context(), args[0], w, pass)
	},
}

var shareCmd = &cobra.Command{
	Use:   "share PRINCIPAL",
	Short: "Grant access to the repository's archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		a, err := newApp("Share", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Share(cmd.Context(), args[0], role); err != nil {
			return err
		}
		fmt.Printf("Shared archive with %s as %s\n", args[0], role)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory", args)
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-8s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("author", os.Getenv("USER"), "Author recorded on commits")

	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	keysCmd.AddCommand(keysInitCmd)
	keysCmd.AddCommand(keysShowCmd)
	branchCmd.AddCommand(branchDeleteCmd)

	for _, c := range []*cobra.Command{forkCmd, pullCmd, syncCmd, statusCmd, captureCmd, logCmd, revertCmd} {
		c.Flags().StringP("branch", "b", "", "Branch to use instead of the configured one")
	}
	forkCmd.Flags().String("from", "", "Source branch (default: the configured branch)")
	publishCmd.Flags().StringP("title", "t", "", "Commit title")
	publishCmd.Flags().StringP("summary", "m", "", "Commit summary")
	logCmd.Flags().IntP("limit", "n", 20, "Maximum number of commits to show")
	restoreCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	shareCmd.Flags().String("role", string(dvc.RoleReader), "reader or writer")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	rootCmd.AddCommand(
		configCmd,
		dbCmd,
		keysCmd,
		initCmd,
		branchCmd,
		forkCmd,
		pullCmd,
		syncCmd,
		statusCmd,
		captureCmd,
		diffCmd,
		selectCmd,
		publishCmd,
		discardCmd,
		logCmd,
		versionsCmd,
		revertCmd,
		backupCmd,
		restoreCmd,
		shareCmd,
		historyCmd,
	)
}
