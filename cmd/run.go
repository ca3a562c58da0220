/*
Copyright © 2023 sanix-darker <s4nixd@gmail.com>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/sanix-darker/reviewbot/internal/changes"
	"github.com/sanix-darker/reviewbot/internal/comment"
	"github.com/sanix-darker/reviewbot/internal/common"
	"github.com/sanix-darker/reviewbot/internal/config"
	"github.com/sanix-darker/reviewbot/internal/linter"
	"github.com/sanix-darker/reviewbot/internal/printers"
	"github.com/sanix-darker/reviewbot/internal/provider"
	"github.com/sanix-darker/reviewbot/internal/renders"
	"github.com/sanix-darker/reviewbot/internal/review"
	"github.com/sanix-darker/reviewbot/internal/vcs"
)

var (
	flagRepo        string
	flagPR          int
	flagPath        string
	flagBase        string
	flagHead        string
	flagDryRun      bool
	flagYes         bool
	flagCopy        bool
	flagDebug       bool
	flagConcurrency int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Review a pull request and post the findings.",
	Long: `Collect the files changed between --base and --head, run the applicable
linters and (when a provider credential is configured) an AI review for each
file, then post one comment per reviewed file plus a summary to the PR.

With --dry-run the composed comments are printed instead of posted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := config.NewDefaultConfig()
		applyFlags(&conf)
		return runReview(conf)
	},
}

func init() {
	addRunFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagRepo, "repo", "", "repository in owner/name form (default $GITHUB_REPOSITORY)")
	fs.IntVar(&flagPR, "pr", 0, "pull request number")
	fs.StringVar(&flagPath, "path", ".", "path to the local checkout")
	fs.StringVar(&flagBase, "base", "origin/main", "base revision of the pull request")
	fs.StringVar(&flagHead, "head", "HEAD", "head revision of the pull request")
	fs.BoolVar(&flagDryRun, "dry-run", false, "print the composed comments instead of posting them")
	fs.BoolVarP(&flagYes, "yes", "y", false, "post without asking for confirmation")
	fs.BoolVar(&flagCopy, "copy", false, "copy the summary comment to the clipboard")
	fs.BoolVar(&flagDebug, "debug", false, "print degradation notices and provider details")
	fs.IntVar(&flagConcurrency, "concurrency", 0, "max files reviewed in parallel (default from config)")
}

func applyFlags(conf *config.Config) {
	if flagRepo != "" {
		conf.Repo = flagRepo
	}
	if flagPR != 0 {
		conf.PRNumber = flagPR
	}
	if flagConcurrency > 0 {
		conf.Concurrency = flagConcurrency
	}
	conf.RepoPath = flagPath
	conf.BaseRef = flagBase
	conf.HeadRef = flagHead
	conf.DryRun = flagDryRun
	conf.AssumeYes = flagYes
	conf.CopySummary = flagCopy
	conf.Debug = flagDebug
}

func runReview(conf config.Config) error {
	files, err := changes.Collect(conf.RepoPath, conf.BaseRef, conf.HeadRef, changes.Options{
		MaxFileSize: conf.MaxFileSize,
		Include:     conf.Include,
		Exclude:     conf.Exclude,
	})
	if err != nil {
		return err
	}

	selected, err := provider.Select(conf.Viper)
	if err != nil {
		return err
	}
	if conf.Debug {
		if selected == nil {
			fmt.Fprintln(conf.ErrWriter, "[debug] no AI provider configured, linter-only run")
		} else {
			fmt.Fprintf(conf.ErrWriter, "[debug] provider=%s files=%d\n", selected.Info().Name, len(files))
		}
	}

	runner := linter.NewRunner(conf.RepoPath, conf.LintTimeout)
	if len(conf.DisabledLinters) > 0 {
		runner.Disabled = make(map[string]bool, len(conf.DisabledLinters))
		for _, name := range conf.DisabledLinters {
			runner.Disabled[name] = true
		}
	}
	runner.ExtraArgs = conf.LinterArgs

	orch := &review.Orchestrator{
		Linters:        runner,
		Provider:       selected,
		Workers:        conf.Concurrency,
		MaxPromptBytes: conf.MaxPromptBytes,
		Debug:          conf.Debug,
		ErrWriter:      conf.ErrWriter,
	}

	var spin *spinner.Spinner
	if term.IsTerminal(int(os.Stdout.Fd())) && !conf.Debug {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " reviewing changed files..."
		spin.Start()
	}

	reviews := orch.Run(context.Background(), files)

	if spin != nil {
		spin.Stop()
	}

	payloads := comment.Compose(reviews, conf.MaxFindingsPerFile)

	if conf.DryRun {
		return printPayloads(conf, payloads)
	}
	return postPayloads(conf, payloads)
}

// printPayloads renders the composed comments to the terminal instead of
// posting them.
func printPayloads(conf config.Config, payloads []comment.Payload) error {
	for _, pl := range payloads {
		fmt.Fprintln(conf.OutWriter, renders.RenderMarkdown(pl.Body))
	}
	maybeCopySummary(conf, payloads)
	return nil
}

// postPayloads delivers the comments to the PR in composer order. A posting
// failure is the one fatal condition of a run and surfaces as a non-zero
// exit; the pipeline does not retry posting.
func postPayloads(conf config.Config, payloads []comment.Payload) error {
	if conf.Repo == "" || conf.PRNumber == 0 {
		return fmt.Errorf("--repo and --pr are required to post comments (or use --dry-run)")
	}

	if !conf.AssumeYes && term.IsTerminal(int(os.Stdin.Fd())) {
		msg := fmt.Sprintf("Post %d comment(s) to %s#%d?", len(payloads), conf.Repo, conf.PRNumber)
		if !printers.Confirm(msg) {
			fmt.Fprintln(conf.OutWriter, "aborted, nothing posted")
			return nil
		}
	}

	sink, err := vcs.Get("github", conf.Viper.GetString("github.token"), vcs.Target{
		Repo:     conf.Repo,
		PRNumber: conf.PRNumber,
		BaseURL:  conf.Viper.GetString("github.base_url"),
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, pl := range payloads {
		switch pl.Kind {
		case comment.KindFile:
			err = sink.PostFileComment(ctx, pl.Path, pl.Body)
		case comment.KindSummary:
			err = sink.PostSummaryComment(ctx, pl.Body)
		}
		if err != nil {
			return fmt.Errorf("failed to post comments: %w", err)
		}
	}

	maybeCopySummary(conf, payloads)
	return nil
}

func maybeCopySummary(conf config.Config, payloads []comment.Payload) {
	if !conf.CopySummary || len(payloads) == 0 {
		return
	}
	// The summary is always the last payload.
	if err := common.SetClipboardValue(payloads[len(payloads)-1].Body); err != nil && conf.Debug {
		fmt.Fprintf(conf.ErrWriter, "[debug] clipboard copy failed: %v\n", err)
	}
}
