package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/agent"
	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/executor/task"
	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/security/workspace"
	"github.com/entrhq/pilot/pkg/tools/browser"
)

const closePrompt = "Press Enter to close the browser..."

var cliLog *logging.Logger

func init() {
	var err error
	cliLog, err = logging.NewLogger("cli")
	if err != nil {
		cliLog.Warnf("Failed to initialize cli logger, using stderr fallback: %v", err)
	}
}

type agentFlags struct {
	task           string
	taskFile       string
	model          string
	baseURL        string
	browserPath    string
	cdpURL         string
	userDataDir    string
	headless       bool
	maxSteps       int
	allowedDomains []string
	timeout        time.Duration
	showThinking   bool
	noWait         bool
	copyResult     bool
	outputDir      string
}

func newAgentCmd(a *app) *cobra.Command {
	f := &agentFlags{}
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run one natural-language task in a local browser",
		Long: `Launches a browser, hands it to the LLM agent together with the task and
renders the agent's progress. When the task ends the browser stays open
until Enter is pressed.

Without --task or --task-file the built-in LinkedIn post task runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.apply(cmd, a.cfg); err != nil {
				return err
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runAgent(cmd.Context(), a.cfg, f, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	f.bind(cmd)
	return cmd
}

func (f *agentFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.task, "task", "", "task for the agent")
	fl.StringVar(&f.taskFile, "task-file", "", "YAML file with the task (and optional max_steps, allowed_domains)")
	fl.StringVar(&f.model, "model", "", "LLM model (default gpt-4o)")
	fl.StringVar(&f.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	fl.StringVar(&f.browserPath, "browser-path", "", "browser executable to launch")
	fl.StringVar(&f.cdpURL, "cdp-url", "", "attach to a running browser over CDP instead of launching one")
	fl.StringVar(&f.userDataDir, "user-data-dir", "", "browser profile directory (keeps logins between runs)")
	fl.BoolVar(&f.headless, "headless", false, "run the browser without a window")
	fl.IntVar(&f.maxSteps, "max-steps", 0, "maximum agent steps")
	fl.StringSliceVar(&f.allowedDomains, "allowed-domains", nil, "restrict navigation to these domain patterns (e.g. linkedin.com,*.linkedin.com)")
	fl.DurationVar(&f.timeout, "timeout", 0, "overall task timeout (0 = none)")
	fl.BoolVar(&f.showThinking, "show-thinking", false, "print the model's reasoning")
	fl.BoolVar(&f.noWait, "no-wait", false, "close the browser as soon as the task ends")
	fl.StringVar(&f.outputDir, "output-dir", "", "directory for files the agent saves, such as PDFs (default .)")
	fl.BoolVar(&f.copyResult, "copy-result", false, "copy the final result to the clipboard")
	cmd.MarkFlagsMutuallyExclusive("task", "task-file")
	cmd.MarkFlagsMutuallyExclusive("cdp-url", "user-data-dir")
}

// apply layers the flags the user actually set over cfg.
func (f *agentFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if f.taskFile != "" {
		tf, err := config.LoadTaskFile(f.taskFile)
		if err != nil {
			return err
		}
		tf.Apply(cfg)
	}
	if changed("task") {
		cfg.Agent.Task = f.task
	}
	if changed("model") {
		cfg.LLM.Model = f.model
	}
	if changed("base-url") {
		cfg.LLM.BaseURL = f.baseURL
	}
	if changed("browser-path") {
		cfg.Browser.ExecutablePath = f.browserPath
	}
	if changed("cdp-url") {
		cfg.Browser.CDPURL = f.cdpURL
	}
	if changed("user-data-dir") {
		cfg.Browser.UserDataDir = f.userDataDir
	}
	if changed("headless") {
		cfg.Browser.Headless = f.headless
	}
	if changed("max-steps") {
		cfg.Agent.MaxSteps = f.maxSteps
	}
	if changed("allowed-domains") {
		cfg.Browser.AllowedDomains = f.allowedDomains
	}
	if changed("output-dir") {
		cfg.Browser.OutputDir = f.outputDir
	}
	if changed("timeout") {
		cfg.Agent.Timeout = f.timeout
	}
	if changed("show-thinking") {
		cfg.Agent.ShowThinking = f.showThinking
	}
	if f.noWait {
		cfg.Agent.WaitForEnter = false
	}
	if cfg.Agent.Task == "" {
		return errors.New("task is empty")
	}
	return nil
}

func sessionOptions(cfg config.BrowserConfig) browser.SessionOptions {
	path := cfg.ExecutablePath
	if path == "" && cfg.CDPURL == "" {
		path = browser.DefaultExecutablePath(runtime.GOOS)
	}
	return browser.SessionOptions{
		Headless:       cfg.Headless,
		ExecutablePath: path,
		CDPURL:         cfg.CDPURL,
		UserDataDir:    cfg.UserDataDir,
		Viewport:       &browser.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		Timeout:        cfg.Timeout,
	}
}

func runAgent(ctx context.Context, cfg *config.Config, f *agentFlags, in io.Reader, out io.Writer) error {
	provider, err := config.BuildProvider(cfg.LLM)
	if err != nil {
		return err
	}

	manager := browser.NewSessionManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			cliLog.Warnf("browser shutdown: %v", err)
		}
	}()

	if len(cfg.Browser.AllowedDomains) > 0 {
		guard, err := browser.NewDomainGuard(cfg.Browser.AllowedDomains)
		if err != nil {
			return err
		}
		manager.SetGuard(guard)
	}

	outputs, err := workspace.NewGuard(cfg.Browser.OutputDir)
	if err != nil {
		return err
	}
	manager.SetOutputGuard(outputs)

	if _, err := manager.StartSession(browser.DefaultSessionName, sessionOptions(cfg.Browser)); err != nil {
		return err
	}

	ag := agent.NewDefaultAgent(provider,
		agent.WithBrowserManager(manager),
		agent.WithMaxSteps(cfg.Agent.MaxSteps),
		agent.WithCustomInstructions(composeInstructions()),
	)
	exec := task.NewExecutor(ag,
		task.WithWriter(out),
		task.WithTimeout(cfg.Agent.Timeout),
		task.WithShowThinking(cfg.Agent.ShowThinking),
	)

	res, err := exec.Run(ctx, cfg.Agent.Task)
	if err != nil {
		return err
	}

	if f.copyResult && res.FinalResult != "" {
		if err := clipboard.WriteAll(res.FinalResult); err != nil {
			cliLog.Warnf("copy result to clipboard: %v", err)
			fmt.Fprintf(out, "Could not copy the result to the clipboard: %v\n", err)
		} else {
			fmt.Fprintln(out, "Result copied to the clipboard.")
		}
	}

	if cfg.Agent.WaitForEnter {
		if err := waitForEnter(ctx, in, out); err != nil {
			return err
		}
	}

	if res.Status != task.StatusCompleted {
		return &reportedError{err: fmt.Errorf("task %s", res.Status)}
	}
	return nil
}

// waitForEnter blocks until Enter is pressed or ctx is canceled, so an
// interrupt still closes the browser.
func waitForEnter(ctx context.Context, in io.Reader, out io.Writer) error {
	if ctx.Err() != nil {
		return nil
	}
	done := make(chan error, 1)
	go func() {
		done <- task.WaitForEnter(in, out, closePrompt)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fmt.Fprintln(out)
		return nil
	}
}
