package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ppiankov/twitterwatch/internal/config"
	"github.com/ppiankov/twitterwatch/internal/privacy"
	"github.com/ppiankov/twitterwatch/internal/source"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and backend availability",
	RunE:  doctorAction,
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(out, false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(out, true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(out, false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(out, true, "config.yaml (search %s, sentiment %s, summarize %s)",
		cfg.Search.Backend, cfg.Sentiment.Backend, cfg.Summarize.Backend)

	if handleFlag != "" {
		cfg.Handle = handleFlag
	}
	if cfg.Handle == "" {
		printCheck(out, false, "handle not set")
		ok = false
	} else {
		printCheck(out, true, "handle @%s", cfg.Handle)
	}

	// Search backend
	switch cfg.Search.Backend {
	case "snscrape":
		if path, err := exec.LookPath(cfg.Search.Snscrape.Path); err != nil {
			printCheck(out, false, "snscrape not found (pip install snscrape)")
			ok = false
		} else {
			printCheck(out, true, "snscrape %s", path)
		}
	case "nitter":
		if _, err := source.NewNitter(cfg.Search.Nitter.BaseURL, cfg.Search.Nitter.Timeout.Duration); err != nil {
			printCheck(out, false, "%v", err)
			ok = false
		} else {
			printCheck(out, true, "nitter %s", cfg.Search.Nitter.BaseURL)
		}
	}

	// Inference credentials
	if cfg.Sentiment.Backend == "huggingface" || cfg.Summarize.Backend == "huggingface" {
		if cfg.HuggingFace.APIToken == "" {
			printInfo(out, "%s not set, hosted models will be called anonymously and may be rate limited", cfg.HuggingFace.APIKeyEnv)
		} else {
			printCheck(out, true, "hugging face token (%s)", cfg.HuggingFace.APIKeyEnv)
		}
	}
	if cfg.Summarize.Backend == "llm" {
		if cfg.Summarize.LLM.APIKey == "" {
			printCheck(out, false, "llm api key: %s not set", cfg.Summarize.LLM.APIKeyEnv)
			ok = false
		} else {
			printCheck(out, true, "llm api key (%s)", cfg.Summarize.LLM.APIKeyEnv)
		}
	}
	if cfg.Sentiment.Backend == "lexicon" && len(cfg.Sentiment.Lexicon) == 0 {
		printInfo(out, "no lexicon configured, using the built-in keyword list")
	}

	// Redaction
	if cfg.Privacy.Redact.Enabled {
		r, err := privacy.New(cfg.Privacy.Redact.Patterns)
		if err != nil {
			printCheck(out, false, "redact patterns: %v", err)
			ok = false
		} else {
			printCheck(out, true, "redaction (%d patterns)", r.Len())
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Fprintln(out, "\nAll checks passed.")
	return nil
}

func printCheck(w io.Writer, pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Fprintf(w, "[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "[INFO] %s\n", fmt.Sprintf(format, args...))
}
