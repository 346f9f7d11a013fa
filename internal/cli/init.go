package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/twitterwatch/internal/config"
)

const defaultLexiconFile = "lexicon.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with example files",
	RunE:  initAction,
}

func initAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	created := 0
	files := []struct {
		name string
		data string
	}{
		{config.DefaultConfigFile, exampleConfig},
		{defaultLexiconFile, exampleLexicon},
	}
	for _, f := range files {
		wrote, err := writeIfNotExists(out, filepath.Join(configDir, f.name), []byte(f.data))
		if err != nil {
			return err
		}
		if wrote {
			created++
		}
	}

	if created == 0 {
		fmt.Fprintf(out, "Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Fprintf(out, "Initialized %s with %d config files.\n", configDir, created)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(out io.Writer, path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# twitterwatch configuration

handle: your_handle_here

search:
  backend: snscrape        # snscrape | nitter
  snscrape:
    path: snscrape
  nitter:
    base_url: https://nitter.net
    timeout: 30s

sentiment:
  backend: huggingface     # huggingface | lexicon
  model: facebook/bart-large-mnli
  labels: [positive, neutral, negative]
  mean: global             # global | per_label
  batch_size: 32
  lexicon_file: lexicon.yaml

summarize:
  backend: huggingface     # huggingface | llm | extractive
  model: t5-large
  llm:
    model: gpt-4.1-mini
    api_key_env: OPENAI_API_KEY

huggingface:
  api_key_env: HF_API_TOKEN
  base_url: https://api-inference.huggingface.co
  timeout: 2m

log:
  level: info
  format: text

privacy:
  redact:
    enabled: false
    patterns: []
`

const exampleLexicon = `# keywords per sentiment label, used when sentiment.backend is lexicon

positive:
  - love
  - great
  - thanks
  - awesome
  - congrats
  - agree
negative:
  - hate
  - suck
  - awful
  - worst
  - boo
  - wrong
`
