package cli

import (
	"fmt"

	"github.com/ppiankov/twitterwatch/internal/config"
	"github.com/ppiankov/twitterwatch/internal/inference"
	"github.com/ppiankov/twitterwatch/internal/privacy"
	"github.com/ppiankov/twitterwatch/internal/sentiment"
	"github.com/ppiankov/twitterwatch/internal/source"
	"github.com/ppiankov/twitterwatch/internal/summarize"
	"github.com/ppiankov/twitterwatch/internal/watch"
)

func newSearcher(cfg *config.Config) (source.Searcher, error) {
	switch cfg.Search.Backend {
	case "nitter":
		return source.NewNitter(cfg.Search.Nitter.BaseURL, cfg.Search.Nitter.Timeout.Duration)
	case "snscrape":
		return source.NewSnscrape(cfg.Search.Snscrape.Path), nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Search.Backend)
	}
}

func newInferenceClient(cfg *config.Config) *inference.Client {
	return inference.New(cfg.HuggingFace.BaseURL, cfg.HuggingFace.APIToken, cfg.HuggingFace.Timeout.Duration)
}

func newClassifier(cfg *config.Config) (sentiment.Classifier, error) {
	switch cfg.Sentiment.Backend {
	case "lexicon":
		return sentiment.NewLexicon(cfg.Sentiment.Lexicon), nil
	case "huggingface":
		return sentiment.NewHuggingFace(newInferenceClient(cfg), cfg.Sentiment.Model, cfg.Sentiment.BatchSize)
	default:
		return nil, fmt.Errorf("unknown sentiment backend %q", cfg.Sentiment.Backend)
	}
}

func newSummarizer(cfg *config.Config) (summarize.Summarizer, error) {
	switch cfg.Summarize.Backend {
	case "extractive":
		return &summarize.ExtractiveSummarizer{}, nil
	case "llm":
		llm := cfg.Summarize.LLM
		if llm.APIKey == "" {
			return nil, fmt.Errorf("summarize.llm: env var %s is not set", llm.APIKeyEnv)
		}
		return summarize.NewLLM(llm.APIKey, llm.Model, llm.Endpoint, cfg.HuggingFace.Timeout.Duration)
	case "huggingface":
		return summarize.NewHuggingFace(newInferenceClient(cfg), cfg.Summarize.Model)
	default:
		return nil, fmt.Errorf("unknown summarize backend %q", cfg.Summarize.Backend)
	}
}

// backends names the optional backends a command needs.
type backends uint8

const (
	withClassifier backends = 1 << iota
	withSummarizer

	searchOnly  backends = 0
	allBackends backends = withClassifier | withSummarizer
)

// newWatcher wires the searcher and the requested backends into a Watcher.
// Extra options are applied last so command flags win over config.
func newWatcher(cfg *config.Config, need backends, extra ...watch.Option) (*watch.Watcher, error) {
	searcher, err := newSearcher(cfg)
	if err != nil {
		return nil, err
	}
	policy, err := sentiment.ParseMeanPolicy(cfg.Sentiment.Mean)
	if err != nil {
		return nil, err
	}

	opts := []watch.Option{
		watch.WithLabels(cfg.Sentiment.Labels...),
		watch.WithMeanPolicy(policy),
	}
	if need&withClassifier != 0 {
		classifier, err := newClassifier(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, watch.WithClassifier(classifier))
	}
	if need&withSummarizer != 0 {
		summarizer, err := newSummarizer(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, watch.WithSummarizer(summarizer))
	}
	if cfg.Privacy.Redact.Enabled {
		redactor, err := privacy.New(cfg.Privacy.Redact.Patterns)
		if err != nil {
			return nil, err
		}
		opts = append(opts, watch.WithRedactor(redactor))
	}
	opts = append(opts, extra...)

	return watch.New(cfg.Handle, searcher, opts...)
}
