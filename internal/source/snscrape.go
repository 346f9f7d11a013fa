package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os/exec"
	"strings"
	"time"
)

const (
	DefaultSnscrape = "snscrape"

	snscrapeName       = "snscrape"
	snscrapeModule     = "twitter-search"
	snscrapeDateLayout = time.RFC3339
	maxLineLength      = 1 << 20 // 1 MiB per JSONL line
	snscrapeWaitDelay  = 5 * time.Second
)

// SnscrapeSearcher runs the snscrape CLI and streams its JSONL output.
type SnscrapeSearcher struct {
	path string
}

// NewSnscrape creates a searcher backed by the snscrape executable at path.
// An empty path resolves "snscrape" on PATH.
func NewSnscrape(path string) *SnscrapeSearcher {
	if strings.TrimSpace(path) == "" {
		path = DefaultSnscrape
	}
	return &SnscrapeSearcher{path: path}
}

// Name returns "snscrape".
func (s *SnscrapeSearcher) Name() string {
	return snscrapeName
}

// Search starts `snscrape --jsonl twitter-search <query>` and yields one post
// per output line. Breaking out of the sequence kills the process.
func (s *SnscrapeSearcher) Search(ctx context.Context, query string) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		cmd := exec.CommandContext(ctx, s.path, "--jsonl", snscrapeModule, query)
		cmd.WaitDelay = snscrapeWaitDelay

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			yield(Post{}, fmt.Errorf("snscrape: stdout pipe: %w", err))
			return
		}

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Start(); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				yield(Post{}, fmt.Errorf("snscrape: %s not found: install snscrape to use the snscrape backend", s.path))
				return
			}
			yield(Post{}, fmt.Errorf("snscrape: start: %w", err))
			return
		}

		stopped := false
		scanErr := scanJSONL(stdout, func(p Post) bool {
			if !yield(p, nil) {
				stopped = true
				return false
			}
			return true
		})

		if stopped || scanErr != nil {
			cancel()
			_ = cmd.Wait()
			if scanErr != nil {
				yield(Post{}, fmt.Errorf("snscrape: parse output: %w", scanErr))
			}
			return
		}

		if err := cmd.Wait(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				yield(Post{}, fmt.Errorf("snscrape: failed: %s", msg))
				return
			}
			yield(Post{}, fmt.Errorf("snscrape: failed: %w", err))
		}
	}
}

// snscrapeTweet is the subset of the snscrape tweet record we consume.
// Older releases carry the body in "content", newer ones in "rawContent".
type snscrapeTweet struct {
	Date       string `json:"date"`
	RawContent string `json:"rawContent"`
	Content    string `json:"content"`
	User       struct {
		Username string `json:"username"`
	} `json:"user"`
}

// scanJSONL decodes tweets from r, calling emit for each until emit returns
// false or input ends.
func scanJSONL(r io.Reader, emit func(Post) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		p, err := decodeTweet(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		if !emit(p) {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read jsonl: %w", err)
	}
	return nil
}

func decodeTweet(line []byte) (Post, error) {
	var tw snscrapeTweet
	if err := json.Unmarshal(line, &tw); err != nil {
		return Post{}, fmt.Errorf("invalid json: %w", err)
	}

	date, err := time.Parse(snscrapeDateLayout, tw.Date)
	if err != nil {
		return Post{}, fmt.Errorf("invalid date %q: %w", tw.Date, err)
	}

	text := tw.RawContent
	if text == "" {
		text = tw.Content
	}

	return Post{
		Date:     date,
		Username: tw.User.Username,
		Text:     text,
	}, nil
}
