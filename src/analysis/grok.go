package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Service scores candidate tokens with the Grok API. Only the numeric score
// gates trading; the text is kept on the trade record as rationale.
type Service struct {
	http *resty.Client
	cfg  Config
}

func NewService(cfg Config) *Service {
	client := resty.New().
		SetBaseURL(cfg.XAIBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.RetryAttempts).
		SetAuthToken(cfg.XAIAPIKey)

	return &Service{http: client, cfg: cfg}
}

// AnalyzeToken returns (rationale, score in [0,10]). A zero score means the
// analysis was unavailable; the caller's threshold filters it out.
func (s *Service) AnalyzeToken(ctx context.Context, mint, name string) (string, float64, error) {
	if name == "" {
		name = "Unknown"
	}

	if s.cfg.DryRun {
		logger.WithFields(logger.Fields{
			"token_mint": mint,
			"token_name": name,
		}).Debug("[analysis] DRY RUN analysis")
		return fmt.Sprintf("DRY RUN: Mock analysis for %s", name), s.cfg.DryRunScore, nil
	}

	if s.cfg.XAIAPIKey == "" {
		logger.Warn("[analysis] Grok API not configured")
		return "Grok API not configured", 0, nil
	}

	req := chatRequest{
		Model: s.cfg.GrokModel,
		Messages: []chatMessage{{
			Role:    "user",
			Content: buildPrompt(mint, name),
		}},
		MaxTokens:   300,
		Temperature: 0.7,
	}

	var out chatResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", 0, fmt.Errorf("grok analysis request: %w", err)
	}
	if resp.IsError() {
		return "", 0, fmt.Errorf("grok analysis request: status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", 0, fmt.Errorf("grok analysis request: empty response")
	}

	text := out.Choices[0].Message.Content
	score := ExtractScore(text)

	logger.WithFields(logger.Fields{
		"token_mint": mint,
		"token_name": name,
		"score":      score,
	}).Info("[analysis] token analysis completed")

	return text, score, nil
}

func buildPrompt(mint, name string) string {
	return fmt.Sprintf(
		"Analyze this new Solana meme coin: Address %s, Name %s. "+
			"Check real-time sentiment on X, hype potential, risk of rug pull, community strength, "+
			"and overall buy recommendation (score 1-10). Be truthful and cite sources if possible. "+
			"Format end with 'Score: X/10'.", mint, name)
}

var scorePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)/10`)

// ExtractScore pulls the numeric score out of the model's free text,
// preferring the trailing "Score: X/10" marker and falling back to the last
// "X/10" match anywhere. Clamped to [0,10]; zero when no score is found.
func ExtractScore(text string) float64 {
	if idx := strings.LastIndex(text, "Score:"); idx >= 0 {
		rest := strings.TrimSpace(text[idx+len("Score:"):])
		if slash := strings.Index(rest, "/"); slash > 0 {
			if score, err := strconv.ParseFloat(strings.TrimSpace(rest[:slash]), 64); err == nil {
				return clampScore(score)
			}
		}
	}

	matches := scorePattern.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		if score, err := strconv.ParseFloat(matches[len(matches)-1][1], 64); err == nil {
			return clampScore(score)
		}
	}

	logger.Warn("[analysis] could not extract score from analysis text")
	return 0
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
