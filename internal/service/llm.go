package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const replyTimeout = 10 * time.Second

const replySystemPrompt = "You are SolSwap, a friendly assistant that helps users " +
	"sell SOL, USDC or USDT for Naira bank payouts. Rephrase the given reply " +
	"naturally and concisely. Never invent amounts, addresses or statuses."

// ReplyGenerator phrases conversational replies. It fails soft: callers must
// substitute the template text when it errors.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, userMessage, contextSummary string) (string, error)
}

// ReplyService calls a chat-completions style endpoint.
type ReplyService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewReplyService(baseURL, apiKey, model string) *ReplyService {
	return &ReplyService{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: replyTimeout,
		},
	}
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *ReplyService) GenerateReply(ctx context.Context, userMessage, contextSummary string) (string, error) {
	if s.baseURL == "" {
		return "", fmt.Errorf("reply API not configured")
	}

	payload := chatCompletionRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: replySystemPrompt},
			{Role: "system", Content: "Reply to convey: " + contextSummary},
			{Role: "user", Content: userMessage},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("reply generation failed")
		return "", fmt.Errorf("reply request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("reply generation failed")
		return "", fmt.Errorf("reply request failed with status %d", resp.StatusCode)
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion")
	}

	log.Debug().Dur("elapsed", elapsed).Msg("reply generated")
	return parsed.Choices[0].Message.Content, nil
}
