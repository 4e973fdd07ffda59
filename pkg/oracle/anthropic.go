package oracle

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const repairSystemPrompt = `You review extracted fund-disclosure records with known quality issues. Propose corrections ONLY for fields that are missing or flagged. Respond with a valid JSON object: {"proposed_corrections": {"<field_name>": "<corrected_value>"}}. Propose nothing you are not confident about.`

// AnthropicOracle implements Client over the Anthropic Messages API.
type AnthropicOracle struct {
	client  sdk.Client
	model   string
	timeout time.Duration
}

// NewAnthropicOracle creates an Anthropic-backed repair oracle. An empty
// model selects claude-haiku-4-5-20251001.
func NewAnthropicOracle(apiKey, model string, timeout time.Duration) *AnthropicOracle {
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AnthropicOracle{
		client:  sdk.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}
}

// ProposeRepairs asks the model for field-level corrections.
func (o *AnthropicOracle) ProposeRepairs(ctx context.Context, req RepairRequest) (*RepairResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "oracle: marshal request")
	}

	msg, err := o.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(o.model),
		MaxTokens: 1024,
		System:    []sdk.TextBlockParam{{Text: repairSystemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(string(payload))),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "oracle: create message")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	var out RepairResponse
	if err := json.Unmarshal([]byte(cleanJSON(text.String())), &out); err != nil {
		return nil, eris.Wrap(err, "oracle: malformed model output")
	}

	zap.L().Debug("oracle: corrections proposed",
		zap.String("model", o.model),
		zap.Int("corrections", len(out.ProposedCorrections)),
	)
	return &out, nil
}

// cleanJSON strips markdown code fences the model sometimes wraps around its
// JSON object.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
