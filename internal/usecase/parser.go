package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"friday/internal/domain"
)

// DecisionSource tells how a Decision was obtained from model text.
type DecisionSource int

const (
	// DecisionStructured means the tagged response block parsed cleanly.
	DecisionStructured DecisionSource = iota
	// DecisionSentinel means no tagged block was found but the text
	// contained the no-tool sentinel, so the whole text was taken as a
	// direct answer. Last-resort heuristic before giving up.
	DecisionSentinel
)

// ParseError marks model text whose required structural markers are
// missing. It is distinguishable from transport-level failures so callers
// can branch on why parsing failed.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse reasoning response: %s: %s", e.Reason, domain.ErrMalformedResponse)
}

func (e *ParseError) Unwrap() error { return domain.ErrMalformedResponse }

// The reasoning model is instructed to wrap its answer in:
//
//	<response>
//	    <tool_reasoning>...</tool_reasoning>
//	    <tools><tool>name</tool>...</tools>
//	    <message>...</message>
//	</response>
//
// Content is parsed leniently (whitespace, field order) but the response,
// tool_reasoning and tools markers are required. The message element is
// optional.
var (
	responseRe  = regexp.MustCompile(`(?s)<response>(.*?)</response>`)
	reasoningRe = regexp.MustCompile(`(?s)<tool_reasoning>(.*?)</tool_reasoning>`)
	toolsRe     = regexp.MustCompile(`(?s)<tools>(.*?)</tools>`)
	messageRe   = regexp.MustCompile(`(?s)<message>(.*?)</message>`)
	toolRe      = regexp.MustCompile(`<tool>([^<]+)</tool>`)
)

// ParseDecision turns a raw reasoning completion into a Decision.
func ParseDecision(content string) (domain.Decision, DecisionSource, error) {
	block := responseRe.FindStringSubmatch(content)
	if block == nil {
		if strings.Contains(strings.ToLower(content), domain.NoTool) {
			return domain.Decision{
				Reasoning: "direct response from model",
				Tools:     []string{domain.NoTool},
				Message:   strings.TrimSpace(content),
			}, DecisionSentinel, nil
		}
		return domain.Decision{}, 0, &ParseError{Reason: "missing response element"}
	}

	inner := block[1]

	reasoning := reasoningRe.FindStringSubmatch(inner)
	if reasoning == nil {
		return domain.Decision{}, 0, &ParseError{Reason: "missing tool_reasoning element"}
	}

	toolsBlock := toolsRe.FindStringSubmatch(inner)
	if toolsBlock == nil {
		return domain.Decision{}, 0, &ParseError{Reason: "missing tools element"}
	}

	// Document order of <tool> entries is execution order.
	var tools []string
	for _, m := range toolRe.FindAllStringSubmatch(toolsBlock[1], -1) {
		if name := strings.TrimSpace(m[1]); name != "" {
			tools = append(tools, name)
		}
	}
	if len(tools) == 0 {
		tools = []string{domain.NoTool}
	}

	var message string
	if m := messageRe.FindStringSubmatch(inner); m != nil {
		message = strings.TrimSpace(m[1])
	}

	return domain.Decision{
		Reasoning: strings.TrimSpace(reasoning[1]),
		Tools:     tools,
		Message:   message,
	}, DecisionStructured, nil
}
