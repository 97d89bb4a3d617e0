package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"friday/internal/domain"
)

const codegenTemperature = 0.2

// CodeGenAgent generates code from a natural-language description. Output
// is returned verbatim, no simplification pass.
type CodeGenAgent struct{}

func NewCodeGenAgent() *CodeGenAgent { return &CodeGenAgent{} }

func (a *CodeGenAgent) Name() string { return "developer" }

func (a *CodeGenAgent) Description() string {
	return `This agent specializes in generating high-quality, production-ready code based on natural language descriptions.
It can create complete functions, classes, or entire modules in various programming languages.
The generated code follows best practices, includes proper error handling, and comes with appropriate documentation.
`
}

func (a *CodeGenAgent) Keywords() []string {
	return []string{"code", "programming", "function", "implementation", "develop", "script"}
}

func (a *CodeGenAgent) ViewType() domain.ViewType { return domain.ViewText }
func (a *CodeGenAgent) NeedSimplify() bool        { return false }

func (a *CodeGenAgent) CallFormat() string {
	return `{
    "prompt": "Description of the code you want to generate",
    "language": "programming language (optional)",
    "context": "any additional context or requirements (optional)"
}`
}

type codegenCall struct {
	Prompt   string `json:"prompt"`
	Language string `json:"language"`
	Context  string `json:"context"`
}

func (a *CodeGenAgent) OnCall(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
	extracted := ExtractFirstJSON(raw)
	if extracted == "" {
		return nil, nil
	}
	var call codegenCall
	if err := json.Unmarshal([]byte(extracted), &call); err != nil {
		return nil, nil
	}
	if strings.TrimSpace(call.Prompt) == "" {
		return nil, nil
	}

	var sys strings.Builder
	sys.WriteString(`You are an expert code generator. Generate clean, efficient, and well-documented code based on the user's requirements.
Follow these guidelines:
- Include necessary imports and dependencies
- Add clear comments explaining complex logic
- Implement proper error handling
- Follow language-specific best practices and conventions
- Ensure the code is production-ready and maintainable
`)
	if call.Language != "" {
		fmt.Fprintf(&sys, "\nUse %s programming language.", call.Language)
	}
	if call.Context != "" {
		fmt.Fprintf(&sys, "\nAdditional context: %s", call.Context)
	}

	resp, err := ai.Create(ctx, domain.ChatRequest{
		Messages: []domain.Message{
			domain.SystemMessage(sys.String()),
			domain.UserMessage(call.Prompt),
		},
		Temperature: codegenTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("codegen completion: %w", err)
	}
	if resp.Message.Content == "" {
		return nil, nil
	}
	return &domain.AgentOutput{Result: resp.Message.Content}, nil
}

var _ domain.ToolAgent = (*CodeGenAgent)(nil)
