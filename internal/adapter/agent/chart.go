package agent

import (
	"context"
	"encoding/json"

	"github.com/kaptinlin/jsonschema"

	"friday/internal/domain"
)

// ChartValue is one labeled data point.
type ChartValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartPayload is the renderer-facing chart description.
type ChartPayload struct {
	Title          string       `json:"title"`
	Type           string       `json:"type"`
	Values         []ChartValue `json:"values"`
	FormatCurrency bool         `json:"formatCurrency,omitempty"`
	FormatSymbol   string       `json:"formatSymbol,omitempty"`
}

// chartSchemaJSON validates what the model produced before it reaches a
// renderer: required fields, a known chart type, and complete data points.
const chartSchemaJSON = `{
  "type": "object",
  "required": ["title", "type", "values"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "type": {"enum": ["bar", "pie", "line"]},
    "values": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["label", "value"],
        "properties": {
          "label": {"type": "string", "minLength": 1},
          "value": {"type": "number"}
        }
      }
    },
    "formatCurrency": {"type": "boolean"},
    "formatSymbol": {"type": "string"}
  }
}`

var chartSchema = func() *jsonschema.Schema {
	schema, err := jsonschema.NewCompiler().Compile([]byte(chartSchemaJSON))
	if err != nil {
		panic("chart schema: " + err.Error())
	}
	return schema
}()

// ChartAgent turns conversation data into a validated chart payload for
// custom rendering. Result carries the data points for context threading;
// Data carries the full payload.
type ChartAgent struct{}

func NewChartAgent() *ChartAgent { return &ChartAgent{} }

func (a *ChartAgent) Name() string { return "chart" }

func (a *ChartAgent) Description() string {
	return `Capable of visualizing data in various chart formats, such as bar, pie, or line charts. Ideal for making complex data more digestible and visually appealing.
useCases:
1. **Data Analysis**: Visualizing complex datasets to identify trends, patterns, and insights.
2. **Reporting**: Creating visual reports for presentations to convey information clearly and effectively.
3. **Decision Making**: Supporting data-driven decisions by providing visual context to numerical data.

Rules
- Always select the appropriate chart type based on the data and user's intent.
- Ensure that the values array is fully populated and doesn't use incomplete elements (e.g., never use "..." for labels or values).
- The generated JSON must be complete and valid without missing fields or errors.
- Ensure no negative values are used unless the data explicitly requires them (for example, profits or losses).
- Do not include comments in the JSON output.
- Always provide a full label and corresponding numeric value, ensuring the data is clear and concise.
- If formatting currency, ensure correct symbols and format are applied.
`
}

func (a *ChartAgent) Keywords() []string {
	return []string{"visualization", "charts", "graphs", "data visualization", "bar chart, pie chart, line chart"}
}

func (a *ChartAgent) ViewType() domain.ViewType { return domain.ViewData }
func (a *ChartAgent) NeedSimplify() bool        { return true }

func (a *ChartAgent) CallFormat() string {
	return `{
    "title": "short title about this chart",
    "type": "...", // bar | pie | line
    "formatCurrency": true | false,
    "formatSymbol": "Symbol of formatted value",
    "values": [
        {
            "label": "...",
            "value": 0 // pure number , not any , or string here
        }
   ],

}`
}

func (a *ChartAgent) OnCall(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
	extracted := ExtractFirstJSON(raw)
	if extracted == "" {
		return nil, nil
	}

	var instance any
	if err := json.Unmarshal([]byte(extracted), &instance); err != nil {
		return nil, nil
	}
	if result := chartSchema.Validate(instance); !result.IsValid() {
		return nil, nil
	}

	var payload ChartPayload
	if err := json.Unmarshal([]byte(extracted), &payload); err != nil {
		return nil, nil
	}

	return &domain.AgentOutput{Result: payload.Values, Data: payload}, nil
}

var _ domain.ToolAgent = (*ChartAgent)(nil)
