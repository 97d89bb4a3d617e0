package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"friday/internal/domain"
)

// buildSystemPrompt assembles the persona prompt for the run. Profile,
// date and cutoff-date sections are included only when provided.
func buildSystemPrompt(user *domain.UserProfile, date, cutoffDate string) string {
	var b strings.Builder

	if user != nil {
		fmt.Fprintf(&b, `Understand the user intent,
You are a super helpful assistant. Adjust your tone based on the user's preference:
User Name: %s
Age: %d

`, user.Name, user.Age)
	}
	if date != "" {
		fmt.Fprintf(&b, "Today's Date: %s\n", date)
	}
	if cutoffDate != "" {
		fmt.Fprintf(&b, "Data Cutoff Date: %s\n", cutoffDate)
	}

	b.WriteString(`
- Be friendly and casual for informal queries.
- Be formal and concise for professional or technical tasks.
`)
	return b.String()
}

// buildSelectionPrompt assembles the reasoning prompt that asks the model
// to pick a tool chain (or none) for the latest user message. Agents are
// listed with their keywords in registration order so selection stays
// deterministic across runs.
func buildSelectionPrompt(agents []domain.ToolAgent, messages []domain.Message) string {
	lastUser := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			lastUser = messages[i].Content
			break
		}
	}

	var names []string
	var listing strings.Builder
	for i, a := range agents {
		if i > 0 {
			listing.WriteString("\n\n")
		}
		names = append(names, a.Name())
		if kw := a.Keywords(); len(kw) > 0 {
			fmt.Fprintf(&listing, "- %s :\nkeywords: %s.", a.Name(), strings.Join(kw, ", "))
		} else {
			fmt.Fprintf(&listing, "- %s.", a.Name())
		}
	}

	return fmt.Sprintf(`You are a highly capable AI assistant with access to specialized tools. Your role is to either provide direct assistance or determine which tools are needed to best help the user.

Core Instructions:
1. Analyze the user's intent carefully - what are they really trying to achieve?
2. For direct questions or casual conversation:
   - Respond naturally and engagingly in the "message" element
   - Set tools to "no-tool"
   - Be conversational, friendly, and helpful
   - Include relevant examples or analogies when appropriate
   - Feel free to ask clarifying questions in your message if needed

3. For tasks requiring tools:
   - Choose the most appropriate tool(s) for the job
   - Explain your reasoning clearly
   - Only select tools that are absolutely necessary
   - If multiple tools are needed, list them in order of use
   - If you are not sure, set tools to "no-tool" and explain you cannot help

4. Response Style Guide:
   - Be conversational and natural, not robotic
   - Show personality while maintaining professionalism
   - Use appropriate emojis or markdown formatting when it adds value
   - Match the user's tone and energy level
   - Feel free to be creative and engaging in your responses

5. Make sure to wrap your response in proper XML tags.
6. Pay attention to user prompt.

Remember: You're not just a tool selector - you're a helpful assistant first. When no tools are needed, focus on providing valuable, engaging responses that truly help the user.

User Prompt:
%s
--

Important Notes:
1. Always respond using the following XML format, no other responses or texts in prefix or suffix.
2. only attention to last user message.
3. You have to use multiple tools if the task is complex and requires multiple steps.
Available Tools and Agents ( and their related keywords ):
%s

Valid Response Format:
<response>
    <tool_reasoning>Your thought process for tool selection</tool_reasoning>
    <tools>
        <tool>tool_name</tool>
        <!-- available tools: %s -->
        <!-- use sequence of tools based on needed stuff in user prompt -->
    </tools>
    <message>Your helpful and engaging response here!</message>
</response>
`, lastUser, listing.String(), strings.Join(names, ", "))
}

// formatFieldRe pulls field names out of a JSON call-format example
// so the prompt can enumerate them as required fields.
var formatFieldRe = regexp.MustCompile(`"(\w+)":`)

// buildAgentPrompt assembles the per-agent extraction prompt: the agent's
// role, the previous step's output when one exists, and the required JSON
// fields derived from the agent's call format.
func buildAgentPrompt(agent domain.ToolAgent, prevAgent, prevResult string) string {
	contextSection := ""
	if prevResult != "" {
		contextSection = fmt.Sprintf(`Previous Step Result:
Tool: %s
Output: %s

Note: Consider this previous result if it contains information relevant to your task.`, prevAgent, prevResult)
	}

	formatExample := agent.CallFormat()
	var fields strings.Builder
	for _, m := range formatFieldRe.FindAllStringSubmatch(formatExample, -1) {
		fmt.Fprintf(&fields, "• %s: [Information needed for this field]\n", m[1])
	}

	return fmt.Sprintf(`You are the "%s" specialist in our AI system. Your role is to analyze the conversation and extract or generate the necessary information in a specific format.

%s

%s

Instructions:
1. Analyze the entire conversation context, including:
   • The user's original request
   • Any previous tool outputs (if relevant)
   • The current conversation flow

2. For each required field in your response format:
   • Extract relevant information from the conversation
   • Generate appropriate values if needed
   • Ensure values make sense in the current context

Required Fields:
%s
Response Format:
%s

Important:
• Your response must be valid JSON matching the format exactly
• Focus on extracting information that's most relevant to your specific function
• Use conversation context intelligently - previous results may or may not be relevant
• Be precise but creative in interpreting user intent
• If certain information is unclear, make reasonable assumptions based on context`,
		agent.Name(), agent.Description(), contextSection, fields.String(), formatExample)
}

// simplificationPrompt wraps a raw tool result for a rewrite pass that
// makes it readable for end users.
func simplificationPrompt(message string) string {
	return fmt.Sprintf(`You are a helpful assistant that makes complex information easy to understand.

Your task is to simplify and format the message to be more user-friendly.

Guidelines:
1. Focus on the actual results and findings
2. Use clear, simple language
3. Format the response in a readable way using markdown.
4. If the response includes technical details:
   • Explain them in simpler terms
   • Keep technical details if they're important, but explain what they mean
5. If the response includes steps or processes:
   • Summarize them clearly
   • Focus on what the user needs to know

Important:
• Keep the essential information
• Remove unnecessary technical jargon
• Make it conversational but informative
• Include any important warnings or notes
• If there are actionable items, make them clear

Message:
%s
`, message)
}
