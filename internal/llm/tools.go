package llm

import "github.com/jonathan/career-agent/internal/resume"

// Tool names the copilot model may invoke.
const (
	ToolUpdateResume  = "update_resume"
	ToolRewriteResume = "rewrite_resume"
)

// Tool is a provider-neutral function declaration. All parameters are strings.
type Tool struct {
	Name        string
	Description string
	Parameters  []ToolParam
}

// ToolParam describes one string argument of a Tool.
type ToolParam struct {
	Name        string
	Description string
	Enum        []string
	Required    bool
}

// required returns the names of the required parameters.
func (t Tool) required() []string {
	var names []string
	for _, p := range t.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// jsonSchema renders the parameters as a JSON Schema object.
func (t Tool) jsonSchema() map[string]any {
	props := make(map[string]any, len(t.Parameters))
	for _, p := range t.Parameters {
		prop := map[string]any{"type": "string", "description": p.Description}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		props[p.Name] = prop
	}
	schema := map[string]any{"type": "object", "properties": props}
	if req := t.required(); len(req) > 0 {
		schema["required"] = req
	}
	return schema
}

// ResumeTools declares the two document-edit functions offered to the copilot.
func ResumeTools() []Tool {
	return []Tool{
		{
			Name:        ToolUpdateResume,
			Description: "更新简历的某个特定部分。当用户要求修改、润色或重写简历的某一部分时调用。",
			Parameters: []ToolParam{
				{
					Name:        "section",
					Description: "要修改的简历部分",
					Enum:        resume.Keys(),
					Required:    true,
				},
				{
					Name:        "content",
					Description: "该部分的新内容 (Markdown 格式)，不包含标题",
					Required:    true,
				},
			},
		},
		{
			Name:        ToolRewriteResume,
			Description: "重写整份简历。当用户要求整体优化、全面润色或重写整份简历时调用。",
			Parameters: []ToolParam{
				{
					Name:        "full_content",
					Description: "完整的简历内容 (Markdown 格式)",
					Required:    true,
				},
			},
		},
	}
}
