package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini speaks the native generateContent dialect: system_instruction,
// function_declarations with upper-cased schema types, and
// functionCall/functionResponse parts instead of tool messages.
type Gemini struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func newGemini(apiKey, model, baseURL string, client *http.Client) *Gemini {
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{apiURL: baseURL, apiKey: apiKey, model: model, client: client}
}

// Name returns the model identifier.
func (g *Gemini) Name() string { return g.model }

// Chat sends a generateContent request and returns the response.
func (g *Gemini) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Response, error) {
	body := map[string]any{
		"contents": toGeminiContents(messages),
	}
	if sys := systemText(messages); sys != "" {
		body["system_instruction"] = gemContent{Parts: []gemPart{{Text: sys}}}
	}
	if len(tools) > 0 {
		decls := make([]gemFunctionDecl, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, gemFunctionDecl{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  geminiSchema(t.Parameters),
			})
		}
		body["tools"] = []map[string]any{{"function_declarations": decls}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.apiURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseProviderError(resp.StatusCode, data)
	}

	var result gemResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty candidates in LLM response")
	}

	cand := result.Candidates[0]
	out := &Response{FinishReason: strings.ToLower(cand.FinishReason)}
	var text strings.Builder
	for _, p := range cand.Content.Parts {
		if p.Text != "" {
			text.WriteString(p.Text)
		}
		if p.FunctionCall != nil {
			raw, _ := json.Marshal(p.FunctionCall.Args)
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:      "call_" + uuid.NewString(),
				Name:    p.FunctionCall.Name,
				Args:    p.FunctionCall.Args,
				RawArgs: string(raw),
			})
		}
	}
	out.Content = text.String()
	return out, nil
}

// systemText extracts the leading system message, if any.
func systemText(messages []Message) string {
	for _, m := range messages {
		if m.Role == RoleSystem {
			return m.Content
		}
	}
	return ""
}

// toGeminiContents renders the transcript into Gemini contents. Tool
// results that follow the same assistant turn are merged into a single
// user content so that functionResponse parts match the functionCall
// parts one-to-one.
func toGeminiContents(messages []Message) []gemContent {
	var out []gemContent
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			continue
		case RoleUser:
			out = append(out, gemContent{Role: "user", Parts: []gemPart{{Text: m.Content}}})
		case RoleAssistant:
			c := gemContent{Role: "model"}
			if m.Content != "" {
				c.Parts = append(c.Parts, gemPart{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				args := tc.Args
				if args == nil {
					args = map[string]any{}
				}
				c.Parts = append(c.Parts, gemPart{
					FunctionCall: &gemFunctionCall{Name: tc.Name, Args: args},
				})
			}
			if len(c.Parts) == 0 {
				c.Parts = []gemPart{{Text: ""}}
			}
			out = append(out, c)
		case RoleTool:
			part := gemPart{FunctionResponse: &gemFunctionResponse{
				Name:     m.ToolName,
				Response: map[string]any{"result": m.Content},
			}}
			if n := len(out); n > 0 && out[n-1].Role == "user" && out[n-1].Parts[0].FunctionResponse != nil {
				out[n-1].Parts = append(out[n-1].Parts, part)
			} else {
				out = append(out, gemContent{Role: "user", Parts: []gemPart{part}})
			}
		}
	}
	return out
}

// geminiSchema converts a JSON Schema object to Gemini's dialect, which
// wants upper-case type names. Enum, required, and nesting survive the
// conversion unchanged.
func geminiSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "OBJECT", "properties": map[string]any{}}
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		switch k {
		case "type":
			if s, ok := v.(string); ok {
				out[k] = strings.ToUpper(s)
			} else {
				out[k] = v
			}
		case "properties":
			if props, ok := v.(map[string]any); ok {
				conv := make(map[string]any, len(props))
				for name, sub := range props {
					if subMap, ok := sub.(map[string]any); ok {
						conv[name] = geminiSchema(subMap)
					} else {
						conv[name] = sub
					}
				}
				out[k] = conv
			} else {
				out[k] = v
			}
		case "items":
			if subMap, ok := v.(map[string]any); ok {
				out[k] = geminiSchema(subMap)
			} else {
				out[k] = v
			}
		default:
			out[k] = v
		}
	}
	return out
}

// Gemini API wire types.
type gemContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []gemPart `json:"parts"`
}

type gemPart struct {
	Text             string               `json:"text,omitempty"`
	FunctionCall     *gemFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *gemFunctionResponse `json:"functionResponse,omitempty"`
}

type gemFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type gemFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type gemFunctionDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type gemResponse struct {
	Candidates []struct {
		Content      gemContent `json:"content"`
		FinishReason string     `json:"finishReason"`
	} `json:"candidates"`
}
