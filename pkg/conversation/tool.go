package conversation

import (
	"fmt"
	"strings"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/pkg/llm"
)

// NoResultsText is returned to the model for empty and failed lookups alike.
const NoResultsText = constant.LegalSearchNoResults

type SearchResult struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func ToolDeclaration() llm.ToolDeclaration {
	return llm.ToolDeclaration{
		Name:        constant.LegalSearchToolName,
		Description: constant.LegalSearchToolDescription,
		Parameters: []llm.ToolParameter{{
			Name:        constant.LegalSearchToolParam,
			Description: constant.LegalSearchToolParamDescription,
			Required:    true,
		}},
	}
}

// FormatResults renders at most LegalSearchResultLimit results as the tool payload.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return NoResultsText
	}
	if len(results) > constant.LegalSearchResultLimit {
		results = results[:constant.LegalSearchResultLimit]
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf(constant.LegalSearchResultFormat, r.Title, r.Text))
	}
	return strings.Join(parts, constant.LegalSearchResultSeparator)
}

func queryFromCall(call llm.FunctionCall) (string, error) {
	raw, ok := call.Args[constant.LegalSearchToolParam]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %q argument", ErrMalformedToolCall, call.Name, constant.LegalSearchToolParam)
	}
	query, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q argument is %T, want string", ErrMalformedToolCall, constant.LegalSearchToolParam, raw)
	}
	return query, nil
}

func groundedPrompt(fileName, content, question string) string {
	return fmt.Sprintf(constant.GroundedPromptFormat, fileName, content, question)
}
