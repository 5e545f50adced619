package factory

import (
	"fmt"

	"legal-assistant-be/pkg/llm"
	"legal-assistant-be/pkg/llm/gemini"
)

func NewLLMProvider(providerType, modelName, apiKey string) (llm.Provider, error) {
	switch providerType {
	case "gemini", "":
		return gemini.NewProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
