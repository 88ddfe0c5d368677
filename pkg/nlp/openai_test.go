package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClientRequiresModel(t *testing.T) {
	_, err := NewOpenAIClient(&LLMConfig{APIKey: "k"})
	assert.Error(t, err)

	_, err = NewOpenAIClient(nil)
	assert.Error(t, err)
}

func TestNewOpenAIClientAcceptsCompatibleEndpoint(t *testing.T) {
	client, err := NewOpenAIClient(&LLMConfig{
		Model:   "qwen2.5:7b",
		BaseURL: "http://localhost:11434",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewOpenAIClientRejectsBadBaseURL(t *testing.T) {
	_, err := NewOpenAIClient(&LLMConfig{
		Model:   "gpt-4o-mini",
		BaseURL: "not a url",
	})
	assert.Error(t, err)
}

func TestMessageConstructors(t *testing.T) {
	sys := NewSystemMessage("be terse")
	assert.Equal(t, RoleSystem, sys.Role)
	assert.Equal(t, "be terse", sys.Content)

	usr := NewUserMessage("hello")
	assert.Equal(t, RoleUser, usr.Role)
}
