package services

import "context"

// TextGenerator is a text-generation provider. openai.Client and *gemini.Client satisfy it.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}
