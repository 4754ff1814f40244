//go:generate go run go.uber.org/mock/mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks
package classifier

import "context"

// TextGenerator is the external generative classifier: a prompt goes in,
// free text comes out. Implementations may fail for network or quota reasons.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
