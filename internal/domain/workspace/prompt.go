package workspace

import "context"

// Prompter asks the user to confirm or supply a value
type Prompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
	PromptName(ctx context.Context, message string) (string, error)
}

type prompterKey struct{}

// WithPrompter scopes p to the operation carried by ctx
func WithPrompter(ctx context.Context, p Prompter) context.Context {
	return context.WithValue(ctx, prompterKey{}, p)
}

// Answers is a Prompter with predetermined responses.
// HTTP requests carry their answers up front instead of a round trip.
type Answers struct {
	Confirmed bool
	Name      string
}

// Confirm returns the predetermined confirmation
func (a Answers) Confirm(context.Context, string) (bool, error) {
	return a.Confirmed, nil
}

// PromptName returns the predetermined name
func (a Answers) PromptName(context.Context, string) (string, error) {
	return a.Name, nil
}

// prompter resolves the prompter for ctx, declining everything by default
func (c *Controller) prompter(ctx context.Context) Prompter {
	if p, ok := ctx.Value(prompterKey{}).(Prompter); ok && p != nil {
		return p
	}
	if c.defaultPrompter != nil {
		return c.defaultPrompter
	}
	return Answers{}
}

func (c *Controller) confirm(ctx context.Context, message string) (bool, error) {
	ok, err := c.prompter(ctx).Confirm(ctx, message)
	if err != nil {
		return false, err
	}
	return ok, nil
}
