package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// prompter answers controller questions from the request body and
// remembers what was asked so a declined question can be returned
type prompter struct {
	answers workspace.Answers

	mu    sync.Mutex
	asked string
}

func newPrompter(confirm bool, name string) *prompter {
	return &prompter{answers: workspace.Answers{Confirmed: confirm, Name: name}}
}

func (p *prompter) Confirm(ctx context.Context, message string) (bool, error) {
	p.record(message)
	return p.answers.Confirm(ctx, message)
}

func (p *prompter) PromptName(ctx context.Context, message string) (string, error) {
	p.record(message)
	return p.answers.PromptName(ctx, message)
}

func (p *prompter) record(message string) {
	p.mu.Lock()
	p.asked = message
	p.mu.Unlock()
}

func (p *prompter) question() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asked
}

// statusFor maps a controller error kind to an HTTP status
func statusFor(kind workspace.Kind) int {
	switch kind {
	case workspace.KindNotFound:
		return http.StatusNotFound
	case workspace.KindValidation:
		return http.StatusUnprocessableEntity
	case workspace.KindPrecondition, workspace.KindBusy, workspace.KindCancelled:
		return http.StatusConflict
	case workspace.KindNotReady:
		return http.StatusServiceUnavailable
	case workspace.KindSessionFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// stateView is the state returned after every command
type stateView struct {
	workspace.State
	Buttons types.ButtonStates `json:"buttons"`
}

func (h *Handlers) stateView() stateView {
	s := h.workspace.State()
	return stateView{State: s, Buttons: s.Buttons()}
}

func (h *Handlers) ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"state":   h.stateView(),
	})
}

// fail reports err; a declined question is echoed as "prompt" so the
// client can ask the user and retry with its answer
func (h *Handlers) fail(c *gin.Context, err error, p *prompter) {
	kind := workspace.KindOf(err)
	body := gin.H{
		"success": false,
		"error":   err.Error(),
		"kind":    kind.String(),
	}
	if kind == workspace.KindCancelled && p != nil {
		if q := p.question(); q != "" {
			body["prompt"] = q
		}
	}
	if h.workspace != nil {
		body["state"] = h.stateView()
	}
	c.JSON(statusFor(kind), body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": message})
}

// bindOptional decodes a JSON body when one was sent
func bindOptional(c *gin.Context, v interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(v)
}
