package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/xnova-go/internal/adapters/frontend"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

type callbackContext struct {
	engine *EngineContext
	reply  *frontend.Reply
	err    error
}

func (cc *callbackContext) taps(playerID, data string) error {
	m, err := cc.engine.engine()
	if err != nil {
		return err
	}
	cc.reply, cc.err = frontend.NewRouter(m).Handle(context.Background(), playerID, data)
	return nil
}

func (cc *callbackContext) theReplyShouldContain(text string) error {
	if cc.err != nil {
		return fmt.Errorf("callback failed: %w", cc.err)
	}
	if !strings.Contains(cc.reply.Text, text) {
		return fmt.Errorf("expected reply to contain %q, got:\n%s", text, cc.reply.Text)
	}
	return nil
}

func (cc *callbackContext) theReplyShouldRead(text string) error {
	if cc.err != nil {
		return fmt.Errorf("callback failed: %w", cc.err)
	}
	if cc.reply.Text != text {
		return fmt.Errorf("expected reply %q, got %q", text, cc.reply.Text)
	}
	return nil
}

func (cc *callbackContext) theReplyShouldCarry(code string) error {
	if cc.err != nil {
		return fmt.Errorf("callback failed: %w", cc.err)
	}
	if got := shared.CodeOf(cc.reply.Err); cc.reply.Err == nil || got != shared.ErrorCode(code) {
		return fmt.Errorf("expected reply to carry %s, got %v", code, cc.reply.Err)
	}
	return nil
}

func (cc *callbackContext) theCallbackShouldFailWith(code string) error {
	if cc.err == nil {
		return fmt.Errorf("expected the callback to fail with %s", code)
	}
	if got := shared.CodeOf(cc.err); got != shared.ErrorCode(code) {
		return fmt.Errorf("expected %s, got %s (%v)", code, got, cc.err)
	}
	return nil
}

// InitializeCallbackScenario registers the front-end callback steps
func InitializeCallbackScenario(sc *godog.ScenarioContext, ec *EngineContext) {
	cc := &callbackContext{engine: ec}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		cc.reply, cc.err = nil, nil
		return ctx, nil
	})

	sc.Step(`^"([^"]*)" taps "([^"]*)"$`, cc.taps)
	sc.Step(`^the reply should contain "([^"]*)"$`, cc.theReplyShouldContain)
	sc.Step(`^the reply should read "([^"]*)"$`, cc.theReplyShouldRead)
	sc.Step(`^the reply should carry ([A-Z_]+)$`, cc.theReplyShouldCarry)
	sc.Step(`^the callback should fail with ([A-Z_]+)$`, cc.theCallbackShouldFailWith)
}
