package bdd

import (
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/xnova-go/test/bdd/steps"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/engine", "features/persistence", "features/frontend"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	// NOTE: first registration wins in godog, so the shared engine steps go
	// before the narrower persistence and callback steps
	engineCtx := steps.InitializeEngineScenario(sc)
	steps.InitializePersistenceScenario(sc, engineCtx)
	steps.InitializeCallbackScenario(sc, engineCtx)
}
