package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohboyftw/ClaudeSynth/internal/config"
)

func TestProviderConfigCarriesTimeoutFlag(t *testing.T) {
	prefs := config.DefaultPreferences()
	cli := &cliState{timeout: 45 * time.Second, prefs: &prefs}

	providerConfig, err := cli.providerConfig()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, providerConfig.Timeout)
}

func TestRootCommandExposesTimeoutFlag(t *testing.T) {
	rootCmd := NewRootCommand()
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("timeout"))
}

func TestModelsCommandAnswersToListModels(t *testing.T) {
	rootCmd := NewRootCommand()
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "models" {
			assert.Contains(t, cmd.Aliases, "list-models")
			return
		}
	}
	t.Fatal("models command not registered")
}
