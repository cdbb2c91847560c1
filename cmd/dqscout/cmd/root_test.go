package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandStructure(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "dqscout", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.Equal(t, Version, rootCmd.Version)
}

func TestRootPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	configFlag := flags.Lookup("config")
	assert.NotNil(t, configFlag)
	assert.Equal(t, "dqscout.yaml", configFlag.DefValue)
	assert.Equal(t, "c", configFlag.Shorthand)

	assert.NotNil(t, flags.Lookup("log-level"))
	assert.NotNil(t, flags.Lookup("log-format"))
	assert.NotNil(t, flags.Lookup("endpoint"))
	assert.NotNil(t, flags.Lookup("timeout"))
}

func TestGetCLIOverrides(t *testing.T) {
	originalLevel := logLevel
	originalEndpoint := endpoint
	originalTimeout := timeoutSeconds
	defer func() {
		logLevel = originalLevel
		endpoint = originalEndpoint
		timeoutSeconds = originalTimeout
	}()

	logLevel = "debug"
	endpoint = "http://localhost:8080/mcp"
	timeoutSeconds = 30

	overrides := GetCLIOverrides()
	assert.Equal(t, "debug", overrides.LogLevel)
	assert.Equal(t, "http://localhost:8080/mcp", overrides.Endpoint)
	assert.Equal(t, 30, overrides.TimeoutSeconds)
}

func TestGetConfigFile(t *testing.T) {
	originalCfg := cfgFile
	defer func() { cfgFile = originalCfg }()

	cfgFile = "/tmp/custom.yaml"
	assert.Equal(t, "/tmp/custom.yaml", GetConfigFile())
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"assess", "plan", "tools", "validate", "version"}
	for _, name := range want {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "%s command should be added to root command", name)
	}
}
