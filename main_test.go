package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfeuerstein/josh-space/internal/tiles"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		variantFlag, jsonFlag = "", false
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProjectsCommand(t *testing.T) {
	t.Setenv("JOSH_SPACE_CONFIG_PATH", "")
	t.Setenv("JOSH_SPACE_PROJECTS_PATH", "")
	t.Setenv("JOSH_SPACE_VARIANT", "password")

	out, err := runCLI(t, "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "variant: password")
	assert.Contains(t, out, "1. HxHxDxD Character Sheets [password]")
	assert.Contains(t, out, "https://jfeuerstein.github.io/jo-sh/")
	assert.NotContains(t, out, "d20")
}

func TestProjectsCommandJSON(t *testing.T) {
	t.Setenv("JOSH_SPACE_CONFIG_PATH", "")
	t.Setenv("JOSH_SPACE_PROJECTS_PATH", "")

	out, err := runCLI(t, "projects", "--json", "--variant", "lens")
	require.NoError(t, err)

	var projects []tiles.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	assert.Len(t, projects, 3)
	assert.Empty(t, projects[0].Password)
}

func TestUnknownVariantFails(t *testing.T) {
	t.Setenv("JOSH_SPACE_CONFIG_PATH", "")
	_, err := runCLI(t, "projects", "--variant", "spin")
	assert.ErrorIs(t, err, tiles.ErrUnknownMode)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestTextForVariants(t *testing.T) {
	lens := textFor(tiles.ModeLens)
	assert.Equal(t, lens.Intro, lens.IntroDone)
	assert.Contains(t, lens.Banner, "you found the lens!")

	tile := textFor(tiles.ModeArm)
	assert.Equal(t, "welcome to my website", tile.Intro)
	assert.Equal(t, "✓ all unlocked ✓", tile.IntroDone)
	assert.Contains(t, tile.Banner, "stop clicking")
}
