package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithNoArgsEvaluatesNullaryMain(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "0\n", out.String())
}

func TestRunWithTokensSumsThem(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"3", "4", "5"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "12\n", out.String())
}

func TestRunRejectsGraphLargerThanHeapWords(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--heap-words", "1", "3", "4"})

	err := cmd.Execute()
	assert.Error(t, err)
}
