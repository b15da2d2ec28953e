package main

import (
	"bytes"
	"testing"

	"flybot/models"
	"flybot/services/timex"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCmd(t *testing.T) {
	out, err := run(t, "resolve", "--now", "2024-01-10", "date:2024-03-05", "duration:P2D")
	require.NoError(t, err)
	assert.Equal(t, "05-03-2024 07-03-2024\n", out)

	out, err = run(t, "resolve", "--now", "2024-01-10", "--json", "duration:P1W")
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"10-01-2024","end":"17-01-2024"}`, out)

	out, err = run(t, "resolve", "--now", "2024-01-10", "date:2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "unrecognized token sequence\n", out)
}

func TestResolveCmd_Errors(t *testing.T) {
	_, err := run(t, "resolve", "--now", "10/01/2024", "duration:P1D")
	assert.ErrorContains(t, err, "invalid --now")

	_, err = run(t, "resolve", "P1D")
	assert.ErrorContains(t, err, "expected TYPE:TIMEX")

	_, err = run(t, "resolve", "--now", "2024-01-10", "duration:P")
	assert.ErrorIs(t, err, timex.ErrMalformedTimex)
}

func TestParseTokens(t *testing.T) {
	got, err := parseTokens([]string{"daterange:(2024-03-05,2024-03-09,P4D)|XXXX-03", "date:XXXX-03-05"})
	require.NoError(t, err)

	want := []models.DateToken{
		{Type: "daterange", Timex: []string{"(2024-03-05,2024-03-09,P4D)", "XXXX-03"}},
		{Type: "date", Timex: []string{"XXXX-03-05"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseTokens mismatch (-want +got):\n%s", diff)
	}
}
