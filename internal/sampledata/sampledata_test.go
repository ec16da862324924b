package sampledata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_KnownFixturesParse(t *testing.T) {
	for _, name := range []string{"emails", "github_prs", "health_records", "transactions"} {
		items, err := Load(name)
		require.NoError(t, err, name)
		require.NotEmpty(t, items, name)
	}
}

func TestLoad_UnknownFixtureErrors(t *testing.T) {
	_, err := Load("does_not_exist")
	require.Error(t, err)
}
