package schema

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/kevetl/internal/parquet"
)

func TestSchemaCommand(t *testing.T) {
	t.Run("yaml round trips", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewCommand()
		cmd.SetOut(&out)
		require.NoError(t, cmd.Execute())

		var s parquet.Schema
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &s))
		assert.Equal(t, parquet.KEVSchema, s)
	})

	t.Run("parquet metadata", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--format", "parquet"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "name=daysToPatch, type=INT32, repetitiontype=OPTIONAL")
	})

	t.Run("unknown format", func(t *testing.T) {
		cmd := NewCommand()
		cmd.SetArgs([]string{"--format", "avro"})
		cmd.SilenceUsage = true
		assert.Error(t, cmd.Execute())
	})
}
