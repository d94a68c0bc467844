package main

import (
	"testing"

	"github.com/jamesainslie/assetverify/pkg/assetverify/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendMissing(t *testing.T) {
	got := appendMissing([]string{"b", "a", "b"}, "a", "c", "c")
	assert.Equal(t, []string{"b", "a", "b", "c"}, got)

	assert.Empty(t, appendMissing(nil))
}

func TestUniqueDirectories(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, uniqueDirectories([]string{"x", "y", "x"}))
}

func TestDirectoryFlagKeepsCommasAndRepeats(t *testing.T) {
	v := newTestViper(t)
	cmd := &cobra.Command{Use: "test"}
	registerVerifyFlags(cmd, v)

	require.NoError(t, cmd.ParseFlags([]string{"-d", "assets,v2", "-d", "x", "--directory", "x"}))

	opts, err := loadVerifyOptions(v, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"assets,v2", "x", "x"}, opts.dirs)
}

func TestBuildFormatter(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		template string
		wantErr  bool
	}{
		{name: "empty uses default", output: ""},
		{name: "plain", output: "plain"},
		{name: "pretty", output: "pretty"},
		{name: "json", output: "json"},
		{name: "yaml", output: "yaml"},
		{name: "template", output: "template", template: "{{len .Directories}}"},
		{name: "template missing", output: "template", wantErr: true},
		{name: "unknown", output: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := buildFormatter(&config.Config{Output: tt.output, Template: tt.template})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}
}

func TestRegisterVerifyFlags(t *testing.T) {
	flags := rootCmd.Flags()

	for _, name := range []string{
		"directory", "delete-unexpected", "show-warnings", "exit-on-error", "trash",
		"parallel", "output", "template", "discover", "exclude", "watch",
	} {
		assert.NotNil(t, flags.Lookup(name), "flag --%s should be registered", name)
	}

	showWarnings, err := flags.GetBool("show-warnings")
	require.NoError(t, err)
	assert.True(t, showWarnings)

	exitOnError, err := flags.GetBool("exit-on-error")
	require.NoError(t, err)
	assert.True(t, exitOnError)

	assert.Equal(t, "d", flags.Lookup("directory").Shorthand)
	assert.Equal(t, "o", flags.Lookup("output").Shorthand)
}
