package manifest

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `{
  "entityDirectories": [
    {
      "entities": ["a", "b"],
      "directories": [
        {"extension": "txt", "required": true, "path": "files", "ignoredEntities": ["b"]},
        {"extension": "png", "required": false, "path": "images", "ignoredEntities": []}
      ]
    },
    {
      "entities": ["c"],
      "directories": []
    }
  ]
}`

func writeManifest(t *testing.T, fsys afero.Fs, baseDir, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(baseDir, 0o755))
	require.NoError(t, afero.WriteFile(fsys, filepath.Join(baseDir, FileName), []byte(content), 0o644))
}

func TestLoad_Valid(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeManifest(t, fsys, "/assets", validManifest)

	m, err := Load(fsys, "/assets")
	require.NoError(t, err)

	require.Len(t, m.EntityGroups, 2)
	assert.Equal(t, []string{"a", "b"}, m.EntityGroups[0].Entities)
	require.Len(t, m.EntityGroups[0].Directories, 2)

	rule := m.EntityGroups[0].Directories[0]
	assert.Equal(t, "txt", rule.Extension)
	assert.True(t, rule.Required)
	assert.Equal(t, "files", rule.Path)
	assert.Equal(t, []string{"b"}, rule.IgnoredEntities)

	assert.Equal(t, []string{"c"}, m.EntityGroups[1].Entities)
	assert.Empty(t, m.EntityGroups[1].Directories)
	assert.Equal(t, 2, m.RuleCount())
}

func TestLoad_DirectoryMissing(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := Load(fsys, "/nope")
	require.Error(t, err)

	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindDirectoryMissing, se.Kind)
	assert.Equal(t, "Directory /nope does not exist", err.Error())
	assert.True(t, IsStructural(err))
}

func TestLoad_BaseIsAFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/assets", []byte("x"), 0o644))

	_, err := Load(fsys, "/assets")
	assert.EqualError(t, err, "Directory /assets does not exist")
}

func TestLoad_ManifestMissing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/assets/files", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/assets/files/a.txt", nil, 0o644))

	_, err := Load(fsys, "/assets")

	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindManifestMissing, se.Kind)
	assert.Equal(t, "Manifest /assets/manifest.json does not exist", err.Error())
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: `{"entityDirectories": [`},
		{name: "empty file", content: ``},
		{name: "top level array", content: `[]`},
		{name: "top level null", content: `null`},
		{name: "missing entityDirectories", content: `{}`},
		{name: "entityDirectories not array", content: `{"entityDirectories": {}}`},
		{name: "group not object", content: `{"entityDirectories": ["a"]}`},
		{name: "missing entities", content: `{"entityDirectories": [{"directories": []}]}`},
		{name: "entities not strings", content: `{"entityDirectories": [{"entities": [1], "directories": []}]}`},
		{name: "empty entity name", content: `{"entityDirectories": [{"entities": [""], "directories": []}]}`},
		{name: "entities null", content: `{"entityDirectories": [{"entities": null, "directories": []}]}`},
		{name: "missing directories", content: `{"entityDirectories": [{"entities": []}]}`},
		{
			name:    "extension not string",
			content: `{"entityDirectories": [{"entities": [], "directories": [{"extension": 1, "required": true, "path": "x", "ignoredEntities": []}]}]}`,
		},
		{
			name:    "required not boolean",
			content: `{"entityDirectories": [{"entities": [], "directories": [{"extension": "x", "required": "yes", "path": "x", "ignoredEntities": []}]}]}`,
		},
		{
			name:    "missing path",
			content: `{"entityDirectories": [{"entities": [], "directories": [{"extension": "x", "required": true, "ignoredEntities": []}]}]}`,
		},
		{
			name:    "missing ignoredEntities",
			content: `{"entityDirectories": [{"entities": [], "directories": [{"extension": "x", "required": true, "path": "x"}]}]}`,
		},
		{
			name:    "ignoredEntities not string array",
			content: `{"entityDirectories": [{"entities": [], "directories": [{"extension": "x", "required": true, "path": "x", "ignoredEntities": [true]}]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeManifest(t, fsys, "/assets", tt.content)

			m, err := Load(fsys, "/assets")
			assert.Nil(t, m)

			var se *StructuralError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, KindManifestMalformed, se.Kind)
			assert.Equal(t, "Manifest /assets/manifest.json is malformed", err.Error())
		})
	}
}

func TestLoad_ExtraPropertiesAccepted(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeManifest(t, fsys, "/assets", `{
  "version": 2,
  "entityDirectories": [
    {"name": "icons", "entities": ["a"], "directories": [
      {"extension": "svg", "required": true, "path": "icons", "ignoredEntities": [], "comment": "vector"}
    ]}
  ]
}`)

	m, err := Load(fsys, "/assets")
	require.NoError(t, err)
	assert.Equal(t, "svg", m.EntityGroups[0].Directories[0].Extension)
}

func TestLoad_EmptyGroups(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeManifest(t, fsys, "/assets", `{"entityDirectories": []}`)

	m, err := Load(fsys, "/assets")
	require.NoError(t, err)
	assert.Empty(t, m.EntityGroups)
	assert.Equal(t, 0, m.RuleCount())
}

func TestValidate_ReportsViolations(t *testing.T) {
	violations, err := Validate([]byte(`{"entityDirectories": [{"entities": [1]}]}`))
	require.NoError(t, err)
	assert.NotEmpty(t, violations)
	for _, v := range violations {
		assert.NotEmpty(t, v.Field)
		assert.NotEmpty(t, v.Message)
	}
}

func TestDirectoryRule_Helpers(t *testing.T) {
	rule := DirectoryRule{Extension: "json", IgnoredEntities: []string{"x", "y", "x"}}

	assert.Equal(t, "a.json", rule.ExpectedFileName("a"))

	set := rule.IgnoredSet()
	assert.Len(t, set, 2)
	assert.Contains(t, set, "x")
	assert.Contains(t, set, "y")
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("base", "manifest.json"), Path("base"))
	assert.Equal(t, filepath.Join("base", "manifest.json"), Path("base/"))
}
