// Package manifest loads and validates the manifest.json document that
// declares which entity files each base directory is expected to hold.
package manifest

// FileName is the name of the manifest file inside a base directory.
const FileName = "manifest.json"

// DirectoryRule is one checked location within a base directory.
type DirectoryRule struct {
	// Extension is appended to an entity name (after a dot) to form the
	// expected file name.
	Extension string `json:"extension"`

	// Required makes a missing file an error instead of a warning.
	Required bool `json:"required"`

	// Path is the directory to check, relative to the base directory.
	Path string `json:"path"`

	// IgnoredEntities are exempt from the missing-file check. Their files
	// being present is reported as a warning.
	IgnoredEntities []string `json:"ignoredEntities"`
}

// IgnoredSet returns the ignored entities as a set.
func (r DirectoryRule) IgnoredSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.IgnoredEntities))
	for _, e := range r.IgnoredEntities {
		set[e] = struct{}{}
	}
	return set
}

// ExpectedFileName returns the file name entity is expected to have under r.
func (r DirectoryRule) ExpectedFileName(entity string) string {
	return entity + "." + r.Extension
}

// EntityGroup is a list of entities sharing one set of directory rules.
type EntityGroup struct {
	Entities    []string        `json:"entities"`
	Directories []DirectoryRule `json:"directories"`
}

// Manifest is the root document of one base directory. It is read once per
// run and never modified.
type Manifest struct {
	EntityGroups []EntityGroup `json:"entityDirectories"`
}

// RuleCount returns the number of (group, rule) pairs the manifest declares.
func (m *Manifest) RuleCount() int {
	n := 0
	for _, g := range m.EntityGroups {
		n += len(g.Directories)
	}
	return n
}
