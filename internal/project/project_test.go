package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeuristics = `{
  "data": {
    "heuristics": [
      {"id": "h1", "heuristicNumber": "1.1", "name": "Visibility of system status", "description": "Keep users informed.", "group": {"groupNumber": 1, "name": "Usability"}},
      {"id": "h2", "heuristicNumber": "2.3", "name": "Consistency", "description": "Follow conventions.", "group": {"groupNumber": 2, "name": "Standards"}},
      {"id": "h3", "heuristicNumber": "1.4", "name": "User control", "description": "Provide exits.", "group": {"groupNumber": 1, "name": "Usability"}}
    ]
  }
}`

func writeProject(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "heuristics.json"), []byte(sampleHeuristics), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(path, "system_prompt.txt"), []byte("You are a UX evaluator.\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(path, "meta.json"), []byte(`{"description": "Retail checkout", "version": "2.1"}`), 0644))
}

func TestLoadAndHeuristics(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "retail6")

	p, err := Load(dir, "retail6")
	require.NoError(t, err)

	heuristics, err := p.Heuristics()
	require.NoError(t, err)
	require.Len(t, heuristics, 3)
	assert.Equal(t, "1.1", heuristics[0].Number)
	assert.Equal(t, "Usability", heuristics[0].Group.Name)

	prompt, err := p.SystemPrompt()
	require.NoError(t, err)
	assert.Equal(t, "You are a UX evaluator.", prompt)
}

func TestLoad_Missing(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "retail6")

	_, err := Load(dir, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retail6")
}

func TestResolve_FlagWins(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "retail6")
	writeProject(t, dir, "finance")

	p, err := Resolve(dir, "finance")
	require.NoError(t, err)
	assert.Equal(t, "finance", p.Name)
}

func TestResolve_LocalBinding(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "retail6")
	writeProject(t, dir, "finance")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	require.NoError(t, os.WriteFile(localBindingFile, []byte(`{"project": "finance"}`), 0644))

	p, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "finance", p.Name)
}

func TestResolve_Default(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "retail6")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	p, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultName, p.Name)
}

func TestFilterByNumber(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "retail6")
	p, err := Load(dir, "retail6")
	require.NoError(t, err)
	heuristics, err := p.Heuristics()
	require.NoError(t, err)

	selected := FilterByNumber(heuristics, []string{"2.3", " 1.1 "})
	require.Len(t, selected, 2)
	// Rubric order, not request order.
	assert.Equal(t, "1.1", selected[0].Number)
	assert.Equal(t, "2.3", selected[1].Number)

	assert.Empty(t, FilterByNumber(heuristics, []string{"9.9"}))
}

func TestGroupHeuristics(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "retail6")
	p, err := Load(dir, "retail6")
	require.NoError(t, err)
	heuristics, err := p.Heuristics()
	require.NoError(t, err)

	groups := GroupHeuristics(heuristics)
	require.Len(t, groups, 2)
	assert.Equal(t, 1, groups[0][0].Group.GroupNumber)
	require.Len(t, groups[0], 2)
	assert.Equal(t, "1.1", groups[0][0].Number)
	assert.Equal(t, "1.4", groups[0][1].Number)
	assert.Equal(t, "Standards", groups[1][0].Group.Name)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "retail6")

	infos, err := List(dir)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "retail6", infos[0].Name)
	assert.Equal(t, "Retail checkout", infos[0].Description)
	assert.Equal(t, "2.1", infos[0].Version)
	assert.Equal(t, 3, infos[0].HeuristicsCount)
}

func TestBind(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "retail6")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	require.NoError(t, Bind(dir, "retail6"))
	data, err := os.ReadFile(localBindingFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"retail6"`)

	require.Error(t, Bind(dir, "missing"))
}

func TestCriterionConversion(t *testing.T) {
	h := Heuristic{ID: "h1", Number: "3.16", Name: "Recognition", Description: "d", Group: Group{GroupNumber: 3, Name: "Memory"}}
	c := h.Criterion()
	assert.Equal(t, "3.16", c.Number)
	assert.Equal(t, "Memory", c.Group)
}
