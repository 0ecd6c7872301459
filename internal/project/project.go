// Package project manages analysis projects: named bundles of heuristic
// criteria, a system prompt, and optional metadata stored on disk.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sherlock/internal/analysis"
	"sherlock/internal/logging"
)

// DefaultName is the project used when neither a flag nor a local binding
// names one.
const DefaultName = "retail6"

// localBindingFile binds a working directory to a project.
const localBindingFile = ".sherlock.json"

// Group is the rubric section a heuristic belongs to.
type Group struct {
	GroupNumber int    `json:"groupNumber"`
	Name        string `json:"name"`
}

// Heuristic is one rubric item as stored in a project's heuristics file.
type Heuristic struct {
	ID          string `json:"id"`
	Number      string `json:"heuristicNumber"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Group       Group  `json:"group"`
}

// Criterion converts the stored form into the shape the analyzer sends to
// the model.
func (h Heuristic) Criterion() analysis.Heuristic {
	return analysis.Heuristic{
		ID:          h.ID,
		Number:      h.Number,
		Name:        h.Name,
		Description: h.Description,
		Group:       h.Group.Name,
	}
}

// heuristicsFile is the on-disk envelope of heuristics.json.
type heuristicsFile struct {
	Data struct {
		Heuristics []Heuristic `json:"heuristics"`
	} `json:"data"`
}

// Meta is the optional per-project meta.json.
type Meta struct {
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Info summarizes one available project for listing.
type Info struct {
	Name            string
	Description     string
	Version         string
	HeuristicsCount int
}

// Project is one loaded analysis project.
type Project struct {
	Name string
	Path string
}

// localBinding is the content of .sherlock.json.
type localBinding struct {
	Project string `json:"project"`
}

// Resolve picks the project to use, in priority order: the explicit flag, the
// local directory binding, then the default.
func Resolve(projectsDir, flag string) (*Project, error) {
	if flag != "" {
		return Load(projectsDir, flag)
	}

	if data, err := os.ReadFile(localBindingFile); err == nil {
		var binding localBinding
		if err := json.Unmarshal(data, &binding); err == nil && binding.Project != "" {
			logging.Boot("project: using local binding %q", binding.Project)
			return Load(projectsDir, binding.Project)
		}
	}

	return Load(projectsDir, DefaultName)
}

// Load opens a project by name, failing with the list of available projects
// when it does not exist.
func Load(projectsDir, name string) (*Project, error) {
	path := filepath.Join(projectsDir, name)
	if _, err := os.Stat(path); err != nil {
		available := Names(projectsDir)
		return nil, fmt.Errorf("project %q not found (available: %s)", name, strings.Join(available, ", "))
	}
	return &Project{Name: name, Path: path}, nil
}

// Heuristics loads the project's full rubric.
func (p *Project) Heuristics() ([]Heuristic, error) {
	data, err := os.ReadFile(filepath.Join(p.Path, "heuristics.json"))
	if err != nil {
		return nil, fmt.Errorf("reading heuristics for %s: %w", p.Name, err)
	}
	var file heuristicsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing heuristics for %s: %w", p.Name, err)
	}
	return file.Data.Heuristics, nil
}

// SystemPrompt loads the project's system prompt.
func (p *Project) SystemPrompt() (string, error) {
	data, err := os.ReadFile(filepath.Join(p.Path, "system_prompt.txt"))
	if err != nil {
		return "", fmt.Errorf("reading system prompt for %s: %w", p.Name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// FilterByNumber selects heuristics whose number labels are in numbers.
// Order follows the stored rubric, not the request.
func FilterByNumber(heuristics []Heuristic, numbers []string) []Heuristic {
	want := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		want[strings.TrimSpace(n)] = true
	}
	var out []Heuristic
	for _, h := range heuristics {
		if want[h.Number] {
			out = append(out, h)
		}
	}
	return out
}

// GroupHeuristics partitions a rubric by group, ordered by group number with
// items sorted by their number label.
func GroupHeuristics(heuristics []Heuristic) [][]Heuristic {
	byGroup := map[int][]Heuristic{}
	for _, h := range heuristics {
		byGroup[h.Group.GroupNumber] = append(byGroup[h.Group.GroupNumber], h)
	}

	nums := make([]int, 0, len(byGroup))
	for n := range byGroup {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([][]Heuristic, 0, len(nums))
	for _, n := range nums {
		items := byGroup[n]
		sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })
		out = append(out, items)
	}
	return out
}

// List returns every available project with its metadata.
func List(projectsDir string) ([]Info, error) {
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("reading projects dir: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info := Info{Name: entry.Name(), Description: "No description", Version: "1.0"}

		if data, err := os.ReadFile(filepath.Join(projectsDir, entry.Name(), "meta.json")); err == nil {
			var meta Meta
			if json.Unmarshal(data, &meta) == nil {
				if meta.Description != "" {
					info.Description = meta.Description
				}
				if meta.Version != "" {
					info.Version = meta.Version
				}
			}
		}

		p := &Project{Name: entry.Name(), Path: filepath.Join(projectsDir, entry.Name())}
		if heuristics, err := p.Heuristics(); err == nil {
			info.HeuristicsCount = len(heuristics)
		}

		infos = append(infos, info)
	}
	return infos, nil
}

// Names returns the available project names, best effort.
func Names(projectsDir string) []string {
	infos, err := List(projectsDir)
	if err != nil {
		return nil
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

// Bind writes the local directory binding so subsequent runs default to the
// named project.
func Bind(projectsDir, name string) error {
	if _, err := Load(projectsDir, name); err != nil {
		return err
	}
	data, err := json.MarshalIndent(localBinding{Project: name}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(localBindingFile, data, 0644)
}
