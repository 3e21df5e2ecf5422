package output

import (
	"html/template"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/distr1/archmigrate/internal/excuse"
)

// excuseDoc is excuses.yaml's on-disk shape: each excuse keyed by its
// migration item so the file reads the same regardless of build order.
type excuseDoc struct {
	Source      string   `yaml:"source"`
	Arch        string   `yaml:"architecture,omitempty"`
	OldVersion  string   `yaml:"old-version,omitempty"`
	NewVersion  string   `yaml:"new-version,omitempty"`
	Verdict     string   `yaml:"verdict"`
	Reasons     []string `yaml:"reasons,omitempty"`
	Invalid     bool     `yaml:"invalidated,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

func toDoc(e *excuse.Excuse) excuseDoc {
	d := excuseDoc{
		Source:       e.Item.Name,
		Verdict:      e.Verdict.String(),
		Reasons:      e.Reasons,
		Invalid:      e.Invalid,
		Dependencies: e.Dependencies,
	}
	if e.Item.Arch != "" {
		d.Arch = e.Item.Arch
	}
	if e.FromVersion.String() != "" {
		d.OldVersion = e.FromVersion.String()
	}
	if e.ToVersion.String() != "" {
		d.NewVersion = e.ToVersion.String()
	}
	return d
}

// WriteExcusesYAML renders excuses.yaml (§6, §4.E verdict taxonomy), sorted
// by source name then architecture for stable diffs across runs.
func WriteExcusesYAML(path string, excuses []*excuse.Excuse) error {
	sorted := sortedExcuses(excuses)
	docs := make([]excuseDoc, len(sorted))
	for i, e := range sorted {
		docs[i] = toDoc(e)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	defer enc.Close()
	return enc.Encode(struct {
		Excuses []excuseDoc `yaml:"excuses"`
	}{docs})
}

func sortedExcuses(excuses []*excuse.Excuse) []*excuse.Excuse {
	out := make([]*excuse.Excuse, len(excuses))
	copy(out, excuses)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Item.Name != out[j].Item.Name {
			return out[i].Item.Name < out[j].Item.Name
		}
		return out[i].Item.Arch < out[j].Item.Arch
	})
	return out
}

var excusesHTMLTemplate = template.Must(template.New("excuses.html").Parse(`<!DOCTYPE html>
<html><head><title>Migration excuses</title></head>
<body>
<table border="1">
<tr><th>Source</th><th>Arch</th><th>Old</th><th>New</th><th>Verdict</th><th>Reasons</th></tr>
{{range .}}<tr{{if .Invalid}} style="color:gray"{{end}}>
<td>{{.Item.Name}}</td><td>{{.Item.Arch}}</td><td>{{.FromVersion}}</td><td>{{.ToVersion}}</td>
<td>{{.Verdict}}</td><td>{{range .Reasons}}{{.}} {{end}}</td>
</tr>
{{end}}
</table>
</body></html>
`))

// WriteExcusesHTML renders excuses.html, the human-browsable companion to
// excuses.yaml (§6).
func WriteExcusesHTML(path string, excuses []*excuse.Excuse) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return excusesHTMLTemplate.Execute(f, sortedExcuses(excuses))
}
