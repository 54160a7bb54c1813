package seed

import (
	_ "embed"
	"fmt"
	"os"

	"devhub/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/demo.yml
var demoFixture []byte

// Fixture is a hand-written data set loaded from YAML.
type Fixture struct {
	Password   string             `yaml:"password"`
	Developers []DeveloperFixture `yaml:"developers"`
	Recruiters []AccountFixture   `yaml:"recruiters"`
}

// AccountFixture describes a non-developer account.
type AccountFixture struct {
	Name  string      `yaml:"name"`
	Email string      `yaml:"email"`
	Role  models.Role `yaml:"role"`
}

// DeveloperFixture describes a developer with their skills and projects.
type DeveloperFixture struct {
	Name           string           `yaml:"name"`
	Email          string           `yaml:"email"`
	Bio            string           `yaml:"bio"`
	GithubURL      string           `yaml:"github_url"`
	LinkedinURL    string           `yaml:"linkedin_url"`
	ContactVisible bool             `yaml:"contact_visible"`
	Skills         []string         `yaml:"skills"`
	Projects       []ProjectFixture `yaml:"projects"`
}

// ProjectFixture describes one showcased project.
type ProjectFixture struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	GithubURL   string `yaml:"github_url"`
	LiveURL     string `yaml:"live_url"`
}

// DemoFixture returns the built-in fixture.
func DemoFixture() (*Fixture, error) {
	return ParseFixture(demoFixture)
}

// LoadFixture reads a fixture file from disk.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes and checks a YAML fixture.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if f.Password == "" {
		f.Password = DefaultPassword
	}

	seen := make(map[string]bool)
	check := func(email, name string) error {
		if email == "" || name == "" {
			return fmt.Errorf("fixture account needs a name and an email")
		}
		if seen[email] {
			return fmt.Errorf("duplicate fixture email %q", email)
		}
		seen[email] = true
		return nil
	}
	for _, d := range f.Developers {
		if err := check(d.Email, d.Name); err != nil {
			return nil, err
		}
		for _, p := range d.Projects {
			if p.Title == "" || p.Description == "" {
				return nil, fmt.Errorf("project of %s needs a title and a description", d.Email)
			}
		}
	}
	for i, r := range f.Recruiters {
		if err := check(r.Email, r.Name); err != nil {
			return nil, err
		}
		if r.Role == "" {
			f.Recruiters[i].Role = models.RoleHR
			continue
		}
		if !r.Role.Valid() || r.Role == models.RoleDeveloper {
			return nil, fmt.Errorf("fixture account %s has unsupported role %q", r.Email, r.Role)
		}
	}
	return &f, nil
}
