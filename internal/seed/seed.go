// Package seed populates a database with demo developers, projects and
// engagement for local development.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is used for generated accounts and fixtures without one.
const DefaultPassword = "DevHub-Passw0rd!"

// Options controls how much random data is generated on top of a fixture.
type Options struct {
	Developers           int
	Recruiters           int
	ProjectsPerDeveloper int
	// MaxUpvotes caps the upvotes given to one project; MaxComments likewise.
	MaxUpvotes  int
	MaxComments int
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// RandomSeed makes generated data reproducible when non-zero.
	RandomSeed int64
}

// Summary counts what a run created.
type Summary struct {
	Accounts int
	Projects int
	Skills   int
	Upvotes  int
	Comments int
}

// Seeder writes demo data through the repositories so engagement counters
// always match their facts.
type Seeder struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker

	projects   repository.ProjectRepository
	skills     repository.SkillRepository
	engagement repository.EngagementRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Seeder{
		db:         db,
		opts:       opts,
		faker:      gofakeit.New(opts.RandomSeed),
		projects:   repository.NewProjectRepository(db),
		skills:     repository.NewSkillRepository(db),
		engagement: repository.NewEngagementRepository(db),
	}
}

// ClearAll removes every row the application owns, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&models.Comment{},
		&models.Upvote{},
		&models.ContactRequest{},
		&models.Skill{},
		&models.Project{},
		&models.Profile{},
		&models.Account{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.Info("cleared existing data")
	return nil
}

// Run seeds the fixture, when given, followed by generated accounts and
// engagement across every seeded project.
func (s *Seeder) Run(ctx context.Context, fixture *Fixture) (*Summary, error) {
	password := DefaultPassword
	if fixture != nil && fixture.Password != "" {
		password = fixture.Password
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	summary := &Summary{}
	var (
		people   []uint
		projects []*models.Project
	)

	if fixture != nil {
		for _, d := range fixture.Developers {
			profile, err := s.createAccount(ctx, string(hash), d.Email, models.Profile{
				Name:           d.Name,
				Role:           models.RoleDeveloper,
				Bio:            d.Bio,
				GithubURL:      d.GithubURL,
				LinkedinURL:    d.LinkedinURL,
				ContactVisible: d.ContactVisible,
			})
			if err != nil {
				return summary, err
			}
			summary.Accounts++
			people = append(people, profile.ID)

			for _, label := range d.Skills {
				if _, created, err := s.skills.Add(ctx, profile.ID, label); err != nil {
					return summary, fmt.Errorf("add skill %q: %w", label, err)
				} else if created {
					summary.Skills++
				}
			}
			for _, p := range d.Projects {
				project := &models.Project{
					DeveloperID: profile.ID,
					Title:       p.Title,
					Description: p.Description,
					GithubURL:   optional(p.GithubURL),
					LiveURL:     optional(p.LiveURL),
				}
				if err := s.projects.Create(ctx, project); err != nil {
					return summary, fmt.Errorf("create project %q: %w", p.Title, err)
				}
				summary.Projects++
				projects = append(projects, project)
			}
		}
		for _, r := range fixture.Recruiters {
			profile, err := s.createAccount(ctx, string(hash), r.Email, models.Profile{Name: r.Name, Role: r.Role})
			if err != nil {
				return summary, err
			}
			summary.Accounts++
			people = append(people, profile.ID)
		}
	}

	for i := 0; i < s.opts.Developers; i++ {
		profile, err := s.createAccount(ctx, string(hash), s.email("dev", i), models.Profile{
			Name:           s.faker.Name(),
			Role:           models.RoleDeveloper,
			Bio:            s.faker.Sentence(12),
			GithubURL:      "https://github.com/" + strings.ToLower(s.faker.Username()),
			ContactVisible: s.faker.Bool(),
		})
		if err != nil {
			return summary, err
		}
		summary.Accounts++
		people = append(people, profile.ID)

		for j := 0; j < s.faker.IntRange(1, 4); j++ {
			if _, created, err := s.skills.Add(ctx, profile.ID, s.faker.ProgrammingLanguage()); err != nil {
				return summary, fmt.Errorf("add skill: %w", err)
			} else if created {
				summary.Skills++
			}
		}
		for j := 0; j < s.opts.ProjectsPerDeveloper; j++ {
			project := &models.Project{
				DeveloperID: profile.ID,
				Title:       s.faker.AppName(),
				Description: s.faker.Paragraph(1, 3, 12, " "),
				GithubURL:   optional(s.faker.URL()),
			}
			if err := s.projects.Create(ctx, project); err != nil {
				return summary, fmt.Errorf("create project: %w", err)
			}
			summary.Projects++
			projects = append(projects, project)
		}
	}

	for i := 0; i < s.opts.Recruiters; i++ {
		role := models.RoleHR
		if i%2 == 1 {
			role = models.RoleUser
		}
		profile, err := s.createAccount(ctx, string(hash), s.email(string(role), i), models.Profile{
			Name: s.faker.Name(),
			Role: role,
		})
		if err != nil {
			return summary, err
		}
		summary.Accounts++
		people = append(people, profile.ID)
	}

	if err := s.engage(ctx, projects, people, summary); err != nil {
		return summary, err
	}

	middleware.Logger.Info("seeding complete",
		slog.Int("accounts", summary.Accounts),
		slog.Int("projects", summary.Projects),
		slog.Int("skills", summary.Skills),
		slog.Int("upvotes", summary.Upvotes),
		slog.Int("comments", summary.Comments))
	return summary, nil
}

// engage spreads upvotes and comments from people over projects. Owners never
// engage with their own projects.
func (s *Seeder) engage(ctx context.Context, projects []*models.Project, people []uint, summary *Summary) error {
	for _, project := range projects {
		voters := s.others(people, project.DeveloperID)
		upvotes := s.pick(len(voters), s.opts.MaxUpvotes)
		for _, idx := range upvotes {
			changed, _, err := s.engagement.AddUpvote(ctx, project.ID, voters[idx])
			if err != nil {
				return fmt.Errorf("upvote project %d: %w", project.ID, err)
			}
			if changed {
				summary.Upvotes++
			}
		}

		if len(voters) == 0 || s.opts.MaxComments <= 0 {
			continue
		}
		for range s.faker.IntRange(0, s.opts.MaxComments) {
			comment := &models.Comment{
				ProjectID: project.ID,
				UserID:    voters[s.faker.IntRange(0, len(voters)-1)],
				Content:   s.faker.Sentence(s.faker.IntRange(4, 14)),
			}
			if _, err := s.engagement.AddComment(ctx, comment); err != nil {
				return fmt.Errorf("comment on project %d: %w", project.ID, err)
			}
			summary.Comments++
		}
	}
	return nil
}

// createAccount inserts an account and its profile in one transaction.
func (s *Seeder) createAccount(ctx context.Context, hash, email string, profile models.Profile) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account := &models.Account{Email: email, PasswordHash: hash}
		if err := tx.Create(account).Error; err != nil {
			return err
		}
		profile.ID = account.ID
		return repository.NewProfileRepository(tx).Create(ctx, &profile)
	})
	if err != nil {
		return nil, fmt.Errorf("create account %s: %w", email, err)
	}
	return &profile, nil
}

func (s *Seeder) email(prefix string, i int) string {
	return fmt.Sprintf("%s%d.%s@example.com", prefix, i, strings.ToLower(s.faker.Username()))
}

func (s *Seeder) others(people []uint, exclude uint) []uint {
	out := make([]uint, 0, len(people))
	for _, id := range people {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}

// pick returns up to limit distinct indexes below n.
func (s *Seeder) pick(n, limit int) []int {
	if n == 0 || limit <= 0 {
		return nil
	}
	count := s.faker.IntRange(0, min(n, limit))
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	s.faker.ShuffleAnySlice(idx)
	return idx[:count]
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
