package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

type SeedAccount struct {
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

type SeedFile struct {
	Accounts []SeedAccount          `yaml:"accounts"`
	Problems []CreateProblemRequest `yaml:"problems"`
}

type SeedReport struct {
	AccountsCreated int
	ProblemsCreated int
}

type Seeder struct {
	userRepo repository.UserRepository
	problems *ProblemService
}

func NewSeeder(userRepo repository.UserRepository, problems *ProblemService) *Seeder {
	return &Seeder{userRepo: userRepo, problems: problems}
}

func ParseSeedFile(r io.Reader) (*SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// SeedFromPath loads path (when set) plus an optional admin account and applies them.
func (s *Seeder) SeedFromPath(ctx context.Context, path, adminEmail, adminPassword string) (*SeedReport, error) {
	f := &SeedFile{}
	if path != "" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open seed file: %w", err)
		}
		defer fh.Close()
		if f, err = ParseSeedFile(fh); err != nil {
			return nil, err
		}
	}
	if adminEmail != "" && adminPassword != "" {
		f.Accounts = append(f.Accounts, SeedAccount{Email: adminEmail, Name: "Administrator", Role: model.RoleAdmin, Password: adminPassword})
	}
	return s.Seed(ctx, f)
}

// Seed creates the accounts and problems in f that do not exist yet. It is safe to run repeatedly.
func (s *Seeder) Seed(ctx context.Context, f *SeedFile) (*SeedReport, error) {
	report := &SeedReport{}
	for _, a := range f.Accounts {
		created, err := s.seedAccount(ctx, a)
		if err != nil {
			return report, fmt.Errorf("seed account %s: %w", a.Email, err)
		}
		if created {
			report.AccountsCreated++
		}
	}
	for _, p := range f.Problems {
		created, err := s.seedProblem(ctx, p)
		if err != nil {
			return report, fmt.Errorf("seed problem %q: %w", p.Title, err)
		}
		if created {
			report.ProblemsCreated++
		}
	}
	log.Printf("INFO: seeding done, %d accounts and %d problems created", report.AccountsCreated, report.ProblemsCreated)
	return report, nil
}

func (s *Seeder) seedAccount(ctx context.Context, a SeedAccount) (bool, error) {
	if a.Email == "" || a.Password == "" {
		return false, common.ValidationError("email and password are required")
	}
	if a.Role == "" {
		a.Role = model.RoleParticipant
	}
	if !model.IsValidRole(a.Role) {
		return false, common.ValidationError("invalid role %q", a.Role)
	}
	if _, err := s.userRepo.FindByEmail(ctx, a.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return false, err
	}
	if a.Username == "" {
		a.Username = strings.ReplaceAll(slug.Make(strings.Split(a.Email, "@")[0]), "-", "_")
	}
	_, err := createAccount(ctx, s.userRepo, nil, newAccount{
		Username: a.Username,
		Email:    a.Email,
		Password: a.Password,
		Role:     a.Role,
		Name:     optional(a.Name),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) seedProblem(ctx context.Context, p CreateProblemRequest) (bool, error) {
	key := p.Slug
	if key == "" {
		key = slug.Make(p.Title)
	}
	if _, err := s.problems.Get(ctx, key); err == nil {
		return false, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return false, err
	}
	if _, err := s.problems.Create(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}
