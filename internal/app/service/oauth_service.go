package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPI = "https://api.github.com"

type GitHubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// ProfileFetcher turns an OAuth authorization code into the caller's GitHub profile.
type ProfileFetcher interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*GitHubProfile, error)
}

type OAuthService struct {
	userRepo repository.UserRepository
	fetcher  ProfileFetcher
}

// NewOAuthService returns a disabled service when fetcher is nil.
func NewOAuthService(userRepo repository.UserRepository, fetcher ProfileFetcher) *OAuthService {
	return &OAuthService{userRepo: userRepo, fetcher: fetcher}
}

func (s *OAuthService) Enabled() bool { return s.fetcher != nil }

func (s *OAuthService) AuthCodeURL(state string) (string, error) {
	if !s.Enabled() {
		return "", common.Unavailable("GitHub authentication is not configured")
	}
	return s.fetcher.AuthCodeURL(state), nil
}

func (s *OAuthService) CompleteLogin(ctx context.Context, code string) (*AuthResponse, error) {
	if !s.Enabled() {
		return nil, common.Unavailable("GitHub authentication is not configured")
	}
	if code == "" {
		return nil, common.ValidationError("Missing authorization code")
	}
	profile, err := s.fetcher.FetchProfile(ctx, code)
	if err != nil {
		return nil, common.Unauthorized("GitHub authentication failed")
	}
	user, err := s.resolve(ctx, profile)
	if err != nil {
		return nil, err
	}
	return issue(user)
}

// resolve finds the account for profile: by GitHub id, then by email (linking it), else a new account.
func (s *OAuthService) resolve(ctx context.Context, p *GitHubProfile) (*model.User, error) {
	providerID := strconv.FormatInt(p.ID, 10)

	user, err := s.userRepo.FindByAuthProvider(ctx, model.ProviderGitHub, providerID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up GitHub account: %w", err)
	}

	if p.Email != "" {
		user, err = s.userRepo.FindByEmail(ctx, p.Email)
		if err == nil {
			user.AuthProvider = model.ProviderGitHub
			user.AuthProviderID = &providerID
			user.GitHubUsername = optional(p.Login)
			if p.AvatarURL != "" {
				user.ProfilePicture = optional(p.AvatarURL)
			}
			if err := s.userRepo.Update(ctx, nil, user); err != nil {
				return nil, fmt.Errorf("failed to link GitHub account: %w", err)
			}
			return user, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up email: %w", err)
		}
	}

	username := p.Login
	if username == "" {
		username = "github_" + providerID
	} else if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		username = username + "_" + providerID
	}
	email := p.Email
	if email == "" {
		email = providerID + "+" + strings.ToLower(p.Login) + "@users.noreply.github.com"
	}
	name := p.Name
	if name == "" {
		name = p.Login
	}

	user, err = createAccount(ctx, s.userRepo, nil, newAccount{
		Username:       username,
		Email:          email,
		Role:           model.RoleParticipant,
		Name:           optional(name),
		Provider:       model.ProviderGitHub,
		ProviderID:     &providerID,
		GitHubUsername: optional(p.Login),
		ProfilePicture: optional(p.AvatarURL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub account: %w", err)
	}
	return user, nil
}

type githubFetcher struct {
	cfg     *oauth2.Config
	apiBase string
}

// NewGitHubFetcher builds the code-exchange client for the given OAuth app.
func NewGitHubFetcher(clientID, clientSecret, callbackURL string) ProfileFetcher {
	return &githubFetcher{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  callbackURL,
			Scopes:       []string{"user:email"},
		},
		apiBase: githubAPI,
	}
}

func (f *githubFetcher) AuthCodeURL(state string) string {
	return f.cfg.AuthCodeURL(state)
}

func (f *githubFetcher) FetchProfile(ctx context.Context, code string) (*GitHubProfile, error) {
	token, err := f.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	client := f.cfg.Client(ctx, token)

	var profile GitHubProfile
	if err := getJSON(ctx, client, f.apiBase+"/user", &profile); err != nil {
		return nil, err
	}
	if profile.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, f.apiBase+"/user/emails", &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					profile.Email = e.Email
					break
				}
			}
			if profile.Email == "" && len(emails) > 0 {
				profile.Email = emails[0].Email
			}
		}
	}
	return &profile, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
