package model

import (
	"fmt"
	"strings"
)

// ParseRepo splits "owner/name" into its parts. Full github.com URLs and a
// trailing ".git" are accepted.
func ParseRepo(s string) (owner, name string, err error) {
	trimmed := strings.TrimSpace(s)
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		trimmed = strings.TrimPrefix(trimmed, prefix)
	}
	trimmed = strings.TrimSuffix(strings.TrimSuffix(trimmed, "/"), ".git")

	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return parts[0], parts[1], nil
}

// NormalizeRepo returns repo in canonical "owner/name" form.
func NormalizeRepo(repo string) (string, error) {
	owner, name, err := ParseRepo(repo)
	if err != nil {
		return "", err
	}
	return owner + "/" + name, nil
}

// UniqueRepos normalizes repos and drops repeats. GitHub repository names
// are case-insensitive, so "Acme/Widgets" repeats "acme/widgets". The first
// spelling wins and order is kept.
func UniqueRepos(repos []string) ([]string, error) {
	seen := make(map[string]bool, len(repos))
	unique := make([]string, 0, len(repos))
	for _, r := range repos {
		repo, err := NormalizeRepo(r)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(repo)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, repo)
	}
	return unique, nil
}
