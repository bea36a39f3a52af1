package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// session is what `tourctl login` leaves behind for the admin commands.
type session struct {
	BaseURL   string    `json:"base_url"`
	Token     string    `json:"token"`
	Login     string    `json:"login"`
	ExpiresAt time.Time `json:"expires_at"`
}

var errNoSession = errors.New("not logged in: run `tourctl login` first")

func sessionPath() (string, error) {
	if p := os.Getenv("TOURCTL_SESSION"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "tourctl", "session.json"), nil
}

func loadSession(path string) (*session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, err
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	if s.Token == "" {
		return nil, errNoSession
	}
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, errors.New("session expired: run `tourctl login` again")
	}
	return &s, nil
}

func saveSession(path string, s *session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func clearSession(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
