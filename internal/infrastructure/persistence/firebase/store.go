package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/presencelab/beacon-bridge/internal/domain/repository"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/resilience"
)

// Store talks to a Firebase Realtime Database over its REST API: PUT for
// overwrites, POST for pushes (the server assigns a chronologically ordered
// key and returns it as "name"), GET for reads.
//
// Credential/connection setup is the caller's concern; the store only needs
// the database URL and, optionally, a pre-minted auth token.
type Store struct {
	baseURL   string
	authToken string
	client    *http.Client
	breaker   *resilience.Breaker
}

// NewStore creates a REST-backed store for the database at baseURL
// (e.g. "https://my-project-default-rtdb.firebaseio.com").
func NewStore(baseURL, authToken string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
		// An RTDB outage fails fast instead of stacking up blocked writers.
		breaker: resilience.NewBreaker("firebase", 5, 30*time.Second),
	}
}

// Set overwrites the document at path.
func (s *Store) Set(ctx context.Context, path string, value any) error {
	_, err := s.write(ctx, http.MethodPut, path, value)
	return err
}

// Push appends value under path; the server-generated key is returned.
func (s *Store) Push(ctx context.Context, path string, value any) (string, error) {
	body, err := s.write(ctx, http.MethodPost, path, value)
	if err != nil {
		return "", err
	}

	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode push response: %w", err)
	}
	return resp.Name, nil
}

// Get unmarshals the document at path into dest. Firebase returns the JSON
// literal "null" for absent paths.
func (s *Store) Get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	var body []byte
	err = s.breaker.Do(func() error {
		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("GET %s: %w", path, err)
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return repository.ErrNotFound
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, method, path string, value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var body []byte
	err = s.breaker.Do(func() error {
		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Store) endpoint(path string) string {
	u := s.baseURL + path + ".json"
	if s.authToken != "" {
		u += "?auth=" + url.QueryEscape(s.authToken)
	}
	return u
}
