// Package wordid issues short, memorable adjective-noun identifiers for
// persisted results, collision-checked against the store.
package wordid

import (
	"bufio"
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

//go:embed adjectives.txt nouns.txt
var wordFS embed.FS

// ErrSpaceExhausted indicates the generator could not find a free identifier
// within the retry ceiling. The word-pair space is effectively full.
var ErrSpaceExhausted = errors.New("identifier space exhausted")

const maxAttempts = 100

// Store answers whether an identifier is already taken. The store's
// primary-key uniqueness constraint remains the final arbiter; this check
// only makes collisions rare at issuance time.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Generator samples adjective-noun pairs until one is unused. It remembers
// identifiers it issued this process lifetime so two concurrent callers can
// never be handed the same candidate before either has been persisted.
type Generator struct {
	store      Store
	adjectives []string
	nouns      []string

	mu     sync.Mutex
	issued map[string]struct{}
}

// New loads the embedded word lists and returns a generator backed by store.
func New(store Store) (*Generator, error) {
	adjectives, err := loadWords("adjectives.txt")
	if err != nil {
		return nil, err
	}
	nouns, err := loadWords("nouns.txt")
	if err != nil {
		return nil, err
	}
	return &Generator{
		store:      store,
		adjectives: adjectives,
		nouns:      nouns,
		issued:     make(map[string]struct{}),
	}, nil
}

// GenerateID returns a fresh adjective-noun identifier not present in the
// store and not previously issued by this generator. It retries on collision
// up to a fixed ceiling and then fails with ErrSpaceExhausted.
func (g *Generator) GenerateID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		adj := g.adjectives[rand.IntN(len(g.adjectives))]
		noun := g.nouns[rand.IntN(len(g.nouns))]
		id := adj + "-" + noun

		// Reserve before the store round-trip so a racing caller cannot
		// pick the same candidate.
		g.mu.Lock()
		if _, taken := g.issued[id]; taken {
			g.mu.Unlock()
			continue
		}
		g.issued[id] = struct{}{}
		g.mu.Unlock()

		exists, err := g.store.Exists(ctx, id)
		if err != nil {
			g.release(id)
			return "", fmt.Errorf("checking identifier %q: %w", id, err)
		}
		if exists {
			continue
		}
		return id, nil
	}
	return "", ErrSpaceExhausted
}

func (g *Generator) release(id string) {
	g.mu.Lock()
	delete(g.issued, id)
	g.mu.Unlock()
}

func loadWords(name string) ([]string, error) {
	data, err := wordFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading word list %s: %w", name, err)
	}
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning word list %s: %w", name, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %s is empty", name)
	}
	return words, nil
}
