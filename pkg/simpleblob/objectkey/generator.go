package objectkey

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Key is the pair of names minted for one upload. StorageName is what the blob
// store persists under; ID is the public identifier and is always StorageName
// with the extension suffix removed.
type Key struct {
	StorageName string
	ID          string
}

// Generator defines the interface for identifier generation strategies
type Generator interface {
	// Generate mints a key for an upload whose client-supplied file name is
	// originalName. It performs no I/O and cannot fail.
	Generate(originalName string) Key
}

// randomRange is the exclusive upper bound of the random component.
const randomRange = 1_000_000_001

// TimestampGenerator builds storage names from the wall clock in milliseconds
// and a random integer: "1718000000000-123456789.pdf". Uniqueness is
// probabilistic; callers that need a hard guarantee must check for collisions.
type TimestampGenerator struct {
	now  func() time.Time
	intn func(n int64) int64
}

// TimestampOption configures a TimestampGenerator
type TimestampOption func(*TimestampGenerator)

// WithClock overrides the time source
func WithClock(now func() time.Time) TimestampOption {
	return func(g *TimestampGenerator) {
		g.now = now
	}
}

// WithRand overrides the random source. intn must return a value in [0, n).
func WithRand(intn func(n int64) int64) TimestampOption {
	return func(g *TimestampGenerator) {
		g.intn = intn
	}
}

func NewTimestampGenerator(opts ...TimestampOption) *TimestampGenerator {
	g := &TimestampGenerator{
		now:  time.Now,
		intn: rand.Int63n,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *TimestampGenerator) Generate(originalName string) Key {
	id := fmt.Sprintf("%d-%d", g.now().UnixMilli(), g.intn(randomRange))
	return Key{
		StorageName: id + Extension(originalName),
		ID:          id,
	}
}

// UUIDGenerator uses a random 128-bit UUID as the identifier
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate(originalName string) Key {
	id := uuid.NewString()
	return Key{
		StorageName: id + Extension(originalName),
		ID:          id,
	}
}

// GeneratorFunc adapts a plain function to the Generator interface
type GeneratorFunc func(originalName string) Key

func (f GeneratorFunc) Generate(originalName string) Key {
	return f(originalName)
}

// Extension returns the extension of the last path element of name, including
// the leading dot. Names without a dot, names whose only dot is the leading
// one (".bashrc") and names made only of dots have no extension.
func Extension(name string) string {
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	if strings.Trim(name, ".") == "" {
		return ""
	}

	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return ""
	}
	return name[i:]
}

// NewRecommendedGenerator returns the generator used when none is configured
func NewRecommendedGenerator() Generator {
	return NewTimestampGenerator()
}
