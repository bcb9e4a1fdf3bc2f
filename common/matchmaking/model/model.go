package model

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

const (
	// UserPlaceholder is replaced with the user ID in file paths and object keys.
	UserPlaceholder = "{user}"
)

// generationError wraps err so that it satisfies errors.Is(err, matchmaking.ErrModelGeneration).
func generationError(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %w", matchmaking.ErrModelGeneration, errors.Wrapf(err, format, args...))
}

// StaticGenerator serves the same catalog to every user.
type StaticGenerator struct {
	catalog *catalog.Catalog
}

func NewStaticGenerator(cat *catalog.Catalog) *StaticGenerator {
	return &StaticGenerator{catalog: cat}
}

func (g *StaticGenerator) GenerateModel(_ context.Context, userId string) (*catalog.Catalog, error) {
	if userId == "" {
		return nil, matchmaking.ErrEmptyUserId
	}

	return g.catalog, nil
}

// FileGenerator reads the catalog of a user from a YAML document on the local file system.
//
// The path may contain UserPlaceholder, in which case every user has a catalog of their own. Each call
// produces a new catalog snapshot.
type FileGenerator struct {
	path string
}

func NewFileGenerator(path string) *FileGenerator {
	return &FileGenerator{path: path}
}

func (g *FileGenerator) GenerateModel(ctx context.Context, userId string) (*catalog.Catalog, error) {
	if userId == "" {
		return nil, matchmaking.ErrEmptyUserId
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.ReplaceAll(g.path, UserPlaceholder, userId)
	f, err := os.Open(path)
	if err != nil {
		return nil, generationError(err, "failed to open catalog of user \"%s\"", userId)
	}
	defer func() { _ = f.Close() }()

	cat, err := catalog.Decode(f)
	if err != nil {
		return nil, generationError(err, "failed to decode catalog \"%s\"", path)
	}

	return cat, nil
}
