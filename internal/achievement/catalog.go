package achievement

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"sigs.k8s.io/yaml"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Definitions []catalogEntry `json:"definitions"`
}

type catalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
	Threshold   int    `json:"threshold"`
	Icon        string `json:"icon"`
}

// BuiltinCatalog parses the embedded catalog into definitions.
func BuiltinCatalog() ([]Definition, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, fmt.Errorf("parsing embedded catalog: %w", err)
	}

	defs := make([]Definition, 0, len(file.Definitions))
	for _, e := range file.Definitions {
		if !ValidType(e.Type) {
			return nil, fmt.Errorf("embedded catalog: unknown type %q for %q", e.Type, e.Name)
		}
		if e.Threshold < 1 {
			return nil, fmt.Errorf("embedded catalog: invalid threshold %d for %q", e.Threshold, e.Name)
		}
		defs = append(defs, Definition{
			Name:        e.Name,
			Description: e.Description,
			Type:        e.Type,
			Threshold:   e.Threshold,
			Icon:        e.Icon,
		})
	}

	return defs, nil
}

// SeedCatalog inserts the built-in catalog when the achievements table is
// empty. Run once at startup, not on the read path. A duplicate-name race
// between two seeders collapses into "already seeded".
func SeedCatalog(ctx context.Context, repo DefinitionRepository) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking catalog: %w", err)
	}
	if count > 0 {
		return nil
	}

	defs, err := BuiltinCatalog()
	if err != nil {
		return err
	}

	seeded := 0
	for i := range defs {
		if err := repo.Insert(ctx, &defs[i]); err != nil {
			if errors.Is(err, ErrDuplicateDefinition) {
				continue
			}
			return fmt.Errorf("seeding catalog: %w", err)
		}
		seeded++
	}

	slog.Info("achievement catalog seeded", "definitions", seeded)
	return nil
}
