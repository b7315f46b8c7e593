package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

// IdentityMappings is the parsed identity mapping file. Each source (Zoom)
// identity maps to one or more index identities and vice versa; both
// directions are consulted: fetchers tag documents with the index identities
// of the owning source user, permission sync pushes source identities to
// each index identity.
type IdentityMappings struct {
	// SourceToIndex maps a source identity to its index identities.
	SourceToIndex map[string][]string
	// IndexToSource maps an index identity to its source identities.
	IndexToSource map[string][]string
}

// LoadIdentityMappings reads a CSV of source_identity,index_identity rows.
// A missing or empty file yields domain.ErrEmptyIdentityMapping.
func LoadIdentityMappings(path string) (*IdentityMappings, error) {
	if path == "" {
		return nil, domain.ErrEmptyIdentityMapping
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyIdentityMapping, path)
	}
	defer f.Close()

	m := &IdentityMappings{
		SourceToIndex: make(map[string][]string),
		IndexToSource: make(map[string][]string),
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read identity mapping %s: %w", path, err)
		}
		if len(row) < 2 {
			continue
		}
		source, index := row[0], row[1]
		m.SourceToIndex[source] = append(m.SourceToIndex[source], index)
		m.IndexToSource[index] = append(m.IndexToSource[index], source)
	}

	if len(m.SourceToIndex) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyIdentityMapping, path)
	}
	return m, nil
}
