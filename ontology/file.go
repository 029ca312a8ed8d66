package ontology

import (
	"os"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ReadFile reads structures cached by WriteFile.
func ReadFile(name string) ([]Structure, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var structures []Structure
	if err := json.Unmarshal(b, &structures); err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	return structures, nil
}

// WriteFile caches structures as indented JSON.
func WriteFile(name string, structures []Structure) error {
	b, err := json.MarshalIndent(structures, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(name, b, 0o644)
}
