package processo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrListUnavailable is returned when no identifier list could be read.
var ErrListUnavailable = errors.New("lista de processos indisponível")

type listFile struct {
	Processos *[]string `json:"processos"`
}

// LoadList reads {"processos": [...]} from path. Missing files, malformed
// JSON and a missing "processos" field all yield an empty list together
// with an error wrapping ErrListUnavailable. An explicit empty list is not
// an error.
func LoadList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{}, fmt.Errorf("%w: ler %s: %w", ErrListUnavailable, path, err)
	}

	var lf listFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return []string{}, fmt.Errorf("%w: decodificar %s: %w", ErrListUnavailable, path, err)
	}
	if lf.Processos == nil {
		return []string{}, fmt.Errorf("%w: campo \"processos\" ausente em %s", ErrListUnavailable, path)
	}

	ids := make([]string, len(*lf.Processos))
	copy(ids, *lf.Processos)
	return ids, nil
}
