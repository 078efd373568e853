package cli

import (
	"fmt"

	"github.com/edusync/edusync-client/internal/common"
)

func errNotFound(id string) error {
	return fmt.Errorf("resource %s: %w", id, common.ErrNotFound)
}
