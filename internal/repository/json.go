package repository

import (
	"encoding/json"
	"fmt"

	"cyoa-server/internal/domain"
)

// marshalOptions сериализует варианты в jsonb; пустой список хранится как [].
func marshalOptions(options []domain.NodeOption) ([]byte, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal node options: %w", err)
	}
	return data, nil
}
