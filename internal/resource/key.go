package resource

import (
	"fmt"
	"strconv"

	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
)

// DecodeKey maps path segments onto the entity's primary-key fields in
// declaration order. A missing, extra, non-integer, non-positive or
// beyond-32-bit segment cannot name a record and yields ErrNotFound.
func DecodeKey(e *schema.EntityDescriptor, segments []string) (crud.Key, error) {
	if len(segments) != len(e.PrimaryKey) {
		return nil, fmt.Errorf("%w: %s expects %d key segments, got %d",
			ErrNotFound, e.Name, len(e.PrimaryKey), len(segments))
	}

	key := make(crud.Key, len(segments))
	for i, seg := range segments {
		v, err := strconv.ParseInt(seg, 10, 32)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%w: %s key segment %q", ErrNotFound, e.PrimaryKey[i], seg)
		}
		key[i] = crud.KeyPart{Field: e.PrimaryKey[i], Value: v}
	}
	return key, nil
}
