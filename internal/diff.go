package internal

import (
	"bytes"
	"encoding/json"
)

// Patchable field allow-lists per entity kind. Only these fields are ever
// diffed and sent in a partial update.
var (
	EnfoquePatchFields  = []string{"nombre", "descripcion", "metadata", "imagen_url"}
	ProductoPatchFields = []string{"nombre", "descripcion", "precio", "metadata", "imagen_url"}
)

// jsonEqual reports deep equality by serialization. nil and absent values
// both serialize to null, which is exactly the equivalence the patch
// builder wants.
func jsonEqual(a, b any) bool {
	da, errA := json.Marshal(a)
	db, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(da, db)
}

// BuildPatch computes a partial update body: for each allowed field, the
// current value is included only when it differs (by serialized deep
// equality) from the original snapshot. Fields outside the allow-list are
// never sent.
func BuildPatch(original, current map[string]any, allowed []string) map[string]any {
	patch := make(map[string]any)
	for _, field := range allowed {
		curValue, inCurrent := current[field]
		if !inCurrent {
			continue
		}
		if jsonEqual(original[field], curValue) {
			continue
		}
		patch[field] = curValue
	}
	return patch
}
