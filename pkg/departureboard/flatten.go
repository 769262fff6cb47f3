package departureboard

const FlattenSeparator = "_"

// Flatten joins nested object keys with FlattenSeparator. Values that are not objects, lists included,
// are copied as they are.
func Flatten(record Record) Record {
	flattened := Record{}
	flattenInto(flattened, "", record)

	return flattened
}

func flattenInto(flattened Record, parentKey string, record Record) {
	for key, value := range record {
		if parentKey != "" {
			key = parentKey + FlattenSeparator + key
		}

		if nested, ok := value.(map[string]any); ok {
			flattenInto(flattened, key, nested)
			continue
		}

		flattened[key] = value
	}
}
