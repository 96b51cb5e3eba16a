package config

// ReplaceObjects walks the settings object and replaces every object carrying
// a '$' + key property with the value returned by replacement(obj).
//
// Transformation providers use this to substitute placeholder objects, such
// as {$env: "VAR"}, anywhere in the settings tree.
func ReplaceObjects(
	settings map[string]interface{},
	key string,
	replacement func(obj map[string]interface{}) (interface{}, error),
) error {
	_, err := replaceIn(settings, "$"+key, replacement)
	return err
}

func replaceIn(
	value interface{},
	marker string,
	replacement func(obj map[string]interface{}) (interface{}, error),
) (interface{}, error) {
	switch value := value.(type) {
	case []interface{}:
		for i, entry := range value {
			replaced, err := replaceIn(entry, marker, replacement)
			if err != nil {
				return nil, err
			}
			value[i] = replaced
		}
	case map[string]interface{}:
		if _, ok := value[marker].(string); ok {
			return replacement(value)
		}
		for k, entry := range value {
			replaced, err := replaceIn(entry, marker, replacement)
			if err != nil {
				return nil, err
			}
			value[k] = replaced
		}
	}
	return value, nil
}
