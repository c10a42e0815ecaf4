package store

// StringValue returns the string stored under key in a result row.
// Missing keys and non-string values yield "".
func StringValue(row map[string]any, key string) string {
	s, _ := row[key].(string)
	return s
}

// StringSliceValue returns the string list stored under key in a result
// row. Neo4j returns list properties as []any; null, missing, and
// foreign-typed values yield an empty, non-nil slice so callers can
// append without nil checks.
func StringSliceValue(row map[string]any, key string) []string {
	switch v := row[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
