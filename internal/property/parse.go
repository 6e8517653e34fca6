package property

import "strings"

// amenityStrip maps the bracket/quote characters the source data wraps
// amenity lists in (e.g. "['Gym','Parking']") to spaces.
var amenityStrip = strings.NewReplacer(
	"[", " ",
	"]", " ",
	"(", " ",
	")", " ",
	"'", " ",
	`"`, " ",
	",", " ",
)

// Tokenize normalizes a free-text amenities field into lowercase tokens.
// Brackets, quotes and commas are stripped, whitespace collapsed, and the
// result deduplicated preserving first-seen order. An empty or blank field
// yields nil.
func Tokenize(amenities string) []string {
	cleaned := amenityStrip.Replace(amenities)
	fields := strings.Fields(strings.ToLower(cleaned))
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// ParseBool interprets the lenient boolean encodings found in the source
// data (Yes/No, true/false, 1/0, y/n, t/f, any case). Unrecognized values
// are false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "y", "t":
		return true
	}
	return false
}

// ParseCondition maps a raw condition string onto the closed Condition set.
// Anything unrecognized (including empty) is ConditionUnknown.
func ParseCondition(s string) Condition {
	switch Condition(strings.ToLower(strings.TrimSpace(s))) {
	case ConditionNew:
		return ConditionNew
	case ConditionRenovated:
		return ConditionRenovated
	case ConditionOld:
		return ConditionOld
	}
	return ConditionUnknown
}

// NormalizeType canonicalizes a property type for category matching.
func NormalizeType(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return "unknown"
	}
	return t
}
