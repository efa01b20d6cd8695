package redisserver

// matchGlob matches a string against a glob pattern.
// '*' matches any run of bytes, '?' matches exactly one byte and '\'
// escapes the next byte.
// Examples:
//   - "user:*" matches "user:42"
//   - "*:name" matches "user:name"
//   - "user:?" matches "user:1" but not "user:10"
func matchGlob(pattern, s string) bool {
	if pattern == "*" {
		return true
	}

	p, i := 0, 0
	// Position to resume from after the last '*', for backtracking.
	starP, starI := -1, 0
	for i < len(s) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				starP, starI = p, i
				p++
				continue
			case '?':
				p++
				i++
				continue
			case '\\':
				if p+1 < len(pattern) && pattern[p+1] == s[i] {
					p += 2
					i++
					continue
				}
			default:
				if pattern[p] == s[i] {
					p++
					i++
					continue
				}
			}
		}
		if starP < 0 {
			return false
		}
		starI++
		p, i = starP+1, starI
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
