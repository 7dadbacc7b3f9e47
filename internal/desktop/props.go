package desktop

import (
	"bufio"
	"os"
	"strings"
)

// matchKey reports whether line starts with key, ignoring leading blanks and
// case. A space in key matches any run of blanks, including none, so
// "set ( LXQT_VERSION" matches both `set(LXQT_VERSION` and `set (LXQT_VERSION`.
func matchKey(line, key string) (string, bool) {
	line = strings.TrimLeft(line, " \t")
	i := 0
	for j := 0; j < len(key); j++ {
		if key[j] == ' ' {
			for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
				i++
			}
			continue
		}
		if i >= len(line) || lower(line[i]) != lower(key[j]) {
			return "", false
		}
		i++
	}
	return line[i:], true
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// cleanValue strips markup, closing parentheses and quotes around a value.
func cleanValue(v string) string {
	if i := strings.IndexByte(v, '<'); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimSpace(v)
	v = strings.TrimRight(v, ")")
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"'`)
	return strings.TrimSpace(v)
}

// ParsePropLine returns the value following key on line.
func ParsePropLine(line, key string) (string, bool) {
	rest, ok := matchKey(line, key)
	if !ok {
		return "", false
	}
	v := cleanValue(rest)
	return v, v != ""
}

// ParsePropLines returns the first non-empty value for key in text.
func ParsePropLines(text, key string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if v, ok := ParsePropLine(line, key); ok {
			return v, true
		}
	}
	return "", false
}

// ParsePropFile returns the first non-empty value for key in the file at path.
func ParsePropFile(path, key string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		if v, ok := ParsePropLine(s.Text(), key); ok {
			return v, true
		}
	}
	return "", false
}

// Semver joins version parts, filling gaps with zeros: "1", "", "3" gives "1.0.3".
func Semver(major, minor, patch string) string {
	if major == "" && minor == "" && patch == "" {
		return ""
	}
	if major == "" {
		major = "0"
	}
	if minor == "" && patch == "" {
		return major
	}
	if minor == "" {
		minor = "0"
	}
	if patch == "" {
		return major + "." + minor
	}
	return major + "." + minor + "." + patch
}
