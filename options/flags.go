package options

import "strconv"

// Flags is a read-only snapshot of option values keyed by option name.
// Values are bool, int or string.
type Flags map[string]any

// Defaults returns a snapshot holding every option's default value.
func Defaults() Flags {
	f := make(Flags, len(Definitions))
	for _, d := range Definitions {
		f[d.Name] = d.Default
	}
	return f
}

// Snapshot overlays stored raw values on the defaults. Unknown names are
// ignored.
func Snapshot(stored map[string]string) Flags {
	f := Defaults()
	for name, raw := range stored {
		v, err := Sanitize(name, raw)
		if err != nil {
			continue
		}
		f[name] = v
	}
	return f
}

// Bool returns the named flag as a bool, or def when absent.
func (f Flags) Bool(name string, def bool) bool {
	switch v := f[name].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		return parseBool(v)
	}
	return def
}

// String returns the named flag as a string, or def when absent or empty.
func (f Flags) String(name, def string) string {
	switch v := f[name].(type) {
	case string:
		if v != "" {
			return v
		}
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return def
}

// Int returns the named flag as an int, or def when absent or unparsable.
func (f Flags) Int(name string, def int) int {
	switch v := f[name].(type) {
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// SocialLink is a configured social profile.
type SocialLink struct {
	Network string
	URL     string
}

// SocialLinks returns the configured profiles in network order.
func (f Flags) SocialLinks() []SocialLink {
	var links []SocialLink
	for _, n := range Networks {
		if u := f.String("social_"+n, ""); u != "" {
			links = append(links, SocialLink{Network: n, URL: u})
		}
	}
	return links
}
