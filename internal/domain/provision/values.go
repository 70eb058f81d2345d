package provision

import (
	"sort"
	"strings"
	"sync"
)

// Well-known keys threaded through a run.
const (
	KeyIdentityName  = "identity.name"
	KeyIdentityEmail = "identity.email"
	KeyHostFacts     = "host.facts"
	KeySSHPublicKey  = "ssh.public_key"
	KeySSHPublicPath = "ssh.public_key_path"
)

// Values is the mutable key-value carrier shared by the caller and every step
// of a run. Earlier steps may leave values for later ones.
type Values struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// NewValues creates an empty carrier.
func NewValues() *Values {
	return &Values{data: make(map[string]interface{})}
}

// Set stores a value under key, replacing any previous value.
func (v *Values) Set(key string, value interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[key] = value
}

// Lookup returns the value stored under key.
func (v *Values) Lookup(key string) (interface{}, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	value, ok := v.data[key]
	return value, ok
}

// String returns the trimmed string stored under key, or "" when the key is
// absent or holds another type.
func (v *Values) String(key string) string {
	value, ok := v.Lookup(key)
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Has reports whether key holds a non-blank string or any non-string value.
func (v *Values) Has(key string) bool {
	value, ok := v.Lookup(key)
	if !ok || value == nil {
		return false
	}
	if s, isString := value.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Keys returns all keys in sorted order.
func (v *Values) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keys := make([]string, 0, len(v.data))
	for k := range v.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
