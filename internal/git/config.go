package git

import "strings"

// ConfigGet reads a key from the repository config.
func (r *Repo) ConfigGet(key string) (string, bool, error) {
	output, err := r.git("config", "--get", key)
	if err != nil {
		// Exit status 1 means the key is not set.
		if exitCode(err) == 1 {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(output), true, nil
}

// ConfigSet writes a key to the repository config.
func (r *Repo) ConfigSet(key, value string) error {
	_, err := r.git("config", key, value)
	return err
}

// ConfigUnset removes a key from the repository config. Removing a key that
// is not set is not an error.
func (r *Repo) ConfigUnset(key string) error {
	_, err := r.git("config", "--unset", key)
	if err != nil && exitCode(err) == 5 {
		return nil
	}
	return err
}
