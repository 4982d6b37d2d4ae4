package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileCredentials is the schema of the optional credentials file. Keeping
// the password out of the process's argument list means it does not show up
// in `ps` output.
type fileCredentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoadCredentials reads a username and password from a yaml file with
// `username` and `password` keys. Unknown keys are rejected, as a typo here
// would otherwise silently yield an empty credential.
func LoadCredentials(path string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	d := yaml.NewDecoder(f)
	d.KnownFields(true)
	creds := fileCredentials{}
	if err := d.Decode(&creds); err != nil {
		return "", "", fmt.Errorf("parsing %v: %w", path, err)
	}
	if creds.Username == "" || creds.Password == "" {
		return "", "", fmt.Errorf("%v must contain both username and password", path)
	}
	return creds.Username, creds.Password, nil
}
