package dotenv

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnvs loads environment variables from the per-environment dotenv
// file, then the shared .env. A missing file is not an error so that
// container deployments configured purely through the environment still
// start.
func LoadDotEnvs() error {
	env := os.Getenv("PULSIFI_ENV")
	if len(env) == 0 {
		env = "dev"
	}

	for _, name := range []string{".env." + env, ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return err
		}
	}
	return nil
}

// LoadDotEnvsInTests walks up from the package directory to the repository
// root looking for a .env file, since `go test` runs with the package as the
// working directory.
func LoadDotEnvsInTests() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			return godotenv.Load(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// no .env anywhere up the tree, rely on the ambient environment
			return nil
		}
		dir = parent
	}
}
