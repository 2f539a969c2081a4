// Package dbeaver turns the PostgreSQL settings of a .env file into a CSV that
// DBeaver can import as connections.
package dbeaver

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// Driver is the JDBC driver class written for every connection.
	Driver = "org.postgresql.Driver"

	DefaultHost = "localhost"
	DefaultPort = "5432"
)

var (
	// ErrNoEnvironment is returned when the env file is missing or has no entries.
	ErrNoEnvironment = errors.New("no environment variables found")

	// ErrNoDatabases is returned when no database configuration was found.
	ErrNoDatabases = errors.New("no database configurations found")
)

// Header is the CSV header row.
var Header = []string{"name", "driver", "url", "user", "password"}

// Database is one PostgreSQL connection descriptor.
type Database struct {
	Name     string
	User     string
	Password string
	Host     string
	Port     string
}

// ConnectionName is the label DBeaver shows for the connection.
func (d Database) ConnectionName() string {
	return "PostgreSQL - " + d.Name
}

// JDBCURL is the connection URL for the database.
func (d Database) JDBCURL() string {
	return fmt.Sprintf("jdbc:postgresql://%s:%s/%s", d.Host, d.Port, d.Name)
}

func (d Database) record() []string {
	return []string{d.ConnectionName(), Driver, d.JDBCURL(), d.User, d.Password}
}

const maxLineSize = 1 << 20

// LoadEnvFile reads a .env file. A missing file yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	env, err := ParseEnv(f)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return env, nil
}

// ParseEnv reads KEY=VALUE lines literally. Each line is trimmed; blank
// lines, lines starting with # and lines without = are skipped. The value is
// everything after the first =, with no quote handling, no inline comments
// and no $VAR expansion, so passwords are kept byte for byte.
func ParseEnv(r io.Reader) (map[string]string, error) {
	env := make(map[string]string)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		env[key] = value
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return env, nil
}

// ExtractDatabases collects numbered DB_<n>_NAME/USER/PASSWORD entries,
// starting at 1 and stopping at the first missing or empty name, followed by
// a single DB_NAME/DB_USER/DB_PASSWORD entry when all three keys exist.
func ExtractDatabases(env map[string]string) []Database {
	host := valueOr(env, "POSTGRES_HOST", DefaultHost)
	port := valueOr(env, "POSTGRES_PORT", DefaultPort)

	var dbs []Database
	for n := 1; ; n++ {
		prefix := "DB_" + strconv.Itoa(n) + "_"
		name := env[prefix+"NAME"]
		if name == "" {
			break
		}
		dbs = append(dbs, Database{
			Name:     name,
			User:     env[prefix+"USER"],
			Password: env[prefix+"PASSWORD"],
			Host:     host,
			Port:     port,
		})
	}

	name, hasName := env["DB_NAME"]
	user, hasUser := env["DB_USER"]
	password, hasPassword := env["DB_PASSWORD"]
	if hasName && hasUser && hasPassword {
		dbs = append(dbs, Database{
			Name:     name,
			User:     user,
			Password: password,
			Host:     host,
			Port:     port,
		})
	}

	return dbs
}

// WriteCSV writes the header and one row per database, CRLF terminated.
func WriteCSV(w io.Writer, dbs []Database) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, db := range dbs {
		if err := cw.Write(db.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Generate reads envPath and writes the connection CSV to outPath. Nothing is
// written when the result would be empty.
func Generate(envPath, outPath string) ([]Database, error) {
	env, err := LoadEnvFile(envPath)
	if err != nil {
		return nil, err
	}
	if len(env) == 0 {
		return nil, ErrNoEnvironment
	}

	dbs := ExtractDatabases(env)
	if len(dbs) == 0 {
		return nil, ErrNoDatabases
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create output directory: %w", err)
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("could not create %s: %w", outPath, err)
	}
	if err := WriteCSV(f, dbs); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not write %s: %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("could not close %s: %w", outPath, err)
	}

	return dbs, nil
}

func valueOr(env map[string]string, key, def string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return def
}
