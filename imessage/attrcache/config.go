package attrcache

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MemcachedConfig holds connection settings for the backing memcached
// server.
type MemcachedConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Config configures a [Cache].
type Config struct {
	Memcached MemcachedConfig `yaml:"memcached"`
}

// LoadConfig reads connection settings from configPath (if it exists),
// then a ".env" file in the current working directory, then environment variables, each
// layer overriding the last. Priority: env vars > .env > config.yml >
// built-in defaults (localhost:11211).
func LoadConfig(configPath string) (Config, error) {
	cfg := Config{Memcached: MemcachedConfig{Host: "localhost", Port: 11211}}

	if yamlData, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(yamlData, &cfg); err != nil {
			return cfg, err
		}
	}

	loadDotEnv(".env")

	if h := os.Getenv("ATTRCACHE_MEMCACHED_HOST"); h != "" {
		cfg.Memcached.Host = h
	}
	if p := os.Getenv("ATTRCACHE_MEMCACHED_PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			cfg.Memcached.Port = port
		}
	}

	return cfg, nil
}

// loadDotEnv reads a .env file and sets environment variables, without
// overriding ones already set.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}
