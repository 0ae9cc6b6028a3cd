package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadDomainFile reads a line-oriented domain list. Blank lines and lines
// starting with # are skipped; everything else is one domain, untouched.
func ReadDomainFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open domain file: %w", err)
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read domain file: %w", err)
	}
	return domains, nil
}

// WriteSampleDomainFile writes a commented example input file.
func WriteSampleDomainFile(path string) error {
	const sample = `# One domain per line. Blank lines and # comments are ignored.
# Scheme is optional; https is assumed.
example-agency.com
https://another-business.net
local-bakery.org
`
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("failed to write sample file: %w", err)
	}
	return nil
}
