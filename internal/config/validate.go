package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	// Validate server configuration
	if c.FinGuard.Server.Addr == "" {
		return errors.New("server address cannot be empty")
	}

	// Validate address format and port
	if _, err := net.ResolveTCPAddr("tcp", c.FinGuard.Server.Addr); err != nil {
		return fmt.Errorf("invalid server address: %v", err)
	}

	if c.FinGuard.Server.Timeout != "" {
		if _, err := time.ParseDuration(c.FinGuard.Server.Timeout); err != nil {
			return fmt.Errorf("invalid server timeout: %v", err)
		}
	}

	// Validate LLM configuration
	if c.FinGuard.Gemini.Endpoint == "" {
		return errors.New("gemini endpoint cannot be empty")
	}
	if c.FinGuard.Gemini.Model == "" {
		return errors.New("gemini model cannot be empty")
	}

	// Validate TTS configuration
	if c.FinGuard.TTS.Endpoint == "" {
		return errors.New("tts endpoint cannot be empty")
	}

	// Validate object store configuration
	if c.FinGuard.Storage.Endpoint == "" {
		return errors.New("storage endpoint cannot be empty")
	}
	if c.FinGuard.Storage.AccessKey == "" {
		return errors.New("storage access key cannot be empty")
	}
	if c.FinGuard.Storage.SecretKey == "" {
		return errors.New("storage secret key cannot be empty")
	}
	if c.FinGuard.Storage.Bucket == "" {
		return errors.New("storage bucket cannot be empty")
	}
	if !isValidBucketName(c.FinGuard.Storage.Bucket) {
		return fmt.Errorf("invalid storage bucket name: %s", c.FinGuard.Storage.Bucket)
	}

	// Validate database configuration
	if c.FinGuard.Database.Path == "" {
		return errors.New("database path cannot be empty")
	}

	return nil
}

// isValidBucketName checks if a bucket name is valid according to MinIO/S3 rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	if !regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`).MatchString(name) {
		return false
	}
	return true
}
