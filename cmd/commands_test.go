package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Integration tests for the remote commands
// These tests require a real S3 connection and are skipped by default
// To run these tests, set the environment variable S3_INTEGRATION_TEST=true

func setupIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("S3_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set S3_INTEGRATION_TEST=true to run")
	}

	os.Setenv("BUCKET_NAME", os.Getenv("TEST_BUCKET_NAME"))
	os.Setenv("REGION", os.Getenv("TEST_REGION"))
	os.Setenv("API_URL", os.Getenv("TEST_API_URL"))
	os.Setenv("ACCESS_KEY", os.Getenv("TEST_ACCESS_KEY"))
	os.Setenv("SECRET_KEY", os.Getenv("TEST_SECRET_KEY"))
	t.Cleanup(func() {
		os.Unsetenv("BUCKET_NAME")
		os.Unsetenv("REGION")
		os.Unsetenv("API_URL")
		os.Unsetenv("ACCESS_KEY")
		os.Unsetenv("SECRET_KEY")
	})

	loaded, err := configForTest()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	cfg = loaded
}

func captureStdout(t *testing.T, run func() error) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := run()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)

	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	return buf.String()
}

func TestInfoCommand(t *testing.T) {
	setupIntegration(t)

	output := captureStdout(t, func() error {
		rootCmd.SetArgs([]string{"info"})
		return rootCmd.Execute()
	})

	if !strings.Contains(output, os.Getenv("TEST_BUCKET_NAME")) {
		t.Errorf("Output doesn't contain bucket name: %s", output)
	}

	if !strings.Contains(output, "object_count") {
		t.Errorf("Output doesn't contain object_count: %s", output)
	}

	if !strings.Contains(output, "total_size") {
		t.Errorf("Output doesn't contain total_size: %s", output)
	}
}

func TestLsCommand(t *testing.T) {
	setupIntegration(t)

	output := captureStdout(t, func() error {
		rootCmd.SetArgs([]string{"ls"})
		return rootCmd.Execute()
	})

	if !strings.Contains(output, "directories") || !strings.Contains(output, "files") {
		t.Errorf("Output doesn't look like a listing: %s", output)
	}
}

func TestDownloadCommandDryRun(t *testing.T) {
	setupIntegration(t)

	tempDir := t.TempDir()
	folder := os.Getenv("TEST_FOLDER")
	if folder == "" {
		folder = "test-upload/"
	}

	output := captureStdout(t, func() error {
		rootCmd.SetArgs([]string{
			"download", folder,
			"--destination", filepath.Join(tempDir, "out"),
			"--on-conflict", "skip",
			"--dry-run",
		})
		return rootCmd.Execute()
	})

	if !strings.Contains(output, `"dry_run": true`) {
		t.Errorf("Output doesn't mark a dry run: %s", output)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "out")); !os.IsNotExist(err) {
		t.Errorf("Dry run must not create the destination")
	}
}

func TestDeleteCommandDryRun(t *testing.T) {
	setupIntegration(t)

	output := captureStdout(t, func() error {
		rootCmd.SetArgs([]string{"delete", "test-upload/", "--dry-run"})
		return rootCmd.Execute()
	})

	if !strings.Contains(output, "deleted_files") {
		t.Errorf("Output doesn't contain deleted_files: %s", output)
	}
}
