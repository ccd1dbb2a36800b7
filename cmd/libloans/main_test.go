package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfo(t *testing.T) {
	original := []string{buildVersion, buildDate, buildCommit}
	t.Cleanup(func() {
		buildVersion, buildDate, buildCommit = original[0], original[1], original[2]
	})

	assert.Equal(t, "Build version: N/A\nBuild date: N/A\nBuild commit: N/A", buildInfo())

	buildVersion, buildDate, buildCommit = "v1.2.0", "2024-01-03", "abc123"
	assert.Equal(t, "Build version: v1.2.0\nBuild date: 2024-01-03\nBuild commit: abc123", buildInfo())
}
