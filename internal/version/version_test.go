package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfoInitialized(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, BuildTime)
	assert.NotEmpty(t, GitCommit)
}

func TestString(t *testing.T) {
	s := String()
	assert.Contains(t, s, "mdx2md "+Version)
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
}
