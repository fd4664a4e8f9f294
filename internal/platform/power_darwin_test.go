package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutCommandDarwin(t *testing.T) {
	name, args := timeoutCommand(1)
	assert.Equal(t, "pmset", name)
	assert.Equal(t, []string{"-c", "displaysleep", "1"}, args)
}
