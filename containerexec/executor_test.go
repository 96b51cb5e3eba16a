package containerexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitOutputLines(t *testing.T) {
	assert.Equal(t, []string{"v20.11.1"}, SplitOutputLines("v20.11.1\n"))
	assert.Equal(t, []string{"line one", "line two"}, SplitOutputLines("line one\r\nline two\r\n"))
	assert.Nil(t, SplitOutputLines(""))
	assert.Nil(t, SplitOutputLines("\n\n  \n"))
}
