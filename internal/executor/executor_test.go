package executor_test

import (
	"testing"

	"github.com/sakif/pyrunner/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutionRequestDefaults(t *testing.T) {
	req, err := executor.NewExecutionRequest("print(1)")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", req.Code())
	assert.Equal(t, 30, req.TimeoutSeconds())
	assert.Equal(t, 512, req.MemoryLimitMiB())
	assert.False(t, req.AutoPrint())
}

func TestNewExecutionRequestOptions(t *testing.T) {
	req, err := executor.NewExecutionRequest("print(1)",
		executor.WithTimeoutSeconds(10),
		executor.WithMemoryLimitMiB(256),
		executor.WithAutoPrint(true))
	require.NoError(t, err)
	assert.Equal(t, 10, req.TimeoutSeconds())
	assert.Equal(t, 256, req.MemoryLimitMiB())
	assert.True(t, req.AutoPrint())
}

func TestNewExecutionRequestRejectsEmptyCode(t *testing.T) {
	_, err := executor.NewExecutionRequest("")
	assert.Error(t, err)
}

func TestNewExecutionRequestRejectsWhitespaceOnlyCode(t *testing.T) {
	_, err := executor.NewExecutionRequest("   \n\t")
	assert.Error(t, err)
}

func TestNewExecutionRequestRejectsOversizedCode(t *testing.T) {
	huge := make([]byte, (1<<20)+1)
	for i := range huge {
		huge[i] = 'a'
	}
	_, err := executor.NewExecutionRequest(string(huge))
	assert.Error(t, err)
}

func TestNewExecutionRequestTimeoutBounds(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		wantErr bool
	}{
		{"zero", 0, true},
		{"negative", -1, true},
		{"minimum", 1, false},
		{"maximum", 300, false},
		{"above maximum", 301, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executor.NewExecutionRequest("print(1)", executor.WithTimeoutSeconds(tt.seconds))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewExecutionRequestMemoryBounds(t *testing.T) {
	tests := []struct {
		name    string
		mib     int
		wantErr bool
	}{
		{"below minimum", 63, true},
		{"minimum", 64, false},
		{"maximum", 2048, false},
		{"above maximum", 2049, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executor.NewExecutionRequest("print(1)", executor.WithMemoryLimitMiB(tt.mib))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
