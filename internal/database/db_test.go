package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolIntDefaults(t *testing.T) {
	assert.Equal(t, 25, poolInt("DB_POOL_TEST_UNSET", 25))
}

func TestPoolIntReadsEnv(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	assert.Equal(t, 50, poolInt("DB_MAX_OPEN_CONNS", 25))
}

func TestPoolIntRejectsBadValues(t *testing.T) {
	for _, v := range []string{"abc", "-3", "0"} {
		t.Setenv("DB_MAX_IDLE_CONNS", v)
		assert.Equal(t, 25, poolInt("DB_MAX_IDLE_CONNS", 25))
	}
}
