package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("success - four component version", func(t *testing.T) {
		// act
		v, err := Parse("5.9.0.21")

		// assert
		assert.NoError(t, err)
		assert.Equal(t, 5, v.Major())
		assert.Equal(t, 9, v.Minor())
		assert.Equal(t, "5.9.0.21", v.String())
	})
	t.Run("success - two component version", func(t *testing.T) {
		// act
		v, err := Parse("5.9")

		// assert
		assert.NoError(t, err)
		assert.Equal(t, 5, v.Major())
		assert.Equal(t, 9, v.Minor())
	})
	t.Run("success - surrounding whitespace is trimmed", func(t *testing.T) {
		// act
		v, err := Parse("5.9.0.21\n")

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "5.9.0.21", v.String())
	})
	t.Run("failure - single component", func(t *testing.T) {
		// act
		_, err := Parse("5")

		// assert
		assert.Error(t, err)
	})
	t.Run("failure - empty string", func(t *testing.T) {
		// act
		_, err := Parse("")

		// assert
		assert.Error(t, err)
	})
	t.Run("failure - non numeric component", func(t *testing.T) {
		// act
		_, err := Parse("5.x.1")

		// assert
		assert.Error(t, err)
	})
	t.Run("failure - negative component", func(t *testing.T) {
		// act
		_, err := Parse("5.-9")

		// assert
		assert.Error(t, err)
	})
}

func TestVersion_Compare(t *testing.T) {
	mustParse := func(s string) Version {
		v, err := Parse(s)
		assert.NoError(t, err)
		return v
	}

	t.Run("success - missing components compare as zero", func(t *testing.T) {
		assert.True(t, mustParse("5.9").Equal(mustParse("5.9.0")))
		assert.True(t, mustParse("5.9.0.0").Equal(mustParse("5.9")))
	})
	t.Run("success - component-wise ordering", func(t *testing.T) {
		assert.True(t, mustParse("5.9.0.21").Less(mustParse("5.10")))
		assert.True(t, mustParse("5.8.4.2").Less(mustParse("5.9.0.21")))
		assert.False(t, mustParse("5.11").Less(mustParse("5.9.0.21")))
	})
	t.Run("success - numeric rather than lexicographic", func(t *testing.T) {
		assert.True(t, mustParse("5.9").Less(mustParse("5.10")))
	})
}
